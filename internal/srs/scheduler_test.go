package srs

import (
	"math"
	"testing"
	"time"

	"github.com/example/lingopath/pkg/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestInitialize(t *testing.T) {
	s := NewScheduler()
	record := s.Initialize("user-1", "item-1", testNow)

	if record.EaseFactor != DefaultEaseFactor {
		t.Errorf("expected ease factor %v, got %v", DefaultEaseFactor, record.EaseFactor)
	}
	if record.Interval != 1 {
		t.Errorf("expected interval 1, got %d", record.Interval)
	}
	if record.Repetitions != 0 {
		t.Errorf("expected 0 repetitions, got %d", record.Repetitions)
	}
	if !record.NextDueAt.Equal(testNow.AddDate(0, 0, 1)) {
		t.Errorf("expected due tomorrow, got %v", record.NextDueAt)
	}
}

func TestCalculateNextReviewInvalidQuality(t *testing.T) {
	s := NewScheduler()
	record := s.Initialize("user-1", "item-1", testNow)

	for _, quality := range []int{-1, 6, 100} {
		if _, err := s.CalculateNextReview(record, quality, testNow); err != ErrInvalidQuality {
			t.Errorf("quality %d: expected ErrInvalidQuality, got %v", quality, err)
		}
	}
}

func TestCalculateNextReviewPerfectSequence(t *testing.T) {
	s := NewScheduler()
	record := s.Initialize("user-1", "item-1", testNow)

	// Three perfect recalls: intervals 1, 6, then interval * ease
	expected := []struct {
		repetitions int
		interval    int
		ease        float64
	}{
		{1, 1, 2.6},
		{2, 6, 2.7},
		{3, 17, 2.8}, // round(6 * 2.8)
	}

	for i, want := range expected {
		next, err := s.CalculateNextReview(record, 5, testNow)
		if err != nil {
			t.Fatalf("review %d: unexpected error: %v", i+1, err)
		}
		if next.Repetitions != want.repetitions {
			t.Errorf("review %d: expected %d repetitions, got %d", i+1, want.repetitions, next.Repetitions)
		}
		if next.Interval != want.interval {
			t.Errorf("review %d: expected interval %d, got %d", i+1, want.interval, next.Interval)
		}
		if math.Abs(next.EaseFactor-want.ease) > 1e-9 {
			t.Errorf("review %d: expected ease %v, got %v", i+1, want.ease, next.EaseFactor)
		}
		if !next.NextDueAt.Equal(testNow.AddDate(0, 0, want.interval)) {
			t.Errorf("review %d: wrong due date %v", i+1, next.NextDueAt)
		}
		record = next
	}
}

func TestCalculateNextReviewFailureResets(t *testing.T) {
	s := NewScheduler()
	record := s.Initialize("user-1", "item-1", testNow)

	// Build up a repetition chain first
	for i := 0; i < 3; i++ {
		next, err := s.CalculateNextReview(record, 5, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		record = next
	}

	failed, err := s.CalculateNextReview(record, 2, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed.Repetitions != 0 {
		t.Errorf("expected repetitions reset to 0, got %d", failed.Repetitions)
	}
	if failed.Interval != 1 {
		t.Errorf("expected interval reset to 1, got %d", failed.Interval)
	}
	if failed.EaseFactor >= record.EaseFactor {
		t.Errorf("expected ease to drop below %v, got %v", record.EaseFactor, failed.EaseFactor)
	}
}

func TestCalculateNextReviewEaseFloor(t *testing.T) {
	s := NewScheduler()
	record := s.Initialize("user-1", "item-1", testNow)
	record.EaseFactor = MinEaseFactor

	next, err := s.CalculateNextReview(record, 0, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.EaseFactor != MinEaseFactor {
		t.Errorf("expected ease clamped at %v, got %v", MinEaseFactor, next.EaseFactor)
	}
}

func TestCalculateNextReviewPure(t *testing.T) {
	s := NewScheduler()
	record := s.Initialize("user-1", "item-1", testNow)
	before := record

	if _, err := s.CalculateNextReview(record, 5, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != before {
		t.Error("input record was modified")
	}
}

func TestDueItems(t *testing.T) {
	s := NewScheduler()

	records := []models.ReviewRecord{
		{ItemID: "future", NextDueAt: testNow.AddDate(0, 0, 3)},
		{ItemID: "overdue-1d", NextDueAt: testNow.AddDate(0, 0, -1)},
		{ItemID: "due-now", NextDueAt: testNow},
		{ItemID: "overdue-5d", NextDueAt: testNow.AddDate(0, 0, -5)},
	}

	due := s.DueItems(records, 0, testNow)
	if len(due) != 3 {
		t.Fatalf("expected 3 due items, got %d", len(due))
	}

	wantOrder := []string{"overdue-5d", "overdue-1d", "due-now"}
	for i, want := range wantOrder {
		if due[i].ItemID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, due[i].ItemID)
		}
	}

	limited := s.DueItems(records, 2, testNow)
	if len(limited) != 2 {
		t.Errorf("expected 2 items with limit 2, got %d", len(limited))
	}
	if limited[0].ItemID != "overdue-5d" {
		t.Errorf("expected most overdue first, got %s", limited[0].ItemID)
	}
}

func TestDueItemsTieKeepsInputOrder(t *testing.T) {
	s := NewScheduler()

	due := testNow.AddDate(0, 0, -2)
	records := []models.ReviewRecord{
		{ItemID: "a", NextDueAt: due},
		{ItemID: "b", NextDueAt: due},
		{ItemID: "c", NextDueAt: due},
	}

	got := s.DueItems(records, 0, testNow)
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ItemID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].ItemID)
		}
	}
}

func TestWeakItems(t *testing.T) {
	s := NewScheduler()

	records := []models.ReviewRecord{
		{ItemID: "strong", EaseFactor: 2.5, Interval: 3, NextDueAt: testNow.AddDate(0, 0, 2)},
		{ItemID: "low-ease", EaseFactor: 1.5, Interval: 1, NextDueAt: testNow.AddDate(0, 0, 2)},
		{ItemID: "lapsed", EaseFactor: 2.4, Interval: 14, NextDueAt: testNow.AddDate(0, 0, -3)},
		{ItemID: "lower-ease", EaseFactor: 1.4, Interval: 1, NextDueAt: testNow.AddDate(0, 0, 2)},
	}

	weak := s.WeakItems(records, testNow)
	if len(weak) != 3 {
		t.Fatalf("expected 3 weak items, got %d", len(weak))
	}

	wantOrder := []string{"lower-ease", "low-ease", "lapsed"}
	for i, want := range wantOrder {
		if weak[i].ItemID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, weak[i].ItemID)
		}
	}
}

func TestMasteryLevel(t *testing.T) {
	s := NewScheduler()

	tests := []struct {
		name   string
		record models.ReviewRecord
		want   int
	}{
		{
			name:   "new item",
			record: models.ReviewRecord{EaseFactor: 2.5, Repetitions: 0, Interval: 1},
			want:   50,
		},
		{
			name:   "long chain capped at 100",
			record: models.ReviewRecord{EaseFactor: 2.5, Repetitions: 10, Interval: 30},
			want:   100,
		},
		{
			name:   "mid progress with interval bonus",
			record: models.ReviewRecord{EaseFactor: 2.0, Repetitions: 3, Interval: 10},
			want:   65,
		},
		{
			name:   "struggling item",
			record: models.ReviewRecord{EaseFactor: 1.3, Repetitions: 0, Interval: 1},
			want:   26,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.MasteryLevel(tt.record); got != tt.want {
				t.Errorf("expected mastery %d, got %d", tt.want, got)
			}
		})
	}
}
