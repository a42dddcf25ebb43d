package adaptive

import (
	"math"
	"testing"
	"time"

	"github.com/example/lingopath/pkg/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func record(total, correct int, avgTime float64) *models.PerformanceRecord {
	return &models.PerformanceRecord{
		UserID:          "user-1",
		SkillID:         "skill-1",
		TotalAttempts:   total,
		CorrectAttempts: correct,
		AverageTime:     avgTime,
	}
}

func TestApplyAttempt(t *testing.T) {
	e := NewEstimator(nil)

	r := models.PerformanceRecord{UserID: "user-1", SkillID: "skill-1"}

	r = e.ApplyAttempt(r, true, 10, testNow)
	if r.TotalAttempts != 1 || r.CorrectAttempts != 1 {
		t.Errorf("unexpected counts after first attempt: %+v", r)
	}
	if r.AverageTime != 10 {
		t.Errorf("expected average 10, got %v", r.AverageTime)
	}

	r = e.ApplyAttempt(r, false, 20, testNow)
	if r.TotalAttempts != 2 || r.CorrectAttempts != 1 {
		t.Errorf("unexpected counts after second attempt: %+v", r)
	}
	if r.AverageTime != 15 {
		t.Errorf("expected running mean 15, got %v", r.AverageTime)
	}

	r = e.ApplyAttempt(r, true, 6, testNow)
	if math.Abs(r.AverageTime-12) > 1e-9 {
		t.Errorf("expected running mean 12, got %v", r.AverageTime)
	}
}

func TestCalculateDifficultyInvalidBase(t *testing.T) {
	e := NewEstimator(nil)

	for _, base := range []int{0, 6, -1} {
		if _, err := e.CalculateDifficulty(nil, base); err != ErrInvalidDifficulty {
			t.Errorf("base %d: expected ErrInvalidDifficulty, got %v", base, err)
		}
	}
}

func TestCalculateDifficultyColdStart(t *testing.T) {
	e := NewEstimator(nil)

	tests := []struct {
		name   string
		record *models.PerformanceRecord
	}{
		{"no record", nil},
		{"below minimum attempts", record(2, 2, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CalculateDifficulty(tt.record, 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Recommended != 3 {
				t.Errorf("expected the base difficulty back, got %v", got.Recommended)
			}
			if got.Confidence != 0.3 {
				t.Errorf("expected confidence 0.3, got %v", got.Confidence)
			}
			if got.ShouldSkip {
				t.Error("cold start must never skip")
			}
		})
	}
}

func TestCalculateDifficultyBands(t *testing.T) {
	e := NewEstimator(nil)

	tests := []struct {
		name       string
		record     *models.PerformanceRecord
		base       int
		want       float64
		shouldSkip bool
	}{
		{"high accuracy and fast", record(10, 9, 5), 3, 4, true},
		{"high accuracy but slow", record(10, 9, 15), 3, 3.5, false},
		{"good accuracy", record(10, 8, 15), 3, 3.5, false},
		{"medium accuracy", record(10, 6, 15), 3, 3, false},
		{"low accuracy", record(10, 3, 15), 3, 2, false},
		{"raise clamped at 5", record(10, 10, 5), 5, 5, true},
		{"drop clamped at 1", record(10, 0, 30), 1, 1, false},
		{"mastered but too few attempts", record(4, 4, 5), 3, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CalculateDifficulty(tt.record, tt.base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Recommended != tt.want {
				t.Errorf("expected recommended %v, got %v", tt.want, got.Recommended)
			}
			if got.ShouldSkip != tt.shouldSkip {
				t.Errorf("expected shouldSkip %v, got %v", tt.shouldSkip, got.ShouldSkip)
			}
		})
	}
}

func TestCalculateDifficultyConfidence(t *testing.T) {
	e := NewEstimator(nil)

	got, err := e.CalculateDifficulty(record(5, 3, 15), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Confidence != 0.5 {
		t.Errorf("expected confidence 0.5 at 5 attempts, got %v", got.Confidence)
	}

	got, err = e.CalculateDifficulty(record(30, 18, 15), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Confidence != 1 {
		t.Errorf("expected confidence capped at 1, got %v", got.Confidence)
	}
}

func TestWeakAreas(t *testing.T) {
	e := NewEstimator(nil)

	records := []models.PerformanceRecord{
		{SkillID: "skill-1", ItemID: "", TotalAttempts: 10, CorrectAttempts: 2},       // skill-level row ignored
		{SkillID: "skill-1", ItemID: "i1", TotalAttempts: 10, CorrectAttempts: 3},     // weak
		{SkillID: "skill-1", ItemID: "i2", TotalAttempts: 10, CorrectAttempts: 9},     // strong
		{SkillID: "skill-1", ItemID: "i3", TotalAttempts: 2, CorrectAttempts: 0},      // too few attempts
		{SkillID: "skill-1", ItemID: "i4", TotalAttempts: 5, CorrectAttempts: 2},      // weak
	}

	weak := e.WeakAreas(records)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak items, got %d: %v", len(weak), weak)
	}
	if weak[0] != "i1" || weak[1] != "i4" {
		t.Errorf("unexpected weak items: %v", weak)
	}
}

func TestShouldReviewSkill(t *testing.T) {
	e := NewEstimator(nil)

	tests := []struct {
		name   string
		record *models.PerformanceRecord
		days   int
		want   bool
	}{
		{"no record", nil, 30, false},
		{"no attempts", record(0, 0, 0), 30, false},
		{"high accuracy waits a week", record(10, 9, 10), 6, false},
		{"high accuracy after a week", record(10, 9, 10), 7, true},
		{"medium accuracy waits three days", record(10, 7, 10), 2, false},
		{"medium accuracy after three days", record(10, 7, 10), 3, true},
		{"low accuracy reviews daily", record(10, 3, 10), 1, true},
		{"low accuracy same day", record(10, 3, 10), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ShouldReviewSkill(tt.record, tt.days); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLearningSpeed(t *testing.T) {
	e := NewEstimator(nil)

	tests := []struct {
		name   string
		record *models.PerformanceRecord
		want   float64
	}{
		{"no record", nil, 1.0},
		{"too few attempts", record(3, 3, 5), 1.0},
		{"fast and accurate", record(10, 9, 5), 1.5},
		{"accurate but slow to answer", record(10, 9, 12), 1.0},
		{"low accuracy", record(10, 4, 12), 0.7},
		{"very slow", record(10, 7, 25), 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.LearningSpeed(tt.record); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
