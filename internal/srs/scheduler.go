package srs

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/example/lingopath/pkg/models"
)

// ErrInvalidQuality is returned when a quality score is outside 0-5.
var ErrInvalidQuality = errors.New("srs: quality score must be between 0 and 5")

const (
	// DefaultEaseFactor is the SM-2 starting ease for a new item
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor the ease factor never drops below
	MinEaseFactor = 1.3
	// WeakEaseThreshold marks an item as weak when its ease falls under it
	WeakEaseThreshold = 2.0
)

// QualityResponse represents the quality of recall in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Scheduler implements the SuperMemo-2 algorithm for spaced repetition.
// All methods are pure; the caller persists the returned records.
type Scheduler struct {
	// Quality scores at or above this value count as a successful recall
	PassThreshold int
}

// NewScheduler creates a scheduler with the standard SM-2 settings
func NewScheduler() *Scheduler {
	return &Scheduler{PassThreshold: int(QualityCorrectDifficult)}
}

// Initialize returns the scheduling record for an item that has never been
// reviewed: ease 2.5, interval 1, due tomorrow.
func (s *Scheduler) Initialize(userID, itemID string, now time.Time) models.ReviewRecord {
	return models.ReviewRecord{
		UserID:         userID,
		ItemID:         itemID,
		EaseFactor:     DefaultEaseFactor,
		Interval:       1,
		Repetitions:    0,
		LastQuality:    0,
		LastReviewedAt: now,
		NextDueAt:      now.AddDate(0, 0, 1),
	}
}

// CalculateNextReview applies one SM-2 update for the given quality score
// and returns the new record. The input record is not modified.
func (s *Scheduler) CalculateNextReview(record models.ReviewRecord, quality int, now time.Time) (models.ReviewRecord, error) {
	if quality < 0 || quality > 5 {
		return models.ReviewRecord{}, ErrInvalidQuality
	}

	next := record

	// Update the ease factor first; the new value drives interval growth
	q := float64(quality)
	ease := record.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}
	next.EaseFactor = ease

	if quality < s.PassThreshold {
		// Failed recall resets the repetition chain
		next.Repetitions = 0
		next.Interval = 1
	} else {
		next.Repetitions = record.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(record.Interval) * ease))
		}
	}

	next.LastQuality = quality
	next.LastReviewedAt = now
	next.NextDueAt = now.AddDate(0, 0, next.Interval)

	return next, nil
}

// DueItems filters records due at or before now and orders them most
// overdue first. Ties keep their input order. A limit of zero or less
// returns all due items.
func (s *Scheduler) DueItems(records []models.ReviewRecord, limit int, now time.Time) []models.ReviewRecord {
	var due []models.ReviewRecord
	for _, r := range records {
		if !r.NextDueAt.After(now) {
			due = append(due, r)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return now.Sub(due[i].NextDueAt) > now.Sub(due[j].NextDueAt)
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}

// WeakItems returns records with a low ease factor, or long-interval items
// that went overdue, sorted weakest (lowest ease) first.
func (s *Scheduler) WeakItems(records []models.ReviewRecord, now time.Time) []models.ReviewRecord {
	var weak []models.ReviewRecord
	for _, r := range records {
		overdue := !r.NextDueAt.After(now)
		if r.EaseFactor < WeakEaseThreshold || (overdue && r.Interval > 7) {
			weak = append(weak, r)
		}
	}

	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].EaseFactor < weak[j].EaseFactor
	})

	return weak
}

// MasteryLevel derives a 0-100 mastery score from the scheduling state:
// half from the ease factor, half from the repetition count, with a small
// bonus once the item survives week-long intervals.
func (s *Scheduler) MasteryLevel(record models.ReviewRecord) int {
	easeScore := math.Min(100, record.EaseFactor/DefaultEaseFactor*100)
	repetitionScore := math.Min(100, float64(record.Repetitions)/10*100)

	bonus := 0.0
	if record.Repetitions > 0 && record.Interval > 7 {
		bonus = 10
	}

	mastery := math.Round((easeScore+repetitionScore)/2 + bonus)
	if mastery > 100 {
		mastery = 100
	}
	return int(mastery)
}
