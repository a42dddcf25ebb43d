package models

import "time"

// ReviewRecord tracks a user's spaced-repetition state for a single
// learnable item using the SM-2 algorithm
type ReviewRecord struct {
	ID             int64     `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	ItemID         string    `json:"item_id" db:"item_id"`
	EaseFactor     float64   `json:"ease_factor" db:"ease_factor"`         // SM-2 EF parameter, never below 1.3
	Interval       int       `json:"interval" db:"interval"`               // Days until next review
	Repetitions    int       `json:"repetitions" db:"repetitions"`         // Consecutive successful reviews
	LastQuality    int       `json:"last_quality" db:"last_quality"`       // 0-5 rating of last recall
	LastReviewedAt time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextDueAt      time.Time `json:"next_due_at" db:"next_due_at"`
	Version        int       `json:"-" db:"version"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
