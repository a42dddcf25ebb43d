package models

import "time"

// PerformanceRecord accumulates a user's exercise outcomes for a skill,
// optionally narrowed to a single item (ItemID empty = skill-level record)
type PerformanceRecord struct {
	ID              int64     `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	SkillID         string    `json:"skill_id" db:"skill_id"`
	ItemID          string    `json:"item_id,omitempty" db:"item_id"`
	TotalAttempts   int       `json:"total_attempts" db:"total_attempts"`
	CorrectAttempts int       `json:"correct_attempts" db:"correct_attempts"`
	AverageTime     float64   `json:"average_time_seconds" db:"average_time"` // Running mean, seconds
	Version         int       `json:"-" db:"version"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Accuracy returns the correct/total ratio, 0 when no attempts were recorded.
func (p *PerformanceRecord) Accuracy() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.CorrectAttempts) / float64(p.TotalAttempts)
}
