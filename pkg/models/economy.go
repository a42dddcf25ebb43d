package models

import "time"

// EconomyState tracks a user's XP, derived level and heart resource
type EconomyState struct {
	UserID          string    `json:"user_id" db:"user_id"`
	XP              int       `json:"xp" db:"xp"`
	Level           int       `json:"level" db:"level"` // Always derived from XP
	Hearts          int       `json:"hearts" db:"hearts"`
	MaxHearts       int       `json:"max_hearts" db:"max_hearts"`
	LastHeartRegen  time.Time `json:"last_heart_regen" db:"last_heart_regen"`
	Version         int       `json:"-" db:"version"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
