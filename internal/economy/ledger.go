package economy

import (
	"errors"
	"math"
	"time"

	"github.com/example/lingopath/pkg/models"
)

// ErrNegativeAmount is returned when a caller tries to grant negative XP.
var ErrNegativeAmount = errors.New("economy: xp amount must not be negative")

const (
	// DefaultMaxHearts is the heart cap for a new user
	DefaultMaxHearts = 5
	// DefaultRegenInterval is the wall-clock time to regenerate one heart
	DefaultRegenInterval = 5 * time.Hour
	// MaxLevel caps level growth regardless of accumulated XP
	MaxLevel = 100
)

// LevelUpResult describes the level change caused by an XP grant
type LevelUpResult struct {
	NewLevel      int  `json:"new_level"`
	PreviousLevel int  `json:"previous_level"`
	LeveledUp     bool `json:"leveled_up"`
}

// Ledger applies XP and heart mutations as pure state transforms. The
// caller persists the returned snapshots.
type Ledger struct {
	MaxHearts     int
	RegenInterval time.Duration
}

// NewLedger creates a ledger with the standard heart economy
func NewLedger() *Ledger {
	return &Ledger{
		MaxHearts:     DefaultMaxHearts,
		RegenInterval: DefaultRegenInterval,
	}
}

// InitState returns the starting economy for a new user: level 1, zero XP,
// a full set of hearts.
func (l *Ledger) InitState(userID string, now time.Time) models.EconomyState {
	return models.EconomyState{
		UserID:         userID,
		XP:             0,
		Level:          1,
		Hearts:         l.MaxHearts,
		MaxHearts:      l.MaxHearts,
		LastHeartRegen: now,
		UpdatedAt:      now,
	}
}

// XPRequiredFor returns the cumulative XP needed to reach a level.
// Level 1 is free; beyond that the curve is floor(50 * (level-1)^1.5).
func XPRequiredFor(level int) int {
	if level <= 1 {
		return 0
	}
	return int(math.Floor(50 * math.Pow(float64(level-1), 1.5)))
}

// LevelForXP derives the level a cumulative XP total corresponds to,
// capped at MaxLevel. The stored level must always equal this.
func LevelForXP(xp int) int {
	level := 1
	for level < MaxLevel && xp >= XPRequiredFor(level+1) {
		level++
	}
	return level
}

// AddXP grants XP and re-derives the level, reporting whether the grant
// crossed one or more level thresholds.
func (l *Ledger) AddXP(state models.EconomyState, amount int, now time.Time) (models.EconomyState, LevelUpResult, error) {
	if amount < 0 {
		return models.EconomyState{}, LevelUpResult{}, ErrNegativeAmount
	}

	next := state
	next.XP = state.XP + amount
	next.Level = LevelForXP(next.XP)
	next.UpdatedAt = now

	result := LevelUpResult{
		NewLevel:      next.Level,
		PreviousLevel: state.Level,
		LeveledUp:     next.Level > state.Level,
	}
	return next, result, nil
}

// XPProgress returns how far through the current level the user is, as a
// percentage. At the level cap the answer is 100.
func (l *Ledger) XPProgress(state models.EconomyState) float64 {
	currentLevelXP := XPRequiredFor(state.Level)
	nextLevelXP := XPRequiredFor(state.Level + 1)

	needed := nextLevelXP - currentLevelXP
	if needed == 0 || state.Level >= MaxLevel {
		return 100
	}

	progress := float64(state.XP-currentLevelXP) / float64(needed) * 100
	return math.Min(100, progress)
}

// LoseHeart spends one heart, never going below zero. The regeneration
// timestamp is untouched.
func (l *Ledger) LoseHeart(state models.EconomyState, now time.Time) models.EconomyState {
	next := state
	if next.Hearts > 0 {
		next.Hearts--
	}
	next.UpdatedAt = now
	return next
}

// RegenerateHearts credits one heart per elapsed regeneration interval.
// The regeneration timestamp advances by whole intervals only, preserving
// the remainder so partial progress toward the next heart is never lost.
func (l *Ledger) RegenerateHearts(state models.EconomyState, now time.Time) models.EconomyState {
	next := state

	elapsed := now.Sub(state.LastHeartRegen)
	if elapsed <= 0 {
		return next
	}

	heartsToAdd := int(elapsed / l.RegenInterval)
	if heartsToAdd <= 0 {
		return next
	}

	next.Hearts = state.Hearts + heartsToAdd
	if next.Hearts > state.MaxHearts {
		next.Hearts = state.MaxHearts
	}
	next.LastHeartRegen = state.LastHeartRegen.Add(time.Duration(heartsToAdd) * l.RegenInterval)
	next.UpdatedAt = now
	return next
}

// EarnHeart adds one heart as a reward, bounded by the cap. Independent of
// the regeneration timer.
func (l *Ledger) EarnHeart(state models.EconomyState, now time.Time) models.EconomyState {
	next := state
	if next.Hearts < next.MaxHearts {
		next.Hearts++
	}
	next.UpdatedAt = now
	return next
}

// RestoreAllHearts refills hearts to the cap and restarts the
// regeneration timer.
func (l *Ledger) RestoreAllHearts(state models.EconomyState, now time.Time) models.EconomyState {
	next := state
	next.Hearts = next.MaxHearts
	next.LastHeartRegen = now
	next.UpdatedAt = now
	return next
}

// TimeUntilNextHeart reports how long until the next heart regenerates,
// zero when already at the cap.
func (l *Ledger) TimeUntilNextHeart(state models.EconomyState, now time.Time) time.Duration {
	if state.Hearts >= state.MaxHearts {
		return 0
	}

	elapsed := now.Sub(state.LastHeartRegen)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := l.RegenInterval - elapsed%l.RegenInterval
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasHearts reports whether the user can attempt a practice session
func (l *Ledger) HasHearts(state models.EconomyState) bool {
	return state.Hearts > 0
}
