package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/internal/economy"
	"github.com/example/lingopath/internal/event"
	"github.com/example/lingopath/pkg/models"
)

// EconomyService applies XP and heart mutations against the store
type EconomyService struct {
	ledger *economy.Ledger
	store  EconomyStore
	events Events
	now    func() time.Time
}

// NewEconomyService creates the service
func NewEconomyService(ledger *economy.Ledger, store EconomyStore, events Events) *EconomyService {
	return &EconomyService{
		ledger: ledger,
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// GetState returns the user's economy, creating the starting state on
// first contact
func (s *EconomyService) GetState(ctx context.Context, userID string) (*models.EconomyState, error) {
	state, err := s.store.Get(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	fresh := s.ledger.InitState(userID, s.now())
	if err := s.store.Create(ctx, &fresh); err != nil {
		if existing, getErr := s.store.Get(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return &fresh, nil
}

// AddXP grants XP, re-derives the level and publishes a level-up event
// when a threshold was crossed
func (s *EconomyService) AddXP(ctx context.Context, userID string, amount int) (*models.EconomyState, economy.LevelUpResult, error) {
	var result economy.LevelUpResult

	state, err := s.mutate(ctx, userID, func(state models.EconomyState, now time.Time) (models.EconomyState, error) {
		next, res, err := s.ledger.AddXP(state, amount, now)
		result = res
		return next, err
	})
	if err != nil {
		return nil, economy.LevelUpResult{}, err
	}

	if result.LeveledUp {
		s.events.Publish(event.LevelUp, map[string]interface{}{
			"user_id":        userID,
			"new_level":      result.NewLevel,
			"previous_level": result.PreviousLevel,
		})
	}
	return state, result, nil
}

// XPProgressFor returns how far through the current level a state is.
// Callers that already hold the state avoid a second store read.
func (s *EconomyService) XPProgressFor(state *models.EconomyState) float64 {
	return s.ledger.XPProgress(*state)
}

// LoseHeart spends one heart
func (s *EconomyService) LoseHeart(ctx context.Context, userID string) (*models.EconomyState, error) {
	return s.mutate(ctx, userID, func(state models.EconomyState, now time.Time) (models.EconomyState, error) {
		return s.ledger.LoseHeart(state, now), nil
	})
}

// RegenerateHearts credits hearts for elapsed regeneration intervals
func (s *EconomyService) RegenerateHearts(ctx context.Context, userID string) (*models.EconomyState, error) {
	return s.mutate(ctx, userID, func(state models.EconomyState, now time.Time) (models.EconomyState, error) {
		return s.ledger.RegenerateHearts(state, now), nil
	})
}

// EarnHeart adds one reward heart
func (s *EconomyService) EarnHeart(ctx context.Context, userID string) (*models.EconomyState, error) {
	return s.mutate(ctx, userID, func(state models.EconomyState, now time.Time) (models.EconomyState, error) {
		return s.ledger.EarnHeart(state, now), nil
	})
}

// RestoreAllHearts refills hearts to the cap
func (s *EconomyService) RestoreAllHearts(ctx context.Context, userID string) (*models.EconomyState, error) {
	return s.mutate(ctx, userID, func(state models.EconomyState, now time.Time) (models.EconomyState, error) {
		return s.ledger.RestoreAllHearts(state, now), nil
	})
}

// TimeUntilNextHeart reports milliseconds until the next heart, zero at
// the cap
func (s *EconomyService) TimeUntilNextHeart(ctx context.Context, userID string) (int64, error) {
	state, err := s.GetState(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.ledger.TimeUntilNextHeart(*state, s.now()).Milliseconds(), nil
}

// HasHearts reports whether the user can attempt practice
func (s *EconomyService) HasHearts(ctx context.Context, userID string) (bool, error) {
	state, err := s.GetState(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.ledger.HasHearts(*state), nil
}

// mutate runs one read-modify-write with conflict retries
func (s *EconomyService) mutate(ctx context.Context, userID string, apply func(models.EconomyState, time.Time) (models.EconomyState, error)) (*models.EconomyState, error) {
	now := s.now()

	for attempt := 0; attempt < maxRetries; attempt++ {
		state, err := s.GetState(ctx, userID)
		if err != nil {
			return nil, err
		}

		next, err := apply(*state, now)
		if err != nil {
			return nil, err
		}
		next.Version = state.Version

		err = s.store.Update(ctx, &next)
		if errors.Is(err, database.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &next, nil
	}

	return nil, fmt.Errorf("update economy for user %s: %w", userID, database.ErrConflict)
}
