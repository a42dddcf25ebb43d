package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lingopath/internal/adaptive"
	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/pkg/models"
)

// PerformanceService records exercise attempts and answers difficulty
// queries. An attempt with an item ID updates the per-item record; without
// one it updates the skill-level record (empty item key).
type PerformanceService struct {
	estimator   *adaptive.Estimator
	performance PerformanceStore
	now         func() time.Time
}

// NewPerformanceService creates the service
func NewPerformanceService(estimator *adaptive.Estimator, performance PerformanceStore) *PerformanceService {
	return &PerformanceService{
		estimator:   estimator,
		performance: performance,
		now:         time.Now,
	}
}

// RecordAttempt folds one exercise outcome into the performance record,
// creating it on first contact
func (s *PerformanceService) RecordAttempt(ctx context.Context, userID, skillID, itemID string, correct bool, timeSpentSeconds float64) error {
	now := s.now()

	for attempt := 0; attempt < maxRetries; attempt++ {
		record, err := s.performance.GetByKey(ctx, userID, skillID, itemID)
		created := false
		if errors.Is(err, database.ErrNotFound) {
			record = &models.PerformanceRecord{
				UserID:  userID,
				SkillID: skillID,
				ItemID:  itemID,
			}
			created = true
		} else if err != nil {
			return err
		}

		next := s.estimator.ApplyAttempt(*record, correct, timeSpentSeconds, now)
		next.ID = record.ID
		next.Version = record.Version

		if created {
			err = s.performance.Create(ctx, &next)
		} else {
			err = s.performance.Update(ctx, &next)
		}
		if errors.Is(err, database.ErrConflict) {
			continue
		}
		return err
	}

	return fmt.Errorf("record attempt for user %s skill %s: %w", userID, skillID, database.ErrConflict)
}

// CalculateDifficulty recommends the next exercise difficulty. A missing
// record yields the base difficulty with low confidence.
func (s *PerformanceService) CalculateDifficulty(ctx context.Context, userID, skillID, itemID string, baseDifficulty int) (adaptive.DifficultyAdjustment, error) {
	record, err := s.performance.GetByKey(ctx, userID, skillID, itemID)
	if errors.Is(err, database.ErrNotFound) {
		record = nil
	} else if err != nil {
		return adaptive.DifficultyAdjustment{}, err
	}
	return s.estimator.CalculateDifficulty(record, baseDifficulty)
}

// WeakAreas returns the item IDs in a skill that need extra practice
func (s *PerformanceService) WeakAreas(ctx context.Context, userID, skillID string) ([]string, error) {
	records, err := s.performance.ListItemsBySkill(ctx, userID, skillID)
	if err != nil {
		return nil, err
	}
	return s.estimator.WeakAreas(records), nil
}

// ShouldReviewSkill reports whether a skill needs a refresher given how
// long ago it was last reviewed
func (s *PerformanceService) ShouldReviewSkill(ctx context.Context, userID, skillID string, daysSinceLastReview int) (bool, error) {
	record, err := s.performance.GetByKey(ctx, userID, skillID, "")
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.estimator.ShouldReviewSkill(record, daysSinceLastReview), nil
}

// LearningSpeed returns the pacing multiplier for a skill
func (s *PerformanceService) LearningSpeed(ctx context.Context, userID, skillID string) (float64, error) {
	record, err := s.performance.GetByKey(ctx, userID, skillID, "")
	if errors.Is(err, database.ErrNotFound) {
		return 1.0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.estimator.LearningSpeed(record), nil
}
