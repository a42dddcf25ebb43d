package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/internal/event"
	"github.com/example/lingopath/internal/srs"
	"github.com/example/lingopath/pkg/models"
)

// ReviewService applies spaced-repetition reviews against the store
type ReviewService struct {
	scheduler *srs.Scheduler
	reviews   ReviewStore
	events    Events
	now       func() time.Time
}

// NewReviewService creates the service
func NewReviewService(scheduler *srs.Scheduler, reviews ReviewStore, events Events) *ReviewService {
	return &ReviewService{
		scheduler: scheduler,
		reviews:   reviews,
		events:    events,
		now:       time.Now,
	}
}

// RecordReview records one review outcome for an item, creating the
// scheduling record on first contact. Conflicting concurrent reviews of
// the same item are retried from a fresh read.
func (s *ReviewService) RecordReview(ctx context.Context, userID, itemID string, quality int) (*models.ReviewRecord, error) {
	now := s.now()

	for attempt := 0; attempt < maxRetries; attempt++ {
		record, err := s.reviews.GetByUserAndItem(ctx, userID, itemID)
		created := false
		if errors.Is(err, database.ErrNotFound) {
			initial := s.scheduler.Initialize(userID, itemID, now)
			record = &initial
			created = true
		} else if err != nil {
			return nil, err
		}

		next, err := s.scheduler.CalculateNextReview(*record, quality, now)
		if err != nil {
			return nil, err
		}
		next.ID = record.ID
		next.Version = record.Version

		if created {
			err = s.reviews.Create(ctx, &next)
		} else {
			err = s.reviews.Update(ctx, &next)
		}
		if errors.Is(err, database.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.events.Publish(event.ReviewRecorded, map[string]interface{}{
			"user_id":     userID,
			"item_id":     itemID,
			"quality":     quality,
			"interval":    next.Interval,
			"next_due_at": next.NextDueAt,
		})
		return &next, nil
	}

	return nil, fmt.Errorf("record review for user %s item %s: %w", userID, itemID, database.ErrConflict)
}

// DueItems returns the user's due records, most overdue first
func (s *ReviewService) DueItems(ctx context.Context, userID string, limit int) ([]models.ReviewRecord, error) {
	records, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.scheduler.DueItems(records, limit, s.now()), nil
}

// WeakItems returns the user's weakest records, lowest ease first
func (s *ReviewService) WeakItems(ctx context.Context, userID string) ([]models.ReviewRecord, error) {
	records, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.scheduler.WeakItems(records, s.now()), nil
}

// MasteryLevel derives the 0-100 mastery score for one item
func (s *ReviewService) MasteryLevel(ctx context.Context, userID, itemID string) (int, error) {
	record, err := s.reviews.GetByUserAndItem(ctx, userID, itemID)
	if err != nil {
		return 0, err
	}
	return s.scheduler.MasteryLevel(*record), nil
}
