package service

import (
	"context"

	"github.com/example/lingopath/pkg/models"
)

// Storage interfaces consumed by the services. The database package
// provides the real implementations; tests use in-memory fakes.

// ReviewStore persists spaced-repetition scheduling records
type ReviewStore interface {
	GetByUserAndItem(ctx context.Context, userID, itemID string) (*models.ReviewRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.ReviewRecord, error)
	Create(ctx context.Context, record *models.ReviewRecord) error
	Update(ctx context.Context, record *models.ReviewRecord) error
}

// PerformanceStore persists accumulated exercise performance
type PerformanceStore interface {
	GetByKey(ctx context.Context, userID, skillID, itemID string) (*models.PerformanceRecord, error)
	ListItemsBySkill(ctx context.Context, userID, skillID string) ([]models.PerformanceRecord, error)
	Create(ctx context.Context, record *models.PerformanceRecord) error
	Update(ctx context.Context, record *models.PerformanceRecord) error
}

// ProgressStore persists per-user progression documents
type ProgressStore interface {
	Get(ctx context.Context, userID string) (*models.PathProgress, error)
	Create(ctx context.Context, progress *models.PathProgress) error
	Update(ctx context.Context, progress *models.PathProgress) error
}

// EconomyStore persists per-user economy state
type EconomyStore interface {
	Get(ctx context.Context, userID string) (*models.EconomyState, error)
	Create(ctx context.Context, state *models.EconomyState) error
	Update(ctx context.Context, state *models.EconomyState) error
}

// Events receives domain events; a nil-backed implementation drops them
type Events interface {
	Publish(eventType string, payload interface{})
}

// maxRetries bounds the optimistic-concurrency retry loop. The engine
// functions are pure, so recomputing from a fresh read is always correct.
const maxRetries = 3
