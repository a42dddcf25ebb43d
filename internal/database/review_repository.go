package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lingopath/pkg/models"
)

// ReviewRepository handles database operations for spaced-repetition records
type ReviewRepository struct{}

// NewReviewRepository creates a new repository instance
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{}
}

// GetByUserAndItem returns the scheduling record for one user and item
func (r *ReviewRepository) GetByUserAndItem(ctx context.Context, userID, itemID string) (*models.ReviewRecord, error) {
	var record models.ReviewRecord
	err := DB.GetContext(ctx, &record,
		`SELECT * FROM review_records WHERE user_id = $1 AND item_id = $2`,
		userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review record: %v", err)
	}
	return &record, nil
}

// ListByUser returns all scheduling records for a user
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	err := DB.SelectContext(ctx, &records,
		`SELECT * FROM review_records WHERE user_id = $1 ORDER BY next_due_at ASC, id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %v", err)
	}
	return records, nil
}

// ListUserIDs returns every user with scheduling records, for background sweeps
func (r *ReviewRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := DB.SelectContext(ctx, &ids,
		`SELECT DISTINCT user_id FROM review_records ORDER BY user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list review users: %v", err)
	}
	return ids, nil
}

// Create inserts a new scheduling record
func (r *ReviewRepository) Create(ctx context.Context, record *models.ReviewRecord) error {
	if Dialect() == "sqlite" {
		result, err := DB.ExecContext(ctx, `
			INSERT INTO review_records (
				user_id, item_id, ease_factor, interval, repetitions,
				last_quality, last_reviewed_at, next_due_at, version
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)`,
			record.UserID, record.ItemID, record.EaseFactor, record.Interval,
			record.Repetitions, record.LastQuality, record.LastReviewedAt, record.NextDueAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				// Another request created this record first; retry as an update
				return ErrConflict
			}
			return fmt.Errorf("failed to create review record: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %v", err)
		}
		record.ID = id
		return nil
	}

	err := DB.QueryRowContext(ctx, `
		INSERT INTO review_records (
			user_id, item_id, ease_factor, interval, repetitions,
			last_quality, last_reviewed_at, next_due_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
		RETURNING id`,
		record.UserID, record.ItemID, record.EaseFactor, record.Interval,
		record.Repetitions, record.LastQuality, record.LastReviewedAt, record.NextDueAt,
	).Scan(&record.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create review record: %v", err)
	}
	return nil
}

// Update rewrites a scheduling record guarded by its version. Returns
// ErrConflict when another writer got there first.
func (r *ReviewRepository) Update(ctx context.Context, record *models.ReviewRecord) error {
	result, err := DB.ExecContext(ctx, `
		UPDATE review_records SET
			ease_factor = $1,
			interval = $2,
			repetitions = $3,
			last_quality = $4,
			last_reviewed_at = $5,
			next_due_at = $6,
			version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $7 AND item_id = $8 AND version = $9`,
		record.EaseFactor, record.Interval, record.Repetitions,
		record.LastQuality, record.LastReviewedAt, record.NextDueAt,
		record.UserID, record.ItemID, record.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update review record: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrConflict
	}

	record.Version++
	return nil
}
