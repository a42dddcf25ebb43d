package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/lingopath/pkg/models"
)

// ProgressRepository stores each user's progression document as a single
// versioned JSON row, so the upward-propagation walk is applied with one
// compare-and-swap per user.
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

type progressRow struct {
	UserID   string `db:"user_id"`
	Progress string `db:"progress"`
	Version  int    `db:"version"`
}

// Get returns a user's progression document
func (r *ProgressRepository) Get(ctx context.Context, userID string) (*models.PathProgress, error) {
	var row progressRow
	err := DB.GetContext(ctx, &row,
		`SELECT user_id, progress, version FROM path_progress WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get path progress: %v", err)
	}

	var progress models.PathProgress
	if err := json.Unmarshal([]byte(row.Progress), &progress); err != nil {
		return nil, fmt.Errorf("failed to decode path progress: %v", err)
	}
	progress.Version = row.Version
	return &progress, nil
}

// Create inserts a fresh progression document at version zero
func (r *ProgressRepository) Create(ctx context.Context, progress *models.PathProgress) error {
	body, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode path progress: %v", err)
	}

	_, err = DB.ExecContext(ctx,
		`INSERT INTO path_progress (user_id, progress, version) VALUES ($1, $2, 0)`,
		progress.UserID, string(body))
	if err != nil {
		return fmt.Errorf("failed to create path progress: %v", err)
	}
	progress.Version = 0
	return nil
}

// Update swaps in a new document guarded by the version read earlier.
// Returns ErrConflict when a concurrent writer advanced the version.
func (r *ProgressRepository) Update(ctx context.Context, progress *models.PathProgress) error {
	body, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode path progress: %v", err)
	}

	result, err := DB.ExecContext(ctx, `
		UPDATE path_progress SET
			progress = $1,
			version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2 AND version = $3`,
		string(body), progress.UserID, progress.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update path progress: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrConflict
	}

	progress.Version++
	return nil
}
