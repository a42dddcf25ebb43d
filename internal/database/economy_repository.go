package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lingopath/pkg/models"
)

// EconomyRepository handles database operations for per-user economy state
type EconomyRepository struct{}

// NewEconomyRepository creates a new repository instance
func NewEconomyRepository() *EconomyRepository {
	return &EconomyRepository{}
}

// Get returns a user's economy state
func (r *EconomyRepository) Get(ctx context.Context, userID string) (*models.EconomyState, error) {
	var state models.EconomyState
	err := DB.GetContext(ctx, &state,
		`SELECT * FROM economy WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get economy state: %v", err)
	}
	return &state, nil
}

// Create inserts the starting economy state for a user
func (r *EconomyRepository) Create(ctx context.Context, state *models.EconomyState) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO economy (user_id, xp, level, hearts, max_hearts, last_heart_regen, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7)`,
		state.UserID, state.XP, state.Level, state.Hearts, state.MaxHearts,
		state.LastHeartRegen, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create economy state: %v", err)
	}
	state.Version = 0
	return nil
}

// Update rewrites the economy state guarded by its version
func (r *EconomyRepository) Update(ctx context.Context, state *models.EconomyState) error {
	result, err := DB.ExecContext(ctx, `
		UPDATE economy SET
			xp = $1,
			level = $2,
			hearts = $3,
			max_hearts = $4,
			last_heart_regen = $5,
			version = version + 1,
			updated_at = $6
		WHERE user_id = $7 AND version = $8`,
		state.XP, state.Level, state.Hearts, state.MaxHearts,
		state.LastHeartRegen, state.UpdatedAt,
		state.UserID, state.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update economy state: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrConflict
	}

	state.Version++
	return nil
}

// ListUserIDs returns every user with an economy row, for background sweeps
func (r *EconomyRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := DB.SelectContext(ctx, &ids, `SELECT user_id FROM economy ORDER BY user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list economy users: %v", err)
	}
	return ids, nil
}
