package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lingopath/pkg/models"
)

// PerformanceRepository handles database operations for performance records.
// The skill-level record is stored with an empty item_id.
type PerformanceRepository struct{}

// NewPerformanceRepository creates a new repository instance
func NewPerformanceRepository() *PerformanceRepository {
	return &PerformanceRepository{}
}

// GetByKey returns the record for a (user, skill, item) key. Pass an empty
// itemID for the skill-level record.
func (r *PerformanceRepository) GetByKey(ctx context.Context, userID, skillID, itemID string) (*models.PerformanceRecord, error) {
	var record models.PerformanceRecord
	err := DB.GetContext(ctx, &record,
		`SELECT * FROM performance_records WHERE user_id = $1 AND skill_id = $2 AND item_id = $3`,
		userID, skillID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get performance record: %v", err)
	}
	return &record, nil
}

// ListItemsBySkill returns the per-item records for a skill, excluding the
// skill-level aggregate row
func (r *PerformanceRepository) ListItemsBySkill(ctx context.Context, userID, skillID string) ([]models.PerformanceRecord, error) {
	var records []models.PerformanceRecord
	err := DB.SelectContext(ctx, &records,
		`SELECT * FROM performance_records
		 WHERE user_id = $1 AND skill_id = $2 AND item_id != ''
		 ORDER BY item_id ASC`,
		userID, skillID)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance records: %v", err)
	}
	return records, nil
}

// Create inserts a new performance record
func (r *PerformanceRepository) Create(ctx context.Context, record *models.PerformanceRecord) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO performance_records (
			user_id, skill_id, item_id, total_attempts, correct_attempts,
			average_time, version, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, $7)`,
		record.UserID, record.SkillID, record.ItemID,
		record.TotalAttempts, record.CorrectAttempts, record.AverageTime,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Another request created this record first; retry as an update
			return ErrConflict
		}
		return fmt.Errorf("failed to create performance record: %v", err)
	}
	return nil
}

// Update rewrites a performance record guarded by its version
func (r *PerformanceRepository) Update(ctx context.Context, record *models.PerformanceRecord) error {
	result, err := DB.ExecContext(ctx, `
		UPDATE performance_records SET
			total_attempts = $1,
			correct_attempts = $2,
			average_time = $3,
			version = version + 1,
			updated_at = $4
		WHERE user_id = $5 AND skill_id = $6 AND item_id = $7 AND version = $8`,
		record.TotalAttempts, record.CorrectAttempts, record.AverageTime,
		record.UpdatedAt,
		record.UserID, record.SkillID, record.ItemID, record.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update performance record: %v", err)
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
