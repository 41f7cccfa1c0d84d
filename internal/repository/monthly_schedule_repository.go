package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

// MonthlyScheduleRepository persists monthly generation jobs.
type MonthlyScheduleRepository struct {
	db *sqlx.DB
}

// NewMonthlyScheduleRepository creates a new monthly schedule repository.
func NewMonthlyScheduleRepository(db *sqlx.DB) *MonthlyScheduleRepository {
	return &MonthlyScheduleRepository{db: db}
}

const monthlyScheduleColumns = `id, name, month, year, start_date, end_date, default_start_time, default_end_time,
	work_days, location_id, is_active, description, metadata, created_by, updated_by, created_at, updated_at`

// Create stores a new monthly schedule.
func (r *MonthlyScheduleRepository) Create(ctx context.Context, schedule *models.MonthlySchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	schedule.IsActive = true

	const query = `INSERT INTO monthly_schedules (id, name, month, year, start_date, end_date,
			default_start_time, default_end_time, work_days, location_id, is_active,
			description, metadata, created_by, created_at, updated_at)
		VALUES (:id, :name, :month, :year, :start_date, :end_date,
			:default_start_time, :default_end_time, :work_days, :location_id, :is_active,
			:description, :metadata, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create monthly schedule: %w", err)
	}
	return nil
}

// FindByID loads a monthly schedule.
func (r *MonthlyScheduleRepository) FindByID(ctx context.Context, id string) (*models.MonthlySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM monthly_schedules WHERE id = $1`, monthlyScheduleColumns)
	var schedule models.MonthlySchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindByLocationMonth returns the active schedule for a location and period, if any.
func (r *MonthlyScheduleRepository) FindByLocationMonth(ctx context.Context, locationID string, month, year int) (*models.MonthlySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM monthly_schedules
		WHERE location_id = $1 AND month = $2 AND year = $3 AND is_active = true
		ORDER BY created_at DESC LIMIT 1`, monthlyScheduleColumns)
	var schedule models.MonthlySchedule
	if err := r.db.GetContext(ctx, &schedule, query, locationID, month, year); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// List returns active schedules for a location, newest period first.
func (r *MonthlyScheduleRepository) List(ctx context.Context, locationID string, limit, offset int) ([]models.MonthlySchedule, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM monthly_schedules WHERE location_id = $1 AND is_active = true`, locationID); err != nil {
		return nil, 0, fmt.Errorf("count monthly schedules: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM monthly_schedules
		WHERE location_id = $1 AND is_active = true
		ORDER BY year DESC, month DESC LIMIT $2 OFFSET $3`, monthlyScheduleColumns)
	var schedules []models.MonthlySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, locationID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list monthly schedules: %w", err)
	}
	return schedules, total, nil
}

// Update rewrites the mutable columns of a monthly schedule.
func (r *MonthlyScheduleRepository) Update(ctx context.Context, schedule *models.MonthlySchedule) error {
	schedule.UpdatedAt = time.Now().UTC()

	const query = `UPDATE monthly_schedules SET
			name = :name, default_start_time = :default_start_time, default_end_time = :default_end_time,
			work_days = :work_days, description = :description, metadata = :metadata,
			updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update monthly schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a monthly schedule.
func (r *MonthlyScheduleRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE monthly_schedules SET is_active = false, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate monthly schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
