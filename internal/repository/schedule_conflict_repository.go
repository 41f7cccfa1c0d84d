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

// ScheduleConflictRepository persists detected timetable conflicts.
type ScheduleConflictRepository struct {
	db *sqlx.DB
}

// NewScheduleConflictRepository creates a new conflict repository.
func NewScheduleConflictRepository(db *sqlx.DB) *ScheduleConflictRepository {
	return &ScheduleConflictRepository{db: db}
}

const scheduleConflictColumns = `id, schedule_id_1, schedule_id_2, conflict_type, severity, description,
	is_resolved, detected_at, resolved_at, resolved_by, resolution_notes, created_at, updated_at`

// CreateBatch stores detector findings against one schedule inside a
// transaction.
func (r *ScheduleConflictRepository) CreateBatch(ctx context.Context, tx *sqlx.Tx, conflicts []models.ScheduleConflict) error {
	const query = `INSERT INTO schedule_conflicts (id, schedule_id_1, schedule_id_2, conflict_type, severity,
			description, is_resolved, detected_at, created_at, updated_at)
		VALUES (:id, :schedule_id_1, :schedule_id_2, :conflict_type, :severity,
			:description, :is_resolved, :detected_at, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range conflicts {
		if conflicts[i].ID == "" {
			conflicts[i].ID = uuid.NewString()
		}
		if conflicts[i].DetectedAt.IsZero() {
			conflicts[i].DetectedAt = now
		}
		conflicts[i].CreatedAt = now
		conflicts[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, conflicts[i]); err != nil {
			return fmt.Errorf("create schedule conflict: %w", err)
		}
	}
	return nil
}

// FindByID loads a conflict record.
func (r *ScheduleConflictRepository) FindByID(ctx context.Context, id string) (*models.ScheduleConflict, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_conflicts WHERE id = $1`, scheduleConflictColumns)
	var conflict models.ScheduleConflict
	if err := r.db.GetContext(ctx, &conflict, query, id); err != nil {
		return nil, err
	}
	return &conflict, nil
}

// ListBySchedule returns all conflicts recorded against a schedule, newest
// first. Both sides of a pairing are matched.
func (r *ScheduleConflictRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleConflict, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_conflicts
		WHERE schedule_id_1 = $1 OR schedule_id_2 = $1
		ORDER BY detected_at DESC`, scheduleConflictColumns)
	var conflicts []models.ScheduleConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list conflicts by schedule: %w", err)
	}
	return conflicts, nil
}

// ListUnresolved returns every open conflict, most severe first.
func (r *ScheduleConflictRepository) ListUnresolved(ctx context.Context, limit, offset int) ([]models.ScheduleConflict, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM schedule_conflicts WHERE is_resolved = false`); err != nil {
		return nil, 0, fmt.Errorf("count unresolved conflicts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM schedule_conflicts WHERE is_resolved = false
		ORDER BY CASE severity WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, detected_at DESC
		LIMIT $1 OFFSET $2`, scheduleConflictColumns)
	var conflicts []models.ScheduleConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list unresolved conflicts: %w", err)
	}
	return conflicts, total, nil
}

// Resolve marks a conflict as handled by an operator.
func (r *ScheduleConflictRepository) Resolve(ctx context.Context, id, resolvedBy, notes string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE schedule_conflicts SET is_resolved = true, resolved_by = $2, resolved_at = $3, resolution_notes = $4, updated_at = $3
		WHERE id = $1 AND is_resolved = false`,
		id, resolvedBy, now, notes)
	if err != nil {
		return fmt.Errorf("resolve conflict: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteUnresolvedBySchedule removes open conflicts tied to a schedule that is
// being re-evaluated.
func (r *ScheduleConflictRepository) DeleteUnresolvedBySchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM schedule_conflicts WHERE schedule_id_1 = $1 AND is_resolved = false`, scheduleID); err != nil {
		return fmt.Errorf("delete conflicts by schedule: %w", err)
	}
	return nil
}
