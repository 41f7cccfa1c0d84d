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

// ScheduleLockRepository persists advisory schedule locks.
type ScheduleLockRepository struct {
	db *sqlx.DB
}

// NewScheduleLockRepository creates a new lock repository.
func NewScheduleLockRepository(db *sqlx.DB) *ScheduleLockRepository {
	return &ScheduleLockRepository{db: db}
}

const scheduleLockColumns = `id, schedule_id, lock_type, reason, locked_at, locked_until, locked_by,
	unlocked_at, unlocked_by, unlock_reason, is_active, created_at, updated_at`

// Create stores a new lock row.
func (r *ScheduleLockRepository) Create(ctx context.Context, lock *models.ScheduleLock) error {
	if lock.ID == "" {
		lock.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lock.IsActive = true
	if lock.LockedAt.IsZero() {
		lock.LockedAt = now
	}
	lock.CreatedAt = now
	lock.UpdatedAt = now

	const query = `INSERT INTO schedule_locks (id, schedule_id, lock_type, reason, locked_at, locked_until, locked_by,
			is_active, created_at, updated_at)
		VALUES (:id, :schedule_id, :lock_type, :reason, :locked_at, :locked_until, :locked_by,
			:is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lock); err != nil {
		return fmt.Errorf("create schedule lock: %w", err)
	}
	return nil
}

// FindActiveBySchedule returns the current active lock for a schedule, if any.
func (r *ScheduleLockRepository) FindActiveBySchedule(ctx context.Context, scheduleID string) (*models.ScheduleLock, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_locks
		WHERE schedule_id = $1 AND is_active = true
		ORDER BY locked_at DESC LIMIT 1`, scheduleLockColumns)
	var lock models.ScheduleLock
	if err := r.db.GetContext(ctx, &lock, query, scheduleID); err != nil {
		return nil, err
	}
	return &lock, nil
}

// Unlock deactivates a lock on behalf of an actor.
func (r *ScheduleLockRepository) Unlock(ctx context.Context, id, unlockedBy, reason string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE schedule_locks SET is_active = false, unlocked_by = $2, unlock_reason = $3, unlocked_at = $4, updated_at = $4
		WHERE id = $1 AND is_active = true`,
		id, unlockedBy, reason, now)
	if err != nil {
		return fmt.Errorf("unlock schedule lock: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListExpiredActive returns locks whose expiry has passed but are still
// flagged active. Untimed locks never show up here.
func (r *ScheduleLockRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]models.ScheduleLock, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_locks
		WHERE is_active = true AND locked_until IS NOT NULL AND locked_until <= $1`, scheduleLockColumns)
	var locks []models.ScheduleLock
	if err := r.db.SelectContext(ctx, &locks, query, now); err != nil {
		return nil, fmt.Errorf("list expired locks: %w", err)
	}
	return locks, nil
}

// ReleaseExpired deactivates an expired lock without an actor. The
// unlocked_by column stays NULL so the sweep remains distinguishable from
// manual unlocks.
func (r *ScheduleLockRepository) ReleaseExpired(ctx context.Context, id string, now time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE schedule_locks SET is_active = false, unlocked_at = $2, updated_at = $2
		WHERE id = $1 AND is_active = true`,
		id, now); err != nil {
		return fmt.Errorf("release expired lock: %w", err)
	}
	return nil
}
