package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

// ChangeLogRepository persists the append-only schedule change trail. Rows
// are never updated or deleted.
type ChangeLogRepository struct {
	db *sqlx.DB
}

// NewChangeLogRepository creates a new change log repository.
func NewChangeLogRepository(db *sqlx.DB) *ChangeLogRepository {
	return &ChangeLogRepository{db: db}
}

const changeLogColumns = `id, schedule_id, action, old_data, new_data, reason, user_id, ip_address,
	action_timestamp, metadata, created_at`

const changeLogInsert = `INSERT INTO schedule_change_logs (id, schedule_id, action, old_data, new_data,
		reason, user_id, ip_address, action_timestamp, metadata, created_at)
	VALUES (:id, :schedule_id, :action, :old_data, :new_data,
		:reason, :user_id, :ip_address, :action_timestamp, :metadata, :created_at)`

// Create appends one change entry.
func (r *ChangeLogRepository) Create(ctx context.Context, entry *models.ScheduleChangeLog) error {
	stampChangeLog(entry)
	if _, err := r.db.NamedExecContext(ctx, changeLogInsert, entry); err != nil {
		return fmt.Errorf("create change log entry: %w", err)
	}
	return nil
}

// CreateWithTx appends one change entry inside a caller-owned transaction.
func (r *ChangeLogRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, entry *models.ScheduleChangeLog) error {
	stampChangeLog(entry)
	if _, err := tx.NamedExecContext(ctx, changeLogInsert, entry); err != nil {
		return fmt.Errorf("create change log entry: %w", err)
	}
	return nil
}

func stampChangeLog(entry *models.ScheduleChangeLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.ActionTimestamp.IsZero() {
		entry.ActionTimestamp = now
	}
	entry.CreatedAt = now
}

// ListBySchedule returns the change trail for a schedule, newest first.
func (r *ChangeLogRepository) ListBySchedule(ctx context.Context, scheduleID string, limit, offset int) ([]models.ScheduleChangeLog, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM schedule_change_logs WHERE schedule_id = $1`, scheduleID); err != nil {
		return nil, 0, fmt.Errorf("count change log entries: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM schedule_change_logs WHERE schedule_id = $1
		ORDER BY action_timestamp DESC LIMIT $2 OFFSET $3`, changeLogColumns)
	var entries []models.ScheduleChangeLog
	if err := r.db.SelectContext(ctx, &entries, query, scheduleID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list change log entries: %w", err)
	}
	return entries, total, nil
}
