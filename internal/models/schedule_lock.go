package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// LockType records who initiated a schedule lock.
type LockType string

const (
	LockTypeManual    LockType = "manual"
	LockTypeAutomatic LockType = "automatic"
	LockTypeSystem    LockType = "system"
)

// ScheduleLock is an advisory business lock on a weekly schedule. It is
// checked by application code, not enforced by the datastore.
type ScheduleLock struct {
	ID           string     `db:"id" json:"id"`
	ScheduleID   string     `db:"schedule_id" json:"schedule_id"`
	LockType     LockType   `db:"lock_type" json:"lock_type"`
	Reason       string     `db:"reason" json:"reason"`
	LockedAt     time.Time  `db:"locked_at" json:"locked_at"`
	LockedUntil  *time.Time `db:"locked_until" json:"locked_until,omitempty"`
	LockedBy     string     `db:"locked_by" json:"locked_by"`
	UnlockedAt   *time.Time `db:"unlocked_at" json:"unlocked_at,omitempty"`
	UnlockedBy   *string    `db:"unlocked_by" json:"unlocked_by,omitempty"`
	UnlockReason *string    `db:"unlock_reason" json:"unlock_reason,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsExpired reports whether a timed lock has passed its expiry. Locks
// without locked_until never expire.
func (l ScheduleLock) IsExpired(now time.Time) bool {
	return l.LockedUntil != nil && l.LockedUntil.Before(now)
}

// IsCurrentlyLocked combines the active flag with expiry.
func (l ScheduleLock) IsCurrentlyLocked(now time.Time) bool {
	return l.IsActive && !l.IsExpired(now)
}

// ChangeAction labels an entry in the schedule change log.
type ChangeAction string

const (
	ChangeActionCreate     ChangeAction = "create"
	ChangeActionUpdate     ChangeAction = "update"
	ChangeActionDelete     ChangeAction = "delete"
	ChangeActionLock       ChangeAction = "lock"
	ChangeActionUnlock     ChangeAction = "unlock"
	ChangeActionBulkUpdate ChangeAction = "bulk_update"
)

// ScheduleChangeLog is an append-only audit record of schedule mutations.
type ScheduleChangeLog struct {
	ID              string         `db:"id" json:"id"`
	ScheduleID      string         `db:"schedule_id" json:"schedule_id"`
	Action          ChangeAction   `db:"action" json:"action"`
	OldData         types.JSONText `db:"old_data" json:"old_data,omitempty"`
	NewData         types.JSONText `db:"new_data" json:"new_data,omitempty"`
	Reason          *string        `db:"reason" json:"reason,omitempty"`
	UserID          *string        `db:"user_id" json:"user_id,omitempty"`
	IPAddress       string         `db:"ip_address" json:"ip_address"`
	ActionTimestamp time.Time      `db:"action_timestamp" json:"action_timestamp"`
	Metadata        types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// FieldChange describes one changed field between two snapshots.
type FieldChange struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}

// ChangedFields diffs the old and new snapshots of a change-log entry.
func (c ScheduleChangeLog) ChangedFields() []FieldChange {
	if len(c.OldData) == 0 || len(c.NewData) == 0 {
		return nil
	}
	var oldData, newData map[string]interface{}
	if err := json.Unmarshal(c.OldData, &oldData); err != nil {
		return nil
	}
	if err := json.Unmarshal(c.NewData, &newData); err != nil {
		return nil
	}

	var changes []FieldChange
	for field, oldValue := range oldData {
		newValue, ok := newData[field]
		if !ok {
			continue
		}
		oldJSON, _ := json.Marshal(oldValue)
		newJSON, _ := json.Marshal(newValue)
		if string(oldJSON) != string(newJSON) {
			changes = append(changes, FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
		}
	}
	return changes
}
