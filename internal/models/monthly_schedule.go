package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// MonthlySchedule is a named generation job: it expands into one
// EmployeeMonthlySchedule row per employee per working day in range.
type MonthlySchedule struct {
	ID               string         `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Month            int            `db:"month" json:"month"`
	Year             int            `db:"year" json:"year"`
	StartDate        time.Time      `db:"start_date" json:"start_date"`
	EndDate          time.Time      `db:"end_date" json:"end_date"`
	DefaultStartTime string         `db:"default_start_time" json:"default_start_time"`
	DefaultEndTime   string         `db:"default_end_time" json:"default_end_time"`
	WorkDays         pq.StringArray `db:"work_days" json:"work_days"`
	LocationID       string         `db:"location_id" json:"location_id"`
	IsActive         bool           `db:"is_active" json:"is_active"`
	Description      *string        `db:"description" json:"description,omitempty"`
	Metadata         types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedBy        *string        `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy        *string        `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// DefaultWorkDays applies when a schedule is created without an explicit
// work-day set.
var DefaultWorkDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// WorkingHours derives the default shift length in hours.
func (m MonthlySchedule) WorkingHours() (float64, error) {
	minutes, err := ClockDiffMinutes(m.DefaultStartTime, m.DefaultEndTime)
	if err != nil {
		return 0, err
	}
	if minutes < 0 {
		return 0, fmt.Errorf("default end time %s precedes start time %s", m.DefaultEndTime, m.DefaultStartTime)
	}
	return float64(minutes) / 60, nil
}

// IsWorkDay reports whether the date's weekday is in the configured set.
func (m MonthlySchedule) IsWorkDay(date time.Time) bool {
	workDays := m.WorkDays
	if len(workDays) == 0 {
		workDays = DefaultWorkDays
	}
	day := string(DayFromTime(date))
	for _, candidate := range workDays {
		if candidate == day {
			return true
		}
	}
	return false
}

// ContainsDate reports whether the date is inside the generation range.
func (m MonthlySchedule) ContainsDate(date time.Time) bool {
	date = DateOnly(date)
	return !DateOnly(m.StartDate).After(date) && !DateOnly(m.EndDate).Before(date)
}

// ScheduleStatus tracks an employee schedule row through its overrides.
type ScheduleStatus string

const (
	ScheduleStatusActive     ScheduleStatus = "active"
	ScheduleStatusOverridden ScheduleStatus = "overridden"
	ScheduleStatusHoliday    ScheduleStatus = "holiday"
	ScheduleStatusLeave      ScheduleStatus = "leave"
	ScheduleStatusSuspended  ScheduleStatus = "suspended"
)

// OverrideType labels the source of the last override on a row.
type OverrideType string

const (
	OverrideTypeHoliday  OverrideType = "holiday"
	OverrideTypeTeaching OverrideType = "teaching"
)

// OverrideMetadata is the structured snapshot stored on a schedule row
// recording why, when and by whom it was last changed, together with the
// pre-change values needed for revert. A single-level undo: applying a new
// override replaces the snapshot.
type OverrideMetadata struct {
	OverrideType       OverrideType      `json:"override_type,omitempty"`
	HolidayID          string            `json:"holiday_id,omitempty"`
	HolidayName        string            `json:"holiday_name,omitempty"`
	HolidayType        string            `json:"holiday_type,omitempty"`
	TeachingScheduleID string            `json:"teaching_schedule_id,omitempty"`
	OriginalStartTime  string            `json:"original_start_time,omitempty"`
	OriginalEndTime    string            `json:"original_end_time,omitempty"`
	OverrideReason     string            `json:"override_reason,omitempty"`
	OverrideAt         *time.Time        `json:"override_at,omitempty"`
	OverrideBy         string            `json:"override_by,omitempty"`
	RevertedAt         *time.Time        `json:"reverted_at,omitempty"`
	RevertedBy         string            `json:"reverted_by,omitempty"`
	RevertReason       string            `json:"revert_reason,omitempty"`
	PreviousOverride   *OverrideMetadata `json:"previous_override,omitempty"`
}

// EmployeeMonthlySchedule is the mutable per-date, per-employee schedule
// instance the override layer operates on.
type EmployeeMonthlySchedule struct {
	ID                string         `db:"id" json:"id"`
	MonthlyScheduleID string         `db:"monthly_schedule_id" json:"monthly_schedule_id"`
	EmployeeID        string         `db:"employee_id" json:"employee_id"`
	EffectiveDate     time.Time      `db:"effective_date" json:"effective_date"`
	StartTime         string         `db:"start_time" json:"start_time"`
	EndTime           string         `db:"end_time" json:"end_time"`
	LocationID        string         `db:"location_id" json:"location_id"`
	Status            ScheduleStatus `db:"status" json:"status"`
	OverrideMetadata  types.JSONText `db:"override_metadata" json:"override_metadata,omitempty"`
	ScheduledHours    float64        `db:"scheduled_hours" json:"scheduled_hours"`
	IsWeekend         bool           `db:"is_weekend" json:"is_weekend"`
	IsHoliday         bool           `db:"is_holiday" json:"is_holiday"`
	AttendanceID      *string        `db:"attendance_id" json:"attendance_id,omitempty"`
	AssignedBy        *string        `db:"assigned_by" json:"assigned_by,omitempty"`
	ModifiedBy        *string        `db:"modified_by" json:"modified_by,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// Metadata decodes the override snapshot; an empty column yields the zero
// value.
func (s EmployeeMonthlySchedule) Metadata() (OverrideMetadata, error) {
	var meta OverrideMetadata
	if len(s.OverrideMetadata) == 0 || string(s.OverrideMetadata) == "{}" {
		return meta, nil
	}
	if err := json.Unmarshal(s.OverrideMetadata, &meta); err != nil {
		return meta, fmt.Errorf("decode override metadata for %s: %w", s.ID, err)
	}
	return meta, nil
}

// SetMetadata replaces the override snapshot.
func (s *EmployeeMonthlySchedule) SetMetadata(meta OverrideMetadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode override metadata for %s: %w", s.ID, err)
	}
	s.OverrideMetadata = types.JSONText(raw)
	return nil
}

// IsWorkingDay reports whether the row still represents an expected shift.
func (s EmployeeMonthlySchedule) IsWorkingDay() bool {
	return !s.IsWeekend && !s.IsHoliday && s.Status == ScheduleStatusActive
}

// WorkingHours returns the expected shift length; holiday rows count zero.
func (s EmployeeMonthlySchedule) WorkingHours() float64 {
	if s.IsHoliday || s.Status == ScheduleStatusHoliday {
		return 0
	}
	return s.ScheduledHours
}

// EmployeeScheduleFilter narrows employee schedule queries.
type EmployeeScheduleFilter struct {
	MonthlyScheduleID string
	EmployeeID        string
	LocationID        string
	Status            ScheduleStatus
	DateFrom          *time.Time
	DateTo            *time.Time
	Page              int
	PageSize          int
}

// BulkAssignResult aggregates a bulk employee assignment run. Per-item
// failures never abort sibling items.
type BulkAssignResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}
