package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleSource tags which schedule source produced an expected shift.
type ScheduleSource string

const (
	ScheduleSourceBase            ScheduleSource = "base_schedule"
	ScheduleSourceMonthly         ScheduleSource = "monthly_schedule"
	ScheduleSourceTeaching        ScheduleSource = "teaching_schedule"
	ScheduleSourceHolidayOverride ScheduleSource = "holiday_override"
	ScheduleSourceSubstitute      ScheduleSource = "substitute_assignment"
)

// Attendance is the placeholder row handed to the attendance subsystem:
// an expected-shift snapshot, never actual clock-in data.
type Attendance struct {
	ID                        string         `db:"id" json:"id"`
	EmployeeID                string         `db:"employee_id" json:"employee_id"`
	Date                      time.Time      `db:"date" json:"date"`
	LocationID                string         `db:"location_id" json:"location_id"`
	EmployeeMonthlyScheduleID *string        `db:"employee_monthly_schedule_id" json:"employee_monthly_schedule_id,omitempty"`
	TeachingScheduleID        *string        `db:"teaching_schedule_id" json:"teaching_schedule_id,omitempty"`
	HolidayID                 *string        `db:"holiday_id" json:"holiday_id,omitempty"`
	ScheduleSource            ScheduleSource `db:"schedule_source" json:"schedule_source"`
	Status                    *string        `db:"status" json:"status,omitempty"`
	ScheduleMetadata          types.JSONText `db:"schedule_metadata" json:"schedule_metadata,omitempty"`
	CreatedAt                 time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time      `db:"updated_at" json:"updated_at"`
}

// ExpectedShift is the snapshot embedded in an attendance placeholder.
type ExpectedShift struct {
	ExpectedStart string    `json:"expected_start"`
	ExpectedEnd   string    `json:"expected_end"`
	ExpectedHours float64   `json:"expected_hours"`
	ScheduleType  string    `json:"schedule_type"`
	CalculatedAt  time.Time `json:"calculated_at"`
}

// EffectiveSchedule is the precedence resolver's output: the schedule that
// actually applies to one employee on one date after all override sources
// are consulted in fixed order.
type EffectiveSchedule struct {
	EmployeeID         string         `json:"employee_id"`
	Date               time.Time      `json:"date"`
	StartTime          string         `json:"start_time"`
	EndTime            string         `json:"end_time"`
	LocationID         string         `json:"location_id"`
	Status             ScheduleStatus `json:"status"`
	WorkingHours       float64        `json:"working_hours"`
	IsWorkingDay       bool           `json:"is_working_day"`
	Source             ScheduleSource `json:"schedule_source"`
	TeachingScheduleID *string        `json:"teaching_schedule_id,omitempty"`
	SubstituteID       *string        `json:"substitute_teacher_id,omitempty"`
	HolidayID          *string        `json:"holiday_id,omitempty"`
	HolidayName        string         `json:"holiday_name,omitempty"`
	SubjectName        string         `json:"subject,omitempty"`
	ClassName          string         `json:"class_name,omitempty"`
}
