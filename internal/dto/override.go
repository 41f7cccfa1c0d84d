package dto

import "time"

// CreateHolidayRequest registers a holiday.
type CreateHolidayRequest struct {
	Name          string             `json:"name" validate:"required,max=255"`
	HolidayDate   time.Time          `json:"holiday_date" validate:"required"`
	EndDate       *time.Time         `json:"end_date,omitempty"`
	Type          string             `json:"type" validate:"required,oneof=national regional religious school custom"`
	Description   string             `json:"description" validate:"max=1000"`
	LocationID    *string            `json:"location_id,omitempty"`
	IsRecurring   bool               `json:"is_recurring"`
	ForceOverride *bool              `json:"force_override,omitempty"`
	PaidLeave     *bool              `json:"paid_leave,omitempty"`
	Recurrence    *RecurrenceRequest `json:"recurrence,omitempty"`
}

// RecurrenceRequest describes a yearly recurrence pattern.
type RecurrenceRequest struct {
	Frequency  string   `json:"frequency" validate:"required,oneof=yearly"`
	Month      int      `json:"month" validate:"required,min=1,max=12"`
	DayOfMonth int      `json:"day_of_month" validate:"required,min=1,max=31"`
	Exceptions []string `json:"exceptions,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
}

// GenerateRecurringRequest expands a recurring holiday into future years.
type GenerateRecurringRequest struct {
	Years int `json:"years" validate:"min=1,max=10"`
}

// CreateTeachingScheduleRequest registers a recurring teaching block.
type CreateTeachingScheduleRequest struct {
	TeacherID            string     `json:"teacher_id" validate:"required,uuid"`
	SubjectID            string     `json:"subject_id" validate:"required,uuid"`
	DayOfWeek            string     `json:"day_of_week" validate:"required"`
	TeachingStartTime    string     `json:"teaching_start_time" validate:"required"`
	TeachingEndTime      string     `json:"teaching_end_time" validate:"required"`
	EffectiveFrom        time.Time  `json:"effective_from" validate:"required"`
	EffectiveUntil       *time.Time `json:"effective_until,omitempty"`
	ClassName            string     `json:"class_name" validate:"max=100"`
	Room                 string     `json:"room" validate:"max=100"`
	StudentCount         int        `json:"student_count" validate:"min=0,max=100"`
	OverrideAttendance   *bool      `json:"override_attendance,omitempty"`
	StrictTiming         *bool      `json:"strict_timing,omitempty"`
	LateThresholdMinutes int        `json:"late_threshold_minutes" validate:"min=0,max=120"`
	MonthlyScheduleID    *string    `json:"monthly_schedule_id,omitempty"`
}

// UpdateTeachingScheduleRequest mutates a teaching block; changing override
// fields re-applies the override across the effective range.
type UpdateTeachingScheduleRequest struct {
	TeachingStartTime  string     `json:"teaching_start_time"`
	TeachingEndTime    string     `json:"teaching_end_time"`
	EffectiveUntil     *time.Time `json:"effective_until,omitempty"`
	ClassName          string     `json:"class_name" validate:"max=100"`
	Room               string     `json:"room" validate:"max=100"`
	OverrideAttendance *bool      `json:"override_attendance,omitempty"`
}

// AssignSubstituteRequest places a substitute teacher for a window.
type AssignSubstituteRequest struct {
	SubstituteID string    `json:"substitute_id" validate:"required,uuid"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	Reason       string    `json:"reason" validate:"required,max=500"`
}

// RevertOverrideRequest reverts the latest override on a schedule row.
type RevertOverrideRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
