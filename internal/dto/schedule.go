package dto

import "time"

// CreateWeeklyScheduleRequest creates a base timetable assignment.
type CreateWeeklyScheduleRequest struct {
	AcademicClassID string     `json:"academic_class_id" validate:"required,uuid"`
	SubjectID       string     `json:"subject_id" validate:"required,uuid"`
	EmployeeID      string     `json:"employee_id" validate:"required,uuid"`
	TimeSlotID      string     `json:"time_slot_id" validate:"required,uuid"`
	DayOfWeek       string     `json:"day_of_week" validate:"required"`
	Room            string     `json:"room" validate:"max=100"`
	EffectiveFrom   time.Time  `json:"effective_from" validate:"required"`
	EffectiveUntil  *time.Time `json:"effective_until,omitempty"`
	Force           bool       `json:"force"`
}

// UpdateWeeklyScheduleRequest mutates an existing assignment.
type UpdateWeeklyScheduleRequest struct {
	SubjectID      string     `json:"subject_id" validate:"omitempty,uuid"`
	EmployeeID     string     `json:"employee_id" validate:"omitempty,uuid"`
	TimeSlotID     string     `json:"time_slot_id" validate:"omitempty,uuid"`
	DayOfWeek      string     `json:"day_of_week"`
	Room           string     `json:"room" validate:"max=100"`
	EffectiveUntil *time.Time `json:"effective_until,omitempty"`
	Reason         string     `json:"reason" validate:"max=500"`
}

// LockScheduleRequest locks a weekly schedule against mutation.
type LockScheduleRequest struct {
	Reason      string     `json:"reason" validate:"required,max=500"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// UnlockScheduleRequest releases an active lock.
type UnlockScheduleRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ResolveConflictRequest marks a persisted conflict as handled.
type ResolveConflictRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

// CreateTimeSlotRequest registers a catalog slot.
type CreateTimeSlotRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	SlotOrder int    `json:"slot_order" validate:"required,min=1"`
}
