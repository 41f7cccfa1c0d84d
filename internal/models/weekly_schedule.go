package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// WeeklySchedule is the canonical recurring timetable assignment: one
// class, subject, teacher and room bound to a day-of-week and time slot
// inside an effective window.
type WeeklySchedule struct {
	ID              string         `db:"id" json:"id"`
	AcademicClassID string         `db:"academic_class_id" json:"academic_class_id"`
	SubjectID       string         `db:"subject_id" json:"subject_id"`
	EmployeeID      string         `db:"employee_id" json:"employee_id"`
	TimeSlotID      string         `db:"time_slot_id" json:"time_slot_id"`
	DayOfWeek       DayOfWeek      `db:"day_of_week" json:"day_of_week"`
	Room            string         `db:"room" json:"room"`
	EffectiveFrom   time.Time      `db:"effective_from" json:"effective_from"`
	EffectiveUntil  *time.Time     `db:"effective_until" json:"effective_until,omitempty"`
	IsLocked        bool           `db:"is_locked" json:"is_locked"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	Metadata        types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedBy       *string        `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy       *string        `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// IsEffectiveOn reports whether the schedule applies on the given date.
func (s WeeklySchedule) IsEffectiveOn(date time.Time) bool {
	date = DateOnly(date)
	if DateOnly(s.EffectiveFrom).After(date) {
		return false
	}
	if s.EffectiveUntil != nil && DateOnly(*s.EffectiveUntil).Before(date) {
		return false
	}
	return true
}

// CanBeModified gates every mutation path: locked or retired rows reject
// changes.
func (s WeeklySchedule) CanBeModified() bool {
	return !s.IsLocked && s.IsActive
}

// WeeklyScheduleFilter narrows list queries.
type WeeklyScheduleFilter struct {
	AcademicClassID string
	EmployeeID      string
	TimeSlotID      string
	DayOfWeek       DayOfWeek
	EffectiveOn     *time.Time
	ActiveOnly      bool
	Page            int
	PageSize        int
}

// ScheduleGridCell is one day × slot cell of a class timetable.
type ScheduleGridCell struct {
	TimeSlot TimeSlot        `json:"time_slot"`
	Schedule *WeeklySchedule `json:"schedule,omitempty"`
	Display  *GridDisplay    `json:"display,omitempty"`
	Status   string          `json:"status"`
}

// GridDisplay carries denormalised cell content for rendering.
type GridDisplay struct {
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	TeacherName string `json:"teacher_name"`
	Room        string `json:"room"`
	Time        string `json:"time"`
	IsLocked    bool   `json:"is_locked"`
	Color       string `json:"color"`
}

// ScheduleGridDay groups the cells of a single weekday.
type ScheduleGridDay struct {
	DayName string             `json:"day_name"`
	Slots   []ScheduleGridCell `json:"slots"`
}

// ScheduleGrid is the day × slot matrix for one class.
type ScheduleGrid struct {
	AcademicClassID string                        `json:"academic_class_id"`
	ReferenceDate   time.Time                     `json:"reference_date"`
	Days            map[DayOfWeek]ScheduleGridDay `json:"days"`
}
