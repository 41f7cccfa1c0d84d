package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TeachingStatus tracks the lifecycle of a teaching schedule.
type TeachingStatus string

const (
	TeachingStatusScheduled   TeachingStatus = "scheduled"
	TeachingStatusCancelled   TeachingStatus = "cancelled"
	TeachingStatusRescheduled TeachingStatus = "rescheduled"
	TeachingStatusSubstituted TeachingStatus = "substituted"
)

// TeachingSchedule is a recurring override source: when override_attendance
// is set and the teacher is an honorary teacher, its teaching hours replace
// the monthly template on matching dates. It also carries an optional
// substitute assignment window.
type TeachingSchedule struct {
	ID                    string         `db:"id" json:"id"`
	TeacherID             string         `db:"teacher_id" json:"teacher_id"`
	SubjectID             string         `db:"subject_id" json:"subject_id"`
	MonthlyScheduleID     *string        `db:"monthly_schedule_id" json:"monthly_schedule_id,omitempty"`
	DayOfWeek             DayOfWeek      `db:"day_of_week" json:"day_of_week"`
	TeachingStartTime     string         `db:"teaching_start_time" json:"teaching_start_time"`
	TeachingEndTime       string         `db:"teaching_end_time" json:"teaching_end_time"`
	EffectiveFrom         time.Time      `db:"effective_from" json:"effective_from"`
	EffectiveUntil        *time.Time     `db:"effective_until" json:"effective_until,omitempty"`
	ClassName             string         `db:"class_name" json:"class_name"`
	Room                  string         `db:"room" json:"room"`
	StudentCount          int            `db:"student_count" json:"student_count"`
	IsActive              bool           `db:"is_active" json:"is_active"`
	Status                TeachingStatus `db:"status" json:"status"`
	OverrideAttendance    bool           `db:"override_attendance" json:"override_attendance"`
	StrictTiming          bool           `db:"strict_timing" json:"strict_timing"`
	LateThresholdMinutes  int            `db:"late_threshold_minutes" json:"late_threshold_minutes"`
	SubstituteTeacherID   *string        `db:"substitute_teacher_id" json:"substitute_teacher_id,omitempty"`
	SubstitutionStartDate *time.Time     `db:"substitution_start_date" json:"substitution_start_date,omitempty"`
	SubstitutionEndDate   *time.Time     `db:"substitution_end_date" json:"substitution_end_date,omitempty"`
	SubstitutionReason    *string        `db:"substitution_reason" json:"substitution_reason,omitempty"`
	Metadata              types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedBy             *string        `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy             *string        `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// DurationMinutes returns the teaching block length.
func (t TeachingSchedule) DurationMinutes() (int, error) {
	return ClockDiffMinutes(t.TeachingStartTime, t.TeachingEndTime)
}

// IsEffectiveOn reports whether the schedule applies on the date.
func (t TeachingSchedule) IsEffectiveOn(date time.Time) bool {
	date = DateOnly(date)
	if DateOnly(t.EffectiveFrom).After(date) {
		return false
	}
	if t.EffectiveUntil != nil && DateOnly(*t.EffectiveUntil).Before(date) {
		return false
	}
	return true
}

// HasSubstituteOn reports whether the substitution window covers the date.
func (t TeachingSchedule) HasSubstituteOn(date time.Time) bool {
	if t.SubstituteTeacherID == nil || t.SubstitutionStartDate == nil || t.SubstitutionEndDate == nil {
		return false
	}
	date = DateOnly(date)
	return !DateOnly(*t.SubstitutionStartDate).After(date) && !DateOnly(*t.SubstitutionEndDate).Before(date)
}

// EffectiveTeacherID resolves to the substitute inside the substitution
// window, otherwise the original teacher.
func (t TeachingSchedule) EffectiveTeacherID(date time.Time) string {
	if t.HasSubstituteOn(date) {
		return *t.SubstituteTeacherID
	}
	return t.TeacherID
}

// CanOverrideFor reports whether this source may replace the monthly
// template for the given employee on the given date.
func (t TeachingSchedule) CanOverrideFor(employee Employee, date time.Time) bool {
	if !employee.IsHonoraryTeacher() {
		return false
	}
	if !t.IsActive || !t.OverrideAttendance {
		return false
	}
	if !t.IsEffectiveOn(date) {
		return false
	}
	return DayFromTime(date) == t.DayOfWeek
}

// FormattedTime renders the teaching block for display.
func (t TeachingSchedule) FormattedTime() string {
	return t.TeachingStartTime + " - " + t.TeachingEndTime
}

// TeachingScheduleFilter narrows teaching schedule queries.
type TeachingScheduleFilter struct {
	TeacherID   string
	SubjectID   string
	DayOfWeek   DayOfWeek
	Status      TeachingStatus
	ActiveOnly  bool
	EffectiveOn *time.Time
	Page        int
	PageSize    int
}

// TeacherWorkload summarises active weekly teaching load for one teacher.
type TeacherWorkload struct {
	TeacherID          string                     `json:"teacher_id"`
	TotalHoursPerWeek  float64                    `json:"total_hours_per_week"`
	TotalClasses       int                        `json:"total_classes"`
	SubjectBreakdown   []WorkloadSubjectBreakdown `json:"subject_breakdown"`
	WorkloadPercentage float64                    `json:"workload_percentage"`
	IsOverloaded       bool                       `json:"is_overloaded"`
}

// WorkloadSubjectBreakdown is the per-subject slice of a workload summary.
type WorkloadSubjectBreakdown struct {
	SubjectID    string   `json:"subject_id"`
	SubjectName  string   `json:"subject_name"`
	HoursPerWeek float64  `json:"hours_per_week"`
	ClassesCount int      `json:"classes_count"`
	Classes      []string `json:"classes"`
}
