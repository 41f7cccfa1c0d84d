package models

import "time"

// ConflictType classifies a detected scheduling conflict.
type ConflictType string

const (
	ConflictTeacherDoubleBooking      ConflictType = "teacher_double_booking"
	ConflictClassDoubleBooking        ConflictType = "class_double_booking"
	ConflictRoomDoubleBooking         ConflictType = "room_double_booking"
	ConflictSubjectFrequencyExceeded  ConflictType = "subject_frequency_exceeded"
	ConflictSubjectSameDayDuplication ConflictType = "subject_same_day"
)

// ConflictSeverity grades how serious a finding is.
type ConflictSeverity string

const (
	SeverityLow      ConflictSeverity = "low"
	SeverityMedium   ConflictSeverity = "medium"
	SeverityHigh     ConflictSeverity = "high"
	SeverityCritical ConflictSeverity = "critical"
)

// Blocking reports whether a finding of this type must reject the write.
// Frequency and same-day findings are advisory only.
func (t ConflictType) Blocking() bool {
	switch t {
	case ConflictTeacherDoubleBooking, ConflictClassDoubleBooking, ConflictRoomDoubleBooking:
		return true
	default:
		return false
	}
}

// ConflictFinding is one result of running the conflict detector. The
// conflicting schedule id is nil for aggregate checks such as weekly
// frequency.
type ConflictFinding struct {
	Type                  ConflictType     `json:"type"`
	Severity              ConflictSeverity `json:"severity"`
	ConflictingScheduleID *string          `json:"conflicting_schedule_id,omitempty"`
	Description           string           `json:"description"`
}

// ScheduleConflictError blocks a write when blocking findings exist.
type ScheduleConflictError struct {
	Message  string            `json:"message"`
	Findings []ConflictFinding `json:"findings"`
}

// Error implements the error interface.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ScheduleConflict is a persisted conflict record linking the offending
// schedule to the conflicting one. Created only by the detector, resolved
// manually.
type ScheduleConflict struct {
	ID              string           `db:"id" json:"id"`
	ScheduleID1     string           `db:"schedule_id_1" json:"schedule_id_1"`
	ScheduleID2     *string          `db:"schedule_id_2" json:"schedule_id_2,omitempty"`
	ConflictType    ConflictType     `db:"conflict_type" json:"conflict_type"`
	Severity        ConflictSeverity `db:"severity" json:"severity"`
	Description     string           `db:"description" json:"description"`
	IsResolved      bool             `db:"is_resolved" json:"is_resolved"`
	DetectedAt      time.Time        `db:"detected_at" json:"detected_at"`
	ResolvedAt      *time.Time       `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy      *string          `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolutionNotes *string          `db:"resolution_notes" json:"resolution_notes,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}
