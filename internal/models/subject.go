package models

import "time"

// Subject is a taught subject with its weekly frequency ceiling.
type Subject struct {
	ID                 string    `db:"id" json:"id"`
	Code               string    `db:"code" json:"code"`
	Name               string    `db:"name" json:"name"`
	Color              string    `db:"color" json:"color"`
	MaxMeetingsPerWeek int       `db:"max_meetings_per_week" json:"max_meetings_per_week"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicClass is a student group that owns one timetable grid.
type AcademicClass struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	GradeName string    `db:"grade_name" json:"grade_name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName renders the class for conflict descriptions.
func (c AcademicClass) FullName() string {
	if c.GradeName == "" {
		return c.Name
	}
	return c.GradeName + " " + c.Name
}
