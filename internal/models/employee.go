package models

import "time"

// EmployeeType categorises employment contracts. Honorary teachers
// (guru honorer) have their shift hours driven by teaching schedules
// instead of the monthly template.
type EmployeeType string

const (
	EmployeeTypePermanent       EmployeeType = "tetap"
	EmployeeTypeContract        EmployeeType = "kontrak"
	EmployeeTypeHonoraryTeacher EmployeeType = "guru_honorer"
	EmployeeTypeStaff           EmployeeType = "staf"
)

// Employee is a read-only projection of the identity directory. The
// scheduling core never mutates employees.
type Employee struct {
	ID           string       `db:"id" json:"id"`
	EmployeeCode string       `db:"employee_code" json:"employee_code"`
	FullName     string       `db:"full_name" json:"full_name"`
	EmployeeType EmployeeType `db:"employee_type" json:"employee_type"`
	LocationID   string       `db:"location_id" json:"location_id"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// IsHonoraryTeacher reports whether teaching-schedule overrides apply.
func (e Employee) IsHonoraryTeacher() bool {
	return e.EmployeeType == EmployeeTypeHonoraryTeacher
}

// EmployeeCapabilities describes teaching-related capability flags supplied
// by the identity directory; they are not scheduling-core columns.
type EmployeeCapabilities struct {
	CanTeach      bool `db:"can_teach" json:"can_teach"`
	CanSubstitute bool `db:"can_substitute" json:"can_substitute"`
}
