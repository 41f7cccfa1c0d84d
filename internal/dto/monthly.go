package dto

import "time"

// CreateMonthlyScheduleRequest defines a generation job for one month.
type CreateMonthlyScheduleRequest struct {
	Name             string    `json:"name" validate:"required,max=255"`
	Month            int       `json:"month" validate:"required,min=1,max=12"`
	Year             int       `json:"year" validate:"required,min=2024,max=2035"`
	StartDate        time.Time `json:"start_date" validate:"required"`
	EndDate          time.Time `json:"end_date" validate:"required"`
	DefaultStartTime string    `json:"default_start_time" validate:"required"`
	DefaultEndTime   string    `json:"default_end_time" validate:"required"`
	WorkDays         []string  `json:"work_days"`
	LocationID       string    `json:"location_id" validate:"required"`
	Description      string    `json:"description" validate:"max=1000"`
}

// AssignEmployeeRequest assigns one employee to a monthly schedule.
type AssignEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
}

// BulkAssignRequest assigns many employees; failures are collected
// per-item and reported in the aggregate result.
type BulkAssignRequest struct {
	EmployeeIDs []string `json:"employee_ids" validate:"required,min=1,dive,uuid"`
}

// FinalizeScheduleRequest triggers attendance placeholder fan-out for all
// settled rows of a monthly schedule.
type FinalizeScheduleRequest struct {
	MonthlyScheduleID string `json:"monthly_schedule_id" validate:"required,uuid"`
}
