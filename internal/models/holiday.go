package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// HolidayType classifies a holiday's origin.
type HolidayType string

const (
	HolidayTypeNational  HolidayType = "national"
	HolidayTypeRegional  HolidayType = "regional"
	HolidayTypeReligious HolidayType = "religious"
	HolidayTypeSchool    HolidayType = "school"
	HolidayTypeCustom    HolidayType = "custom"
)

// HolidaySource records how a holiday row came to exist.
type HolidaySource string

const (
	HolidaySourceManual    HolidaySource = "manual"
	HolidaySourceRecurring HolidaySource = "recurring"
	HolidaySourceImport    HolidaySource = "import"
)

// RecurrenceConfig describes a yearly recurrence pattern.
type RecurrenceConfig struct {
	Frequency  string   `json:"frequency"`
	Month      int      `json:"month"`
	DayOfMonth int      `json:"day_of_month"`
	Exceptions []string `json:"exceptions,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
}

// NationalHoliday marks a date (or range) as non-working. A nil location
// means global scope; force_override stamps matching employee schedule rows
// on application.
type NationalHoliday struct {
	ID               string         `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	HolidayDate      time.Time      `db:"holiday_date" json:"holiday_date"`
	EndDate          *time.Time     `db:"end_date" json:"end_date,omitempty"`
	Type             HolidayType    `db:"type" json:"type"`
	Description      *string        `db:"description" json:"description,omitempty"`
	IsRecurring      bool           `db:"is_recurring" json:"is_recurring"`
	IsActive         bool           `db:"is_active" json:"is_active"`
	LocationID       *string        `db:"location_id" json:"location_id,omitempty"`
	RecurrenceConfig types.JSONText `db:"recurrence_config" json:"recurrence_config,omitempty"`
	ForceOverride    bool           `db:"force_override" json:"force_override"`
	PaidLeave        bool           `db:"paid_leave" json:"paid_leave"`
	Source           HolidaySource  `db:"source" json:"source"`
	ReferenceCode    *string        `db:"reference_code" json:"reference_code,omitempty"`
	Metadata         types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedBy        *string        `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy        *string        `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Recurrence decodes the recurrence configuration.
func (h NationalHoliday) Recurrence() (RecurrenceConfig, error) {
	var cfg RecurrenceConfig
	if len(h.RecurrenceConfig) == 0 || string(h.RecurrenceConfig) == "{}" {
		return cfg, nil
	}
	if err := json.Unmarshal(h.RecurrenceConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode recurrence config for %s: %w", h.ID, err)
	}
	return cfg, nil
}

// AppliesToLocation reports whether the holiday affects the location.
// Globally scoped holidays (nil location) affect everything.
func (h NationalHoliday) AppliesToLocation(locationID string) bool {
	return h.LocationID == nil || *h.LocationID == locationID
}

// CoversDate reports whether the date falls inside the holiday span.
func (h NationalHoliday) CoversDate(date time.Time) bool {
	date = DateOnly(date)
	start := DateOnly(h.HolidayDate)
	if h.EndDate == nil {
		return start.Equal(date)
	}
	return !start.After(date) && !DateOnly(*h.EndDate).Before(date)
}

// HolidayFilter narrows holiday queries.
type HolidayFilter struct {
	LocationID *string
	Type       HolidayType
	Year       int
	DateFrom   *time.Time
	DateTo     *time.Time
	ActiveOnly bool
	Page       int
	PageSize   int
}

// HolidayConflictPreview reports which generated rows a holiday would
// override, without mutating anything.
type HolidayConflictPreview struct {
	HolidayID         string      `json:"holiday_id"`
	Date              time.Time   `json:"date"`
	Name              string      `json:"name"`
	Type              HolidayType `json:"type"`
	AffectedSchedules int         `json:"affected_schedules"`
}
