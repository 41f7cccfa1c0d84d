package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

// HolidayRepository persists the holiday calendar.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository creates a new holiday repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

const holidayColumns = `id, name, holiday_date, end_date, type, description, is_recurring, is_active,
	location_id, recurrence_config, force_override, paid_leave, source, reference_code,
	metadata, created_by, updated_by, created_at, updated_at`

// Create stores a new holiday.
func (r *HolidayRepository) Create(ctx context.Context, holiday *models.NationalHoliday) error {
	if holiday.ID == "" {
		holiday.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	holiday.CreatedAt = now
	holiday.UpdatedAt = now
	holiday.IsActive = true
	if holiday.Source == "" {
		holiday.Source = models.HolidaySourceManual
	}

	const query = `INSERT INTO national_holidays (id, name, holiday_date, end_date, type, description,
			is_recurring, is_active, location_id, recurrence_config, force_override, paid_leave,
			source, reference_code, metadata, created_by, created_at, updated_at)
		VALUES (:id, :name, :holiday_date, :end_date, :type, :description,
			:is_recurring, :is_active, :location_id, :recurrence_config, :force_override, :paid_leave,
			:source, :reference_code, :metadata, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, holiday); err != nil {
		return fmt.Errorf("create holiday: %w", err)
	}
	return nil
}

// FindByID loads a holiday.
func (r *HolidayRepository) FindByID(ctx context.Context, id string) (*models.NationalHoliday, error) {
	query := fmt.Sprintf(`SELECT %s FROM national_holidays WHERE id = $1`, holidayColumns)
	var holiday models.NationalHoliday
	if err := r.db.GetContext(ctx, &holiday, query, id); err != nil {
		return nil, err
	}
	return &holiday, nil
}

// ExistsByRecurrence reports whether a recurring instance already exists for a
// source holiday on a date. Keeps recurring generation idempotent.
func (r *HolidayRepository) ExistsByRecurrence(ctx context.Context, referenceCode string, date time.Time) (bool, error) {
	const query = `SELECT COUNT(*) FROM national_holidays
		WHERE reference_code = $1 AND holiday_date = $2 AND is_active = true`
	var count int
	if err := r.db.GetContext(ctx, &count, query, referenceCode, models.DateOnly(date)); err != nil {
		return false, fmt.Errorf("check recurring holiday: %w", err)
	}
	return count > 0, nil
}

// List returns holidays matching the filter with the total count.
func (r *HolidayRepository) List(ctx context.Context, filter models.HolidayFilter, limit, offset int) ([]models.NationalHoliday, int, error) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}
	idx := 1

	appendCond := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, idx))
		args = append(args, value)
		idx++
	}

	if filter.LocationID != nil {
		conditions = append(conditions, fmt.Sprintf("(location_id IS NULL OR location_id = $%d)", idx))
		args = append(args, *filter.LocationID)
		idx++
	}
	if filter.Type != "" {
		appendCond("type = $%d", filter.Type)
	}
	if filter.Year != 0 {
		appendCond("EXTRACT(YEAR FROM holiday_date) = $%d", filter.Year)
	}
	if filter.DateFrom != nil {
		appendCond("holiday_date >= $%d", models.DateOnly(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		appendCond("holiday_date <= $%d", models.DateOnly(*filter.DateTo))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM national_holidays WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count holidays: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM national_holidays WHERE %s
		ORDER BY holiday_date ASC LIMIT $%d OFFSET $%d`, holidayColumns, where, idx, idx+1)
	args = append(args, limit, offset)

	var holidays []models.NationalHoliday
	if err := r.db.SelectContext(ctx, &holidays, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, total, nil
}

// ListActiveInRange returns active holidays whose span intersects the range.
func (r *HolidayRepository) ListActiveInRange(ctx context.Context, from, to time.Time) ([]models.NationalHoliday, error) {
	query := fmt.Sprintf(`SELECT %s FROM national_holidays
		WHERE is_active = true
		AND holiday_date <= $2 AND COALESCE(end_date, holiday_date) >= $1
		ORDER BY holiday_date ASC`, holidayColumns)
	var holidays []models.NationalHoliday
	if err := r.db.SelectContext(ctx, &holidays, query, models.DateOnly(from), models.DateOnly(to)); err != nil {
		return nil, fmt.Errorf("list holidays in range: %w", err)
	}
	return holidays, nil
}

// ListRecurringSources returns active holidays flagged for yearly recurrence.
func (r *HolidayRepository) ListRecurringSources(ctx context.Context) ([]models.NationalHoliday, error) {
	query := fmt.Sprintf(`SELECT %s FROM national_holidays
		WHERE is_active = true AND is_recurring = true
		ORDER BY holiday_date ASC`, holidayColumns)
	var holidays []models.NationalHoliday
	if err := r.db.SelectContext(ctx, &holidays, query); err != nil {
		return nil, fmt.Errorf("list recurring holidays: %w", err)
	}
	return holidays, nil
}

// Update rewrites the mutable columns of a holiday.
func (r *HolidayRepository) Update(ctx context.Context, holiday *models.NationalHoliday) error {
	holiday.UpdatedAt = time.Now().UTC()

	const query = `UPDATE national_holidays SET
			name = :name, holiday_date = :holiday_date, end_date = :end_date, type = :type,
			description = :description, is_recurring = :is_recurring, location_id = :location_id,
			recurrence_config = :recurrence_config, force_override = :force_override,
			paid_leave = :paid_leave, metadata = :metadata,
			updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, holiday)
	if err != nil {
		return fmt.Errorf("update holiday: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a holiday.
func (r *HolidayRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE national_holidays SET is_active = false, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate holiday: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
