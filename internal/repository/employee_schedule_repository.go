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

// EmployeeScheduleRepository persists the per-date employee schedule rows the
// override layer operates on.
type EmployeeScheduleRepository struct {
	db *sqlx.DB
}

// NewEmployeeScheduleRepository creates a new employee schedule repository.
func NewEmployeeScheduleRepository(db *sqlx.DB) *EmployeeScheduleRepository {
	return &EmployeeScheduleRepository{db: db}
}

const employeeScheduleColumns = `id, monthly_schedule_id, employee_id, effective_date, start_time, end_time,
	location_id, status, override_metadata, scheduled_hours, is_weekend, is_holiday,
	attendance_id, assigned_by, modified_by, created_at, updated_at`

const employeeScheduleInsert = `INSERT INTO employee_monthly_schedules
		(id, monthly_schedule_id, employee_id, effective_date, start_time, end_time,
		location_id, status, override_metadata, scheduled_hours, is_weekend, is_holiday,
		attendance_id, assigned_by, modified_by, created_at, updated_at)
	VALUES (:id, :monthly_schedule_id, :employee_id, :effective_date, :start_time, :end_time,
		:location_id, :status, :override_metadata, :scheduled_hours, :is_weekend, :is_holiday,
		:attendance_id, :assigned_by, :modified_by, :created_at, :updated_at)`

// BeginTx opens a transaction for multi-row mutations.
func (r *EmployeeScheduleRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

// Create stores one schedule row.
func (r *EmployeeScheduleRepository) Create(ctx context.Context, row *models.EmployeeMonthlySchedule) error {
	stampForInsert(row)
	if _, err := r.db.NamedExecContext(ctx, employeeScheduleInsert, row); err != nil {
		return fmt.Errorf("create employee schedule: %w", err)
	}
	return nil
}

// CreateWithTx stores one schedule row inside a caller-owned transaction.
func (r *EmployeeScheduleRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule) error {
	stampForInsert(row)
	if _, err := tx.NamedExecContext(ctx, employeeScheduleInsert, row); err != nil {
		return fmt.Errorf("create employee schedule: %w", err)
	}
	return nil
}

func stampForInsert(row *models.EmployeeMonthlySchedule) {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
}

// FindByID loads one schedule row.
func (r *EmployeeScheduleRepository) FindByID(ctx context.Context, id string) (*models.EmployeeMonthlySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM employee_monthly_schedules WHERE id = $1`, employeeScheduleColumns)
	var row models.EmployeeMonthlySchedule
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByEmployeeDate returns the row for an employee on a date, if any.
func (r *EmployeeScheduleRepository) FindByEmployeeDate(ctx context.Context, employeeID string, date time.Time) (*models.EmployeeMonthlySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM employee_monthly_schedules
		WHERE employee_id = $1 AND effective_date = $2
		ORDER BY created_at DESC LIMIT 1`, employeeScheduleColumns)
	var row models.EmployeeMonthlySchedule
	if err := r.db.GetContext(ctx, &row, query, employeeID, models.DateOnly(date)); err != nil {
		return nil, err
	}
	return &row, nil
}

// ExistingDates returns the set of dates already generated for an employee in
// a monthly schedule. Used to keep assignment idempotent.
func (r *EmployeeScheduleRepository) ExistingDates(ctx context.Context, monthlyScheduleID, employeeID string) (map[string]bool, error) {
	const query = `SELECT effective_date FROM employee_monthly_schedules
		WHERE monthly_schedule_id = $1 AND employee_id = $2`
	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, monthlyScheduleID, employeeID); err != nil {
		return nil, fmt.Errorf("list existing schedule dates: %w", err)
	}
	existing := make(map[string]bool, len(dates))
	for _, d := range dates {
		existing[models.DateOnly(d).Format("2006-01-02")] = true
	}
	return existing, nil
}

// List returns schedule rows matching the filter, oldest date first, with the
// total count.
func (r *EmployeeScheduleRepository) List(ctx context.Context, filter models.EmployeeScheduleFilter, limit, offset int) ([]models.EmployeeMonthlySchedule, int, error) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}
	idx := 1

	appendCond := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, idx))
		args = append(args, value)
		idx++
	}

	if filter.MonthlyScheduleID != "" {
		appendCond("monthly_schedule_id = $%d", filter.MonthlyScheduleID)
	}
	if filter.EmployeeID != "" {
		appendCond("employee_id = $%d", filter.EmployeeID)
	}
	if filter.LocationID != "" {
		appendCond("location_id = $%d", filter.LocationID)
	}
	if filter.Status != "" {
		appendCond("status = $%d", filter.Status)
	}
	if filter.DateFrom != nil {
		appendCond("effective_date >= $%d", models.DateOnly(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		appendCond("effective_date <= $%d", models.DateOnly(*filter.DateTo))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM employee_monthly_schedules WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employee schedules: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM employee_monthly_schedules WHERE %s
		ORDER BY effective_date ASC, employee_id ASC LIMIT $%d OFFSET $%d`,
		employeeScheduleColumns, where, idx, idx+1)
	args = append(args, limit, offset)

	var rows []models.EmployeeMonthlySchedule
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employee schedules: %w", err)
	}
	return rows, total, nil
}

// ListForHolidayDate returns active rows on a date eligible for a holiday
// override. Rows on leave, suspended or already overridden are excluded. A
// nil location applies globally.
func (r *EmployeeScheduleRepository) ListForHolidayDate(ctx context.Context, date time.Time, locationID *string) ([]models.EmployeeMonthlySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM employee_monthly_schedules WHERE effective_date = $1 AND status = $2`, employeeScheduleColumns)
	args := []interface{}{models.DateOnly(date), models.ScheduleStatusActive}
	if locationID != nil {
		query += ` AND location_id = $3`
		args = append(args, *locationID)
	}

	var rows []models.EmployeeMonthlySchedule
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list schedules for holiday date: %w", err)
	}
	return rows, nil
}

// ListByHoliday returns holiday-status rows whose snapshot references the
// holiday, scoped to a date range.
func (r *EmployeeScheduleRepository) ListByHoliday(ctx context.Context, holidayID string, from, to time.Time) ([]models.EmployeeMonthlySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM employee_monthly_schedules
		WHERE status = $1 AND effective_date BETWEEN $2 AND $3
		AND override_metadata->>'holiday_id' = $4`, employeeScheduleColumns)
	var rows []models.EmployeeMonthlySchedule
	if err := r.db.SelectContext(ctx, &rows, query,
		models.ScheduleStatusHoliday, models.DateOnly(from), models.DateOnly(to), holidayID); err != nil {
		return nil, fmt.Errorf("list schedules by holiday: %w", err)
	}
	return rows, nil
}

// ListByEmployeeRange returns an employee's rows inside a date range, oldest
// first.
func (r *EmployeeScheduleRepository) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.EmployeeMonthlySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM employee_monthly_schedules
		WHERE employee_id = $1 AND effective_date BETWEEN $2 AND $3
		ORDER BY effective_date ASC`, employeeScheduleColumns)
	var rows []models.EmployeeMonthlySchedule
	if err := r.db.SelectContext(ctx, &rows, query, employeeID, models.DateOnly(from), models.DateOnly(to)); err != nil {
		return nil, fmt.Errorf("list schedules by employee range: %w", err)
	}
	return rows, nil
}

// ListByMonthlySchedule returns every row generated from a monthly schedule.
func (r *EmployeeScheduleRepository) ListByMonthlySchedule(ctx context.Context, monthlyScheduleID string) ([]models.EmployeeMonthlySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM employee_monthly_schedules
		WHERE monthly_schedule_id = $1
		ORDER BY effective_date ASC, employee_id ASC`, employeeScheduleColumns)
	var rows []models.EmployeeMonthlySchedule
	if err := r.db.SelectContext(ctx, &rows, query, monthlyScheduleID); err != nil {
		return nil, fmt.Errorf("list schedules by monthly schedule: %w", err)
	}
	return rows, nil
}

// Update rewrites the mutable columns of one schedule row.
func (r *EmployeeScheduleRepository) Update(ctx context.Context, row *models.EmployeeMonthlySchedule) error {
	return r.update(ctx, r.db, row)
}

// UpdateWithTx rewrites one schedule row inside a caller-owned transaction.
func (r *EmployeeScheduleRepository) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule) error {
	return r.update(ctx, tx, row)
}

func (r *EmployeeScheduleRepository) update(ctx context.Context, ext sqlx.ExtContext, row *models.EmployeeMonthlySchedule) error {
	row.UpdatedAt = time.Now().UTC()

	const query = `UPDATE employee_monthly_schedules SET
			start_time = :start_time, end_time = :end_time, status = :status,
			override_metadata = :override_metadata, scheduled_hours = :scheduled_hours,
			is_holiday = :is_holiday, attendance_id = :attendance_id,
			modified_by = :modified_by, updated_at = :updated_at
		WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, ext, query, row)
	if err != nil {
		return fmt.Errorf("update employee schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetAttendanceID links a schedule row to its attendance placeholder.
func (r *EmployeeScheduleRepository) SetAttendanceID(ctx context.Context, id, attendanceID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE employee_monthly_schedules SET attendance_id = $2, updated_at = $3 WHERE id = $1`,
		id, attendanceID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set attendance id: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
