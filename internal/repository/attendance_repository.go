package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

// AttendanceRepository persists attendance placeholder rows handed to the
// attendance subsystem.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, date, location_id, employee_monthly_schedule_id,
	teaching_schedule_id, holiday_id, schedule_source, status, schedule_metadata, created_at, updated_at`

// Create stores one placeholder row.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	attendance.CreatedAt = now
	attendance.UpdatedAt = now

	const query = `INSERT INTO attendances (id, employee_id, date, location_id, employee_monthly_schedule_id,
			teaching_schedule_id, holiday_id, schedule_source, status, schedule_metadata, created_at, updated_at)
		VALUES (:id, :employee_id, :date, :location_id, :employee_monthly_schedule_id,
			:teaching_schedule_id, :holiday_id, :schedule_source, :status, :schedule_metadata, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("create attendance placeholder: %w", err)
	}
	return nil
}

// FindByEmployeeDate returns the placeholder for an employee on a date, if any.
func (r *AttendanceRepository) FindByEmployeeDate(ctx context.Context, employeeID string, date time.Time) (*models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendances
		WHERE employee_id = $1 AND date = $2
		ORDER BY created_at DESC LIMIT 1`, attendanceColumns)
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, employeeID, models.DateOnly(date)); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// TagHoliday stamps existing placeholders on a date with a holiday reference.
// A nil location applies globally; a non-nil tx joins the caller's
// transaction. Returns the number of rows touched.
func (r *AttendanceRepository) TagHoliday(ctx context.Context, tx *sqlx.Tx, date time.Time, locationID *string, holidayID string) (int64, error) {
	query := `UPDATE attendances SET holiday_id = $2, schedule_source = $3, updated_at = $4 WHERE date = $1`
	args := []interface{}{models.DateOnly(date), holidayID, models.ScheduleSourceHolidayOverride, time.Now().UTC()}
	if locationID != nil {
		query += ` AND location_id = $5`
		args = append(args, *locationID)
	}

	var ext sqlx.ExtContext = r.db
	if tx != nil {
		ext = tx
	}
	result, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("tag attendances with holiday: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

// ClearHolidayTag removes a holiday reference from placeholders on a date,
// restoring the monthly source. Returns the number of rows touched.
func (r *AttendanceRepository) ClearHolidayTag(ctx context.Context, date time.Time, holidayID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE attendances SET holiday_id = NULL, schedule_source = $3, updated_at = $4
		WHERE date = $1 AND holiday_id = $2`,
		models.DateOnly(date), holidayID, models.ScheduleSourceMonthly, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("clear holiday tag on attendances: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}
