package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

func employeeScheduleRows(date time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "monthly_schedule_id", "employee_id", "effective_date", "start_time", "end_time",
		"location_id", "status", "override_metadata", "scheduled_hours", "is_weekend", "is_holiday",
		"attendance_id", "assigned_by", "modified_by", "created_at", "updated_at",
	}).AddRow("ems-1", "ms-1", "emp-1", date, "07:00", "15:00",
		"loc-1", string(models.ScheduleStatusActive), types.JSONText(`{}`), 8.0, false, false,
		nil, nil, nil, now, now)
}

func TestEmployeeScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employee_monthly_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	row := &models.EmployeeMonthlySchedule{
		MonthlyScheduleID: "ms-1",
		EmployeeID:        "emp-1",
		EffectiveDate:     models.DateOnly(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
		StartTime:         "07:00",
		EndTime:           "15:00",
		LocationID:        "loc-1",
		Status:            models.ScheduleStatusActive,
		ScheduledHours:    8,
	}
	require.NoError(t, repo.Create(context.Background(), row))
	assert.NotEmpty(t, row.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeScheduleRepositoryExistingDates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"effective_date"}).
		AddRow(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)).
		AddRow(time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT effective_date FROM employee_monthly_schedules")).
		WithArgs("ms-1", "emp-1").
		WillReturnRows(rows)

	existing, err := repo.ExistingDates(context.Background(), "ms-1", "emp-1")
	require.NoError(t, err)
	assert.Len(t, existing, 2)
	assert.True(t, existing["2025-07-01"])
	assert.True(t, existing["2025-07-02"])
	assert.False(t, existing["2025-07-03"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeScheduleRepositoryFindByEmployeeDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeScheduleRepository(db)

	date := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM employee_monthly_schedules")).
		WithArgs("emp-1", date).
		WillReturnRows(employeeScheduleRows(date))

	row, err := repo.FindByEmployeeDate(context.Background(), "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, "ems-1", row.ID)
	assert.Equal(t, models.ScheduleStatusActive, row.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeScheduleRepositoryListByHoliday(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeScheduleRepository(db)

	from := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("override_metadata->>'holiday_id'")).
		WithArgs(string(models.ScheduleStatusHoliday), from, from, "hol-1").
		WillReturnRows(employeeScheduleRows(from))

	rows, err := repo.ListByHoliday(context.Background(), "hol-1", from, from)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeScheduleRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE employee_monthly_schedules SET")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	row := &models.EmployeeMonthlySchedule{
		ID:             "ems-1",
		StartTime:      "09:00",
		EndTime:        "12:00",
		Status:         models.ScheduleStatusOverridden,
		ScheduledHours: 3,
	}
	require.NoError(t, row.SetMetadata(models.OverrideMetadata{
		OverrideType:      models.OverrideTypeTeaching,
		OriginalStartTime: "07:00",
		OriginalEndTime:   "15:00",
	}))
	require.NoError(t, repo.Update(context.Background(), row))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeScheduleRepositoryListForHolidayDateSelectsActiveOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeScheduleRepository(db)

	date := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)
	loc := "loc-1"
	mock.ExpectQuery(regexp.QuoteMeta("effective_date = $1 AND status = $2")).
		WithArgs(date, string(models.ScheduleStatusActive), loc).
		WillReturnRows(employeeScheduleRows(date))

	rows, err := repo.ListForHolidayDate(context.Background(), date, &loc)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
