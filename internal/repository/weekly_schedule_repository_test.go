package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func weeklyScheduleRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "academic_class_id", "subject_id", "employee_id", "time_slot_id", "day_of_week", "room",
		"effective_from", "effective_until", "is_locked", "is_active", "metadata", "created_by", "updated_by", "created_at", "updated_at",
	}).AddRow("sch-1", "class-1", "subject-1", "teacher-1", "slot-1", "monday", "R101",
		now, nil, false, true, nil, nil, nil, now, now)
}

func TestWeeklyScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	schedule := &models.WeeklySchedule{
		AcademicClassID: "class-1",
		SubjectID:       "subject-1",
		EmployeeID:      "teacher-1",
		TimeSlotID:      "slot-1",
		DayOfWeek:       models.Monday,
	}
	require.NoError(t, repo.Create(context.Background(), schedule))
	assert.NotEmpty(t, schedule.ID)
	assert.True(t, schedule.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyScheduleRepositoryListByTeacherDaySlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	ref := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("effective_from <= $5 AND (effective_until IS NULL OR effective_until >= $5)")).
		WithArgs("teacher-1", "monday", "slot-1", "sch-new", ref).
		WillReturnRows(weeklyScheduleRows())

	schedules, err := repo.ListByTeacherDaySlot(context.Background(), "teacher-1", models.Monday, "slot-1", "sch-new", ref)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "sch-1", schedules[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyScheduleRepositoryCountByClassSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	ref := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM weekly_schedules")).
		WithArgs("class-1", "subject-1", "sch-new", ref).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByClassSubject(context.Background(), "class-1", "subject-1", "sch-new", ref)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyScheduleRepositorySetLockedNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE weekly_schedules SET is_locked")).
		WithArgs("missing", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetLocked(context.Background(), "missing", true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyScheduleRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeeklyScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE weekly_schedules SET is_active = false")).
		WithArgs("sch-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "sch-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
