package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

type overrideRowStoreStub struct {
	rows      map[string]*models.EmployeeMonthlySchedule
	updates   int
	txUpdates int
}

func (s *overrideRowStoreStub) FindByID(ctx context.Context, id string) (*models.EmployeeMonthlySchedule, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, sql.ErrNoRows
}

func (s *overrideRowStoreStub) Update(ctx context.Context, row *models.EmployeeMonthlySchedule) error {
	s.updates++
	s.rows[row.ID] = row
	return nil
}

func (s *overrideRowStoreStub) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule) error {
	s.txUpdates++
	s.rows[row.ID] = row
	return nil
}

type monthlyReaderStub struct {
	schedule *models.MonthlySchedule
}

func (s monthlyReaderStub) FindByID(ctx context.Context, id string) (*models.MonthlySchedule, error) {
	if s.schedule == nil {
		return nil, sql.ErrNoRows
	}
	return s.schedule, nil
}

type attendanceStoreStub struct {
	created []*models.Attendance
}

func (s *attendanceStoreStub) Create(ctx context.Context, attendance *models.Attendance) error {
	attendance.ID = "att-1"
	s.created = append(s.created, attendance)
	return nil
}

func scheduleRow() *models.EmployeeMonthlySchedule {
	return &models.EmployeeMonthlySchedule{
		ID:                "row-1",
		MonthlyScheduleID: "ms-1",
		EmployeeID:        "emp-1",
		EffectiveDate:     time.Date(2025, 7, 17, 0, 0, 0, 0, time.UTC), // a Thursday
		StartTime:         "08:00",
		EndTime:           "16:00",
		LocationID:        "loc-1",
		Status:            models.ScheduleStatusActive,
		ScheduledHours:    8,
	}
}

func independenceDay() models.NationalHoliday {
	return models.NationalHoliday{
		ID:            "hol-1",
		Name:          "Hari Kemerdekaan",
		HolidayDate:   time.Date(2025, 7, 17, 0, 0, 0, 0, time.UTC),
		Type:          models.HolidayTypeNational,
		ForceOverride: true,
		IsActive:      true,
	}
}

func honoraryTeaching() models.TeachingSchedule {
	return models.TeachingSchedule{
		ID:                 "ts-1",
		TeacherID:          "emp-1",
		SubjectID:          "subject-1",
		DayOfWeek:          models.Thursday,
		TeachingStartTime:  "10:00",
		TeachingEndTime:    "12:00",
		EffectiveFrom:      time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		IsActive:           true,
		Status:             models.TeachingStatusScheduled,
		OverrideAttendance: true,
	}
}

func newOverrideService(rows *overrideRowStoreStub) *OverrideService {
	monthly := monthlyReaderStub{schedule: &models.MonthlySchedule{
		ID: "ms-1", DefaultStartTime: "08:00", DefaultEndTime: "16:00",
	}}
	return NewOverrideService(rows, monthly, &attendanceStoreStub{}, nil)
}

func TestOverrideServiceHolidayRevertRoundTrip(t *testing.T) {
	row := scheduleRow()
	rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	service := newOverrideService(rows)

	changed, err := service.ApplyHolidayOverride(context.Background(), nil, row, independenceDay(), Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.ScheduleStatusHoliday, row.Status)
	assert.True(t, row.IsHoliday)
	assert.Equal(t, 0.0, row.ScheduledHours)

	meta, err := row.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "hol-1", meta.HolidayID)
	assert.Equal(t, "08:00", meta.OriginalStartTime)
	assert.Equal(t, "16:00", meta.OriginalEndTime)

	reverted, changed, err := service.RevertOverride(context.Background(), "row-1", "", Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.ScheduleStatusActive, reverted.Status)
	assert.False(t, reverted.IsHoliday)
	assert.Equal(t, "08:00", reverted.StartTime)
	assert.Equal(t, "16:00", reverted.EndTime)
	assert.Equal(t, 8.0, reverted.ScheduledHours)
}

func TestOverrideServiceHolidayIdempotent(t *testing.T) {
	row := scheduleRow()
	rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	service := newOverrideService(rows)

	changed, err := service.ApplyHolidayOverride(context.Background(), nil, row, independenceDay(), Actor{})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = service.ApplyHolidayOverride(context.Background(), nil, row, independenceDay(), Actor{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, rows.updates)
}

func TestOverrideServiceHolidaySkipsNonActiveRows(t *testing.T) {
	for _, status := range []models.ScheduleStatus{
		models.ScheduleStatusLeave,
		models.ScheduleStatusSuspended,
		models.ScheduleStatusOverridden,
	} {
		row := scheduleRow()
		row.Status = status
		rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
		service := newOverrideService(rows)

		changed, err := service.ApplyHolidayOverride(context.Background(), nil, row, independenceDay(), Actor{})
		require.NoError(t, err)
		assert.False(t, changed, "status %s", status)
		assert.Equal(t, status, row.Status)
		assert.False(t, row.IsHoliday)
		assert.Equal(t, 0, rows.updates)
	}
}

func TestOverrideServiceRevertActiveRowNoOp(t *testing.T) {
	row := scheduleRow()
	rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	service := newOverrideService(rows)

	reverted, changed, err := service.RevertOverride(context.Background(), "row-1", "", Actor{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.ScheduleStatusActive, reverted.Status)
	assert.Equal(t, 0, rows.updates)
}

func TestOverrideServiceRevertFallsBackToMonthlyDefaults(t *testing.T) {
	row := scheduleRow()
	row.Status = models.ScheduleStatusOverridden
	row.StartTime = "10:00"
	row.EndTime = "12:00"
	// snapshot without original times forces the monthly-default path
	require.NoError(t, row.SetMetadata(models.OverrideMetadata{OverrideType: models.OverrideTypeTeaching}))

	rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	service := newOverrideService(rows)

	reverted, changed, err := service.RevertOverride(context.Background(), "row-1", "", Actor{})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "08:00", reverted.StartTime)
	assert.Equal(t, "16:00", reverted.EndTime)
	assert.Equal(t, 8.0, reverted.ScheduledHours)
}

func TestOverrideServiceTeachingOverrideAppliesForHonorary(t *testing.T) {
	row := scheduleRow()
	rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	service := newOverrideService(rows)

	teacher := models.Employee{ID: "emp-1", EmployeeType: models.EmployeeTypeHonoraryTeacher, IsActive: true}
	changed, err := service.ApplyTeachingOverride(context.Background(), row, honoraryTeaching(), teacher, Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.ScheduleStatusOverridden, row.Status)
	assert.Equal(t, "10:00", row.StartTime)
	assert.Equal(t, "12:00", row.EndTime)
	assert.Equal(t, 2.0, row.ScheduledHours)

	meta, err := row.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "ts-1", meta.TeachingScheduleID)
	assert.Equal(t, "08:00", meta.OriginalStartTime)
}

func TestOverrideServiceTeachingOverrideSkipsRegularEmployee(t *testing.T) {
	row := scheduleRow()
	rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	service := newOverrideService(rows)

	staff := models.Employee{ID: "emp-1", EmployeeType: models.EmployeeTypePermanent, IsActive: true}
	changed, err := service.ApplyTeachingOverride(context.Background(), row, honoraryTeaching(), staff, Actor{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.ScheduleStatusActive, row.Status)
	assert.Equal(t, 0, rows.updates)
}

func TestOverrideServiceHolidayOutranksTeaching(t *testing.T) {
	row := scheduleRow()
	rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	service := newOverrideService(rows)

	stamped, err := service.ApplyHolidayOverride(context.Background(), nil, row, independenceDay(), Actor{})
	require.NoError(t, err)
	require.True(t, stamped)

	teacher := models.Employee{ID: "emp-1", EmployeeType: models.EmployeeTypeHonoraryTeacher, IsActive: true}
	changed, err := service.ApplyTeachingOverride(context.Background(), row, honoraryTeaching(), teacher, Actor{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.ScheduleStatusHoliday, row.Status)
}

func TestOverrideServiceNestedSnapshotSingleLevel(t *testing.T) {
	row := scheduleRow()
	rows := &overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	service := newOverrideService(rows)

	teacher := models.Employee{ID: "emp-1", EmployeeType: models.EmployeeTypeHonoraryTeacher, IsActive: true}
	changed, err := service.ApplyTeachingOverride(context.Background(), row, honoraryTeaching(), teacher, Actor{})
	require.NoError(t, err)
	require.True(t, changed)

	second := honoraryTeaching()
	second.ID = "ts-2"
	second.TeachingStartTime = "13:00"
	second.TeachingEndTime = "15:00"
	changed, err = service.ApplyTeachingOverride(context.Background(), row, second, teacher, Actor{})
	require.NoError(t, err)
	require.True(t, changed)

	meta, err := row.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "ts-2", meta.TeachingScheduleID)
	assert.Equal(t, "10:00", meta.OriginalStartTime)
	require.NotNil(t, meta.PreviousOverride)
	assert.Equal(t, "ts-1", meta.PreviousOverride.TeachingScheduleID)
	assert.Nil(t, meta.PreviousOverride.PreviousOverride)
}

func TestOverrideServiceAttendancePlaceholderSnapshot(t *testing.T) {
	row := scheduleRow()
	attendance := &attendanceStoreStub{}
	service := NewOverrideService(
		&overrideRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}},
		monthlyReaderStub{}, attendance, nil)

	record, err := service.CreateAttendancePlaceholder(context.Background(), *row, models.ScheduleSourceMonthly)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", record.EmployeeID)
	assert.Equal(t, models.ScheduleSourceMonthly, record.ScheduleSource)
	require.Len(t, attendance.created, 1)
	assert.Contains(t, string(record.ScheduleMetadata), `"expected_start":"08:00"`)
	assert.Contains(t, string(record.ScheduleMetadata), `"expected_hours":8`)
}
