package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

const (
	testEmployeeID  = "6f1e1d2c-0a52-4b01-9f5f-3f9c2d7a1001"
	testEmployeeID2 = "6f1e1d2c-0a52-4b01-9f5f-3f9c2d7a1002"
)

type monthlyStoreStub struct {
	schedules map[string]*models.MonthlySchedule
	byMonth   *models.MonthlySchedule
	created   []*models.MonthlySchedule
}

func (s *monthlyStoreStub) Create(ctx context.Context, schedule *models.MonthlySchedule) error {
	schedule.ID = "ms-1"
	s.created = append(s.created, schedule)
	return nil
}

func (s *monthlyStoreStub) FindByID(ctx context.Context, id string) (*models.MonthlySchedule, error) {
	if schedule, ok := s.schedules[id]; ok {
		return schedule, nil
	}
	return nil, sql.ErrNoRows
}

func (s *monthlyStoreStub) FindByLocationMonth(ctx context.Context, locationID string, month, year int) (*models.MonthlySchedule, error) {
	if s.byMonth != nil {
		return s.byMonth, nil
	}
	return nil, sql.ErrNoRows
}

func (s *monthlyStoreStub) List(ctx context.Context, locationID string, limit, offset int) ([]models.MonthlySchedule, int, error) {
	return nil, 0, nil
}

func (s *monthlyStoreStub) Deactivate(ctx context.Context, id string) error {
	if _, ok := s.schedules[id]; !ok {
		return sql.ErrNoRows
	}
	return nil
}

type rowStoreStub struct {
	db       *sqlx.DB
	mock     sqlmock.Sqlmock
	existing map[string]bool
	rows     []models.EmployeeMonthlySchedule
	created  []*models.EmployeeMonthlySchedule
	failFor  string
}

func newRowStoreStub(t *testing.T) *rowStoreStub {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	mock.MatchExpectationsInOrder(false)
	return &rowStoreStub{
		db:       sqlx.NewDb(raw, "sqlmock"),
		mock:     mock,
		existing: map[string]bool{},
	}
}

func (s *rowStoreStub) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	s.mock.ExpectBegin()
	s.mock.ExpectCommit()
	return s.db.BeginTxx(ctx, nil)
}

func (s *rowStoreStub) CreateWithTx(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule) error {
	if s.failFor != "" && row.EmployeeID == s.failFor {
		return errors.New("constraint violation")
	}
	s.created = append(s.created, row)
	return nil
}

func (s *rowStoreStub) ExistingDates(ctx context.Context, monthlyScheduleID, employeeID string) (map[string]bool, error) {
	return s.existing, nil
}

func (s *rowStoreStub) ListByMonthlySchedule(ctx context.Context, monthlyScheduleID string) ([]models.EmployeeMonthlySchedule, error) {
	return s.rows, nil
}

func (s *rowStoreStub) List(ctx context.Context, filter models.EmployeeScheduleFilter, limit, offset int) ([]models.EmployeeMonthlySchedule, int, error) {
	return s.rows, len(s.rows), nil
}

type directoryStub struct {
	employees map[string]*models.Employee
	caps      map[string]models.EmployeeCapabilities
}

func (s directoryStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if employee, ok := s.employees[id]; ok {
		return employee, nil
	}
	return nil, sql.ErrNoRows
}

func (s directoryStub) Capabilities(ctx context.Context, employeeID string) (models.EmployeeCapabilities, error) {
	return s.caps[employeeID], nil
}

type dispatcherStub struct {
	enqueued []models.EmployeeMonthlySchedule
	err      error
}

func (s *dispatcherStub) EnqueuePlaceholders(ctx context.Context, rows []models.EmployeeMonthlySchedule) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, rows...)
	return nil
}

func julySchedule() *models.MonthlySchedule {
	return &models.MonthlySchedule{
		ID:               "ms-1",
		Name:             "Juli 2025",
		Month:            7,
		Year:             2025,
		StartDate:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		DefaultStartTime: "08:00",
		DefaultEndTime:   "16:00",
		WorkDays:         []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		LocationID:       "loc-1",
		IsActive:         true,
	}
}

func activeEmployee(id string) *models.Employee {
	return &models.Employee{ID: id, EmployeeType: models.EmployeeTypePermanent, LocationID: "loc-1", IsActive: true}
}

func TestMonthlyScheduleAssignGeneratesWeekdayRows(t *testing.T) {
	schedule := julySchedule()
	store := &monthlyStoreStub{schedules: map[string]*models.MonthlySchedule{"ms-1": schedule}}
	rows := newRowStoreStub(t)
	directory := directoryStub{employees: map[string]*models.Employee{testEmployeeID: activeEmployee(testEmployeeID)}}

	service := NewMonthlyScheduleService(store, rows, directory, &dispatcherStub{}, nil, nil)
	created, err := service.AssignEmployee(context.Background(), "ms-1", dto.AssignEmployeeRequest{EmployeeID: testEmployeeID}, Actor{UserID: "admin"})
	require.NoError(t, err)

	// July 2025 has 23 weekdays
	assert.Equal(t, 23, created)
	require.Len(t, rows.created, 23)
	for _, row := range rows.created {
		assert.Equal(t, models.ScheduleStatusActive, row.Status)
		assert.Equal(t, 8.0, row.ScheduledHours)
		assert.False(t, row.IsWeekend)
		assert.Equal(t, "08:00", row.StartTime)
		assert.Equal(t, "16:00", row.EndTime)
	}
}

func TestMonthlyScheduleAssignIdempotent(t *testing.T) {
	schedule := julySchedule()
	store := &monthlyStoreStub{schedules: map[string]*models.MonthlySchedule{"ms-1": schedule}}
	rows := newRowStoreStub(t)
	directory := directoryStub{employees: map[string]*models.Employee{testEmployeeID: activeEmployee(testEmployeeID)}}
	service := NewMonthlyScheduleService(store, rows, directory, &dispatcherStub{}, nil, nil)

	created, err := service.AssignEmployee(context.Background(), "ms-1", dto.AssignEmployeeRequest{EmployeeID: testEmployeeID}, Actor{})
	require.NoError(t, err)
	require.Equal(t, 23, created)

	// second run sees every date as already generated
	for _, row := range rows.created {
		rows.existing[row.EffectiveDate.Format("2006-01-02")] = true
	}
	created, err = service.AssignEmployee(context.Background(), "ms-1", dto.AssignEmployeeRequest{EmployeeID: testEmployeeID}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, rows.created, 23)
}

func TestMonthlyScheduleAssignInactiveEmployee(t *testing.T) {
	schedule := julySchedule()
	store := &monthlyStoreStub{schedules: map[string]*models.MonthlySchedule{"ms-1": schedule}}
	employee := activeEmployee(testEmployeeID)
	employee.IsActive = false
	directory := directoryStub{employees: map[string]*models.Employee{testEmployeeID: employee}}

	service := NewMonthlyScheduleService(store, newRowStoreStub(t), directory, &dispatcherStub{}, nil, nil)
	_, err := service.AssignEmployee(context.Background(), "ms-1", dto.AssignEmployeeRequest{EmployeeID: testEmployeeID}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestMonthlyScheduleBulkAssignCollectsFailures(t *testing.T) {
	schedule := julySchedule()
	store := &monthlyStoreStub{schedules: map[string]*models.MonthlySchedule{"ms-1": schedule}}
	rows := newRowStoreStub(t)
	directory := directoryStub{employees: map[string]*models.Employee{
		testEmployeeID: activeEmployee(testEmployeeID),
	}}

	service := NewMonthlyScheduleService(store, rows, directory, &dispatcherStub{}, nil, nil)
	result, err := service.BulkAssign(context.Background(), "ms-1", dto.BulkAssignRequest{
		EmployeeIDs: []string{testEmployeeID, testEmployeeID2},
	}, Actor{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 23, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], testEmployeeID2)
}

func TestMonthlyScheduleCreateRejectsInvertedShift(t *testing.T) {
	service := NewMonthlyScheduleService(&monthlyStoreStub{}, newRowStoreStub(t), directoryStub{}, &dispatcherStub{}, nil, nil)
	_, err := service.Create(context.Background(), dto.CreateMonthlyScheduleRequest{
		Name:             "Agustus 2025",
		Month:            8,
		Year:             2025,
		StartDate:        time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		DefaultStartTime: "16:00",
		DefaultEndTime:   "08:00",
		LocationID:       "loc-1",
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMonthlyScheduleCreateRejectsDuplicateMonth(t *testing.T) {
	store := &monthlyStoreStub{byMonth: julySchedule()}
	service := NewMonthlyScheduleService(store, newRowStoreStub(t), directoryStub{}, &dispatcherStub{}, nil, nil)
	_, err := service.Create(context.Background(), dto.CreateMonthlyScheduleRequest{
		Name:             "Juli 2025",
		Month:            7,
		Year:             2025,
		StartDate:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		DefaultStartTime: "08:00",
		DefaultEndTime:   "16:00",
		LocationID:       "loc-1",
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestMonthlyScheduleFinalizeEnqueuesRows(t *testing.T) {
	schedule := julySchedule()
	store := &monthlyStoreStub{schedules: map[string]*models.MonthlySchedule{"ms-1": schedule}}
	rows := newRowStoreStub(t)
	rows.rows = []models.EmployeeMonthlySchedule{
		{ID: "row-1", EmployeeID: testEmployeeID},
		{ID: "row-2", EmployeeID: testEmployeeID},
	}
	dispatcher := &dispatcherStub{}

	service := NewMonthlyScheduleService(store, rows, directoryStub{}, dispatcher, nil, nil)
	count, err := service.Finalize(context.Background(), "ms-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, dispatcher.enqueued, 2)
}
