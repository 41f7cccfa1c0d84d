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
	testClassID = "6f1e1d2c-0a52-4b01-9f5f-3f9c2d7a3001"
	testSlotID  = "6f1e1d2c-0a52-4b01-9f5f-3f9c2d7a4001"
)

type weeklyStoreStub struct {
	db          *sqlx.DB
	mock        sqlmock.Sqlmock
	schedules   map[string]*models.WeeklySchedule
	byClass     []models.WeeklySchedule
	created     []*models.WeeklySchedule
	updated     []*models.WeeklySchedule
	deactivated []string
}

func newWeeklyStoreStub(t *testing.T) *weeklyStoreStub {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	mock.MatchExpectationsInOrder(false)
	return &weeklyStoreStub{
		db:        sqlx.NewDb(raw, "sqlmock"),
		mock:      mock,
		schedules: map[string]*models.WeeklySchedule{},
	}
}

func (s *weeklyStoreStub) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	s.mock.ExpectBegin()
	s.mock.ExpectCommit()
	return s.db.BeginTxx(ctx, nil)
}

func (s *weeklyStoreStub) List(ctx context.Context, filter models.WeeklyScheduleFilter, limit, offset int) ([]models.WeeklySchedule, int, error) {
	return s.byClass, len(s.byClass), nil
}

func (s *weeklyStoreStub) FindByID(ctx context.Context, id string) (*models.WeeklySchedule, error) {
	if schedule, ok := s.schedules[id]; ok {
		return schedule, nil
	}
	return nil, sql.ErrNoRows
}

func (s *weeklyStoreStub) ListByClass(ctx context.Context, classID string) ([]models.WeeklySchedule, error) {
	return s.byClass, nil
}

func (s *weeklyStoreStub) ListByTeacher(ctx context.Context, employeeID string) ([]models.WeeklySchedule, error) {
	return nil, nil
}

func (s *weeklyStoreStub) Create(ctx context.Context, schedule *models.WeeklySchedule) error {
	schedule.ID = "ws-new"
	schedule.IsActive = true
	s.created = append(s.created, schedule)
	return nil
}

func (s *weeklyStoreStub) Update(ctx context.Context, schedule *models.WeeklySchedule) error {
	s.updated = append(s.updated, schedule)
	return nil
}

func (s *weeklyStoreStub) Deactivate(ctx context.Context, id string) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

type detectorStub struct {
	findings  []models.ConflictFinding
	persisted int
}

func (s *detectorStub) Detect(ctx context.Context, candidate models.WeeklySchedule, excludeID string, ref time.Time) ([]models.ConflictFinding, error) {
	return s.findings, nil
}

func (s *detectorStub) Persist(ctx context.Context, tx *sqlx.Tx, scheduleID string, findings []models.ConflictFinding) error {
	s.persisted++
	return nil
}

type lockCheckerStub struct {
	locked bool
}

func (s lockCheckerStub) IsLocked(ctx context.Context, scheduleID string) (bool, error) {
	return s.locked, nil
}

type changeLogStub struct {
	entries []models.ScheduleChangeLog
}

func (s *changeLogStub) Create(ctx context.Context, entry *models.ScheduleChangeLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *changeLogStub) ListBySchedule(ctx context.Context, scheduleID string, limit, offset int) ([]models.ScheduleChangeLog, int, error) {
	return s.entries, len(s.entries), nil
}

func mondaySlots() slotReaderStub {
	return slotReaderStub{slots: map[string]*models.TimeSlot{
		testSlotID: {ID: testSlotID, Name: "Jam ke-1", StartTime: "07:00", EndTime: "08:30", SlotOrder: 1, IsActive: true},
	}}
}

func newWeeklyService(store *weeklyStoreStub, detector *detectorStub, locks lockCheckerStub, audit *changeLogStub) *WeeklyScheduleService {
	return NewWeeklyScheduleService(
		store, detector, locks, audit, mondaySlots(),
		catalogReaderStub{subject: &models.Subject{ID: testSubjectID, Code: "MTK", Name: "Matematika", Color: "#1E88E5"}},
		nil, 0, nil, nil)
}

func createRequest() dto.CreateWeeklyScheduleRequest {
	return dto.CreateWeeklyScheduleRequest{
		AcademicClassID: testClassID,
		SubjectID:       testSubjectID,
		EmployeeID:      testEmployeeID,
		TimeSlotID:      testSlotID,
		DayOfWeek:       "monday",
		Room:            "R101",
		EffectiveFrom:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestWeeklyCreateBlockedByDoubleBooking(t *testing.T) {
	store := newWeeklyStoreStub(t)
	conflicting := "ws-existing"
	detector := &detectorStub{findings: []models.ConflictFinding{
		{Type: models.ConflictTeacherDoubleBooking, Severity: models.SeverityCritical, ConflictingScheduleID: &conflicting},
	}}
	service := newWeeklyService(store, detector, lockCheckerStub{}, &changeLogStub{})

	_, findings, err := service.Create(context.Background(), createRequest(), Actor{UserID: "admin"})
	require.Error(t, err)
	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Len(t, conflictErr.Findings, 1)
	assert.Len(t, findings, 1)
	assert.Empty(t, store.created)
}

func TestWeeklyCreateForceBypassesBlocking(t *testing.T) {
	store := newWeeklyStoreStub(t)
	detector := &detectorStub{findings: []models.ConflictFinding{
		{Type: models.ConflictTeacherDoubleBooking, Severity: models.SeverityCritical},
	}}
	audit := &changeLogStub{}
	service := newWeeklyService(store, detector, lockCheckerStub{}, audit)

	req := createRequest()
	req.Force = true
	schedule, findings, err := service.Create(context.Background(), req, Actor{UserID: "admin", IPAddress: "10.0.0.5"})
	require.NoError(t, err)
	assert.Equal(t, "ws-new", schedule.ID)
	assert.Len(t, findings, 1)
	assert.Equal(t, 1, detector.persisted)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.ChangeActionCreate, audit.entries[0].Action)
	assert.Equal(t, "10.0.0.5", audit.entries[0].IPAddress)
}

func TestWeeklyCreateAdvisoryFindingsDoNotBlock(t *testing.T) {
	store := newWeeklyStoreStub(t)
	detector := &detectorStub{findings: []models.ConflictFinding{
		{Type: models.ConflictSubjectFrequencyExceeded, Severity: models.SeverityMedium},
		{Type: models.ConflictSubjectSameDayDuplication, Severity: models.SeverityLow},
	}}
	service := newWeeklyService(store, detector, lockCheckerStub{}, &changeLogStub{})

	schedule, findings, err := service.Create(context.Background(), createRequest(), Actor{})
	require.NoError(t, err)
	assert.Equal(t, models.Monday, schedule.DayOfWeek)
	assert.Len(t, findings, 2)
	require.Len(t, store.created, 1)
}

func TestWeeklyCreateUnknownSlot(t *testing.T) {
	store := newWeeklyStoreStub(t)
	service := newWeeklyService(store, &detectorStub{}, lockCheckerStub{}, &changeLogStub{})

	req := createRequest()
	req.TimeSlotID = "6f1e1d2c-0a52-4b01-9f5f-3f9c2d7a4999"
	_, _, err := service.Create(context.Background(), req, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestWeeklyUpdateRejectedWhenLocked(t *testing.T) {
	store := newWeeklyStoreStub(t)
	store.schedules["ws-1"] = &models.WeeklySchedule{
		ID: "ws-1", AcademicClassID: testClassID, EmployeeID: testEmployeeID,
		TimeSlotID: testSlotID, DayOfWeek: models.Monday, IsActive: true,
	}
	service := newWeeklyService(store, &detectorStub{}, lockCheckerStub{locked: true}, &changeLogStub{})

	_, _, err := service.Update(context.Background(), "ws-1", dto.UpdateWeeklyScheduleRequest{Room: "R102"}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLocked.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.updated)
}

func TestWeeklyUpdateRejectedWhenRowFlagged(t *testing.T) {
	store := newWeeklyStoreStub(t)
	store.schedules["ws-1"] = &models.WeeklySchedule{
		ID: "ws-1", AcademicClassID: testClassID, EmployeeID: testEmployeeID,
		TimeSlotID: testSlotID, DayOfWeek: models.Monday, IsActive: true, IsLocked: true,
	}
	service := newWeeklyService(store, &detectorStub{}, lockCheckerStub{}, &changeLogStub{})

	_, _, err := service.Update(context.Background(), "ws-1", dto.UpdateWeeklyScheduleRequest{Room: "R102"}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLocked.Code, appErrors.FromError(err).Code)
}

func TestWeeklyUpdateAuditsBeforeAndAfter(t *testing.T) {
	store := newWeeklyStoreStub(t)
	store.schedules["ws-1"] = &models.WeeklySchedule{
		ID: "ws-1", AcademicClassID: testClassID, EmployeeID: testEmployeeID,
		TimeSlotID: testSlotID, DayOfWeek: models.Monday, Room: "R101", IsActive: true,
	}
	audit := &changeLogStub{}
	service := newWeeklyService(store, &detectorStub{}, lockCheckerStub{}, audit)

	updated, _, err := service.Update(context.Background(), "ws-1", dto.UpdateWeeklyScheduleRequest{
		Room:   "R202",
		Reason: "room renovation",
	}, Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "R202", updated.Room)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.ChangeActionUpdate, audit.entries[0].Action)
	assert.NotEmpty(t, audit.entries[0].OldData)
	assert.NotEmpty(t, audit.entries[0].NewData)
	require.NotNil(t, audit.entries[0].Reason)
	assert.Equal(t, "room renovation", *audit.entries[0].Reason)
}

func TestWeeklyDeleteDeactivatesAndAudits(t *testing.T) {
	store := newWeeklyStoreStub(t)
	store.schedules["ws-1"] = &models.WeeklySchedule{
		ID: "ws-1", AcademicClassID: testClassID, IsActive: true,
	}
	audit := &changeLogStub{}
	service := newWeeklyService(store, &detectorStub{}, lockCheckerStub{}, audit)

	require.NoError(t, service.Delete(context.Background(), "ws-1", "class dissolved", Actor{UserID: "admin"}))
	assert.Equal(t, []string{"ws-1"}, store.deactivated)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.ChangeActionDelete, audit.entries[0].Action)
}

func TestWeeklyClassGridMarksFilledCells(t *testing.T) {
	store := newWeeklyStoreStub(t)
	store.byClass = []models.WeeklySchedule{
		{ID: "ws-1", AcademicClassID: testClassID, SubjectID: testSubjectID, TimeSlotID: testSlotID, DayOfWeek: models.Monday, Room: "R101", IsActive: true},
	}
	service := newWeeklyService(store, &detectorStub{}, lockCheckerStub{}, &changeLogStub{})

	grid, err := service.ClassGrid(context.Background(), testClassID)
	require.NoError(t, err)
	assert.Equal(t, testClassID, grid.AcademicClassID)

	monday := grid.Days[models.Monday]
	require.Len(t, monday.Slots, 1)
	assert.Equal(t, "filled", monday.Slots[0].Status)
	require.NotNil(t, monday.Slots[0].Display)
	assert.Equal(t, "Matematika", monday.Slots[0].Display.SubjectName)
	assert.Equal(t, "R101", monday.Slots[0].Display.Room)

	tuesday := grid.Days[models.Tuesday]
	require.Len(t, tuesday.Slots, 1)
	assert.Equal(t, "empty", tuesday.Slots[0].Status)
}

func TestWeeklyExportGridCSVRendersTimetable(t *testing.T) {
	store := newWeeklyStoreStub(t)
	store.byClass = []models.WeeklySchedule{
		{ID: "ws-1", AcademicClassID: testClassID, SubjectID: testSubjectID, TimeSlotID: testSlotID, DayOfWeek: models.Monday, Room: "R101", IsActive: true},
	}
	service := newWeeklyService(store, &detectorStub{}, lockCheckerStub{}, &changeLogStub{})

	payload, err := service.ExportGridCSV(context.Background(), testClassID)
	require.NoError(t, err)

	out := string(payload)
	assert.Contains(t, out, "Slot,Senin,Selasa,Rabu,Kamis,Jumat,Sabtu")
	assert.Contains(t, out, "Jam ke-1,Matematika (R101),,,,,")
}
