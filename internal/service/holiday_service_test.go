package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

type holidayStoreStub struct {
	holidays map[string]*models.NationalHoliday
	existing map[string]bool
	created  []*models.NationalHoliday
}

func (s *holidayStoreStub) Create(ctx context.Context, holiday *models.NationalHoliday) error {
	holiday.ID = "hol-new"
	holiday.IsActive = true
	s.created = append(s.created, holiday)
	return nil
}

func (s *holidayStoreStub) FindByID(ctx context.Context, id string) (*models.NationalHoliday, error) {
	if holiday, ok := s.holidays[id]; ok {
		return holiday, nil
	}
	return nil, sql.ErrNoRows
}

func (s *holidayStoreStub) ExistsByRecurrence(ctx context.Context, referenceCode string, date time.Time) (bool, error) {
	return s.existing[date.Format("2006-01-02")], nil
}

func (s *holidayStoreStub) List(ctx context.Context, filter models.HolidayFilter, limit, offset int) ([]models.NationalHoliday, int, error) {
	return nil, 0, nil
}

func (s *holidayStoreStub) ListActiveInRange(ctx context.Context, from, to time.Time) ([]models.NationalHoliday, error) {
	return nil, nil
}

func (s *holidayStoreStub) Update(ctx context.Context, holiday *models.NationalHoliday) error {
	return nil
}

func (s *holidayStoreStub) Deactivate(ctx context.Context, id string) error {
	return nil
}

type holidayRowStoreStub struct {
	db             *sqlx.DB
	mock           sqlmock.Sqlmock
	byDate         map[string][]models.EmployeeMonthlySchedule
	byHoliday      []models.EmployeeMonthlySchedule
	expectRollback bool
}

func newHolidayRowStoreStub(t *testing.T) *holidayRowStoreStub {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	mock.MatchExpectationsInOrder(false)
	return &holidayRowStoreStub{db: sqlx.NewDb(raw, "sqlmock"), mock: mock}
}

func (s *holidayRowStoreStub) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	s.mock.ExpectBegin()
	if s.expectRollback {
		s.mock.ExpectRollback()
	} else {
		s.mock.ExpectCommit()
	}
	return s.db.BeginTxx(ctx, nil)
}

func (s *holidayRowStoreStub) ListForHolidayDate(ctx context.Context, date time.Time, locationID *string) ([]models.EmployeeMonthlySchedule, error) {
	return s.byDate[date.Format("2006-01-02")], nil
}

func (s *holidayRowStoreStub) ListByHoliday(ctx context.Context, holidayID string, from, to time.Time) ([]models.EmployeeMonthlySchedule, error) {
	return s.byHoliday, nil
}

type holidayApplierStub struct {
	applied    []string
	reverted   []string
	unchanged  map[string]bool
	failOn     string
	revertNoOp map[string]bool
}

func (s *holidayApplierStub) ApplyHolidayOverride(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule, holiday models.NationalHoliday, actor Actor) (bool, error) {
	if s.failOn != "" && s.failOn == row.ID {
		return false, errors.New("row update failed")
	}
	if s.unchanged[row.ID] {
		return false, nil
	}
	s.applied = append(s.applied, row.ID)
	return true, nil
}

func (s *holidayApplierStub) RevertOverride(ctx context.Context, rowID, reason string, actor Actor) (*models.EmployeeMonthlySchedule, bool, error) {
	restored := &models.EmployeeMonthlySchedule{ID: rowID, Status: models.ScheduleStatusActive}
	if s.revertNoOp[rowID] {
		return restored, false, nil
	}
	s.reverted = append(s.reverted, rowID)
	return restored, true, nil
}

type attendanceTaggerStub struct {
	tagged  int
	cleared int
	tagErr  error
}

func (s *attendanceTaggerStub) TagHoliday(ctx context.Context, tx *sqlx.Tx, date time.Time, locationID *string, holidayID string) (int64, error) {
	if s.tagErr != nil {
		return 0, s.tagErr
	}
	s.tagged++
	return 1, nil
}

func (s *attendanceTaggerStub) ClearHolidayTag(ctx context.Context, date time.Time, holidayID string) (int64, error) {
	s.cleared++
	return 1, nil
}

func recurringHoliday() *models.NationalHoliday {
	cfg, _ := json.Marshal(models.RecurrenceConfig{
		Frequency:  "yearly",
		Month:      8,
		DayOfMonth: 17,
		Exceptions: []string{"2027-08-17"},
	})
	return &models.NationalHoliday{
		ID:               "hol-1",
		Name:             "Hari Kemerdekaan",
		HolidayDate:      time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC),
		Type:             models.HolidayTypeNational,
		IsRecurring:      true,
		IsActive:         true,
		ForceOverride:    true,
		PaidLeave:        true,
		RecurrenceConfig: types.JSONText(cfg),
	}
}

func TestHolidayCreateDefaultsForceOverride(t *testing.T) {
	store := &holidayStoreStub{}
	service := NewHolidayService(store, &holidayRowStoreStub{}, &holidayApplierStub{}, &attendanceTaggerStub{}, nil, nil, nil)

	holiday, err := service.Create(context.Background(), dto.CreateHolidayRequest{
		Name:        "Hari Kemerdekaan",
		HolidayDate: time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC),
		Type:        "national",
	}, Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.True(t, holiday.ForceOverride)
	assert.True(t, holiday.PaidLeave)
	assert.Equal(t, models.HolidaySourceManual, holiday.Source)
}

func TestHolidayCreateRejectsInvertedRange(t *testing.T) {
	service := NewHolidayService(&holidayStoreStub{}, &holidayRowStoreStub{}, &holidayApplierStub{}, &attendanceTaggerStub{}, nil, nil, nil)

	end := time.Date(2025, 8, 16, 0, 0, 0, 0, time.UTC)
	_, err := service.Create(context.Background(), dto.CreateHolidayRequest{
		Name:        "Libur Terbalik",
		HolidayDate: time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
		Type:        "school",
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateRecurringSkipsExceptionsAndExisting(t *testing.T) {
	store := &holidayStoreStub{
		holidays: map[string]*models.NationalHoliday{"hol-1": recurringHoliday()},
		existing: map[string]bool{"2026-08-17": true},
	}
	service := NewHolidayService(store, &holidayRowStoreStub{}, &holidayApplierStub{}, &attendanceTaggerStub{}, nil, nil, nil)

	created, err := service.GenerateRecurring(context.Background(), "hol-1", dto.GenerateRecurringRequest{Years: 5}, Actor{UserID: "admin"})
	require.NoError(t, err)
	// 2026 exists, 2027 is excepted, so only 2028-2030 are created.
	assert.Equal(t, 3, created)
	require.Len(t, store.created, 3)
	for _, instance := range store.created {
		assert.Equal(t, models.HolidaySourceRecurring, instance.Source)
		require.NotNil(t, instance.ReferenceCode)
		assert.Equal(t, "hol-1", *instance.ReferenceCode)
		assert.Equal(t, time.August, instance.HolidayDate.Month())
		assert.Equal(t, 17, instance.HolidayDate.Day())
	}
}

func TestGenerateRecurringIdempotent(t *testing.T) {
	store := &holidayStoreStub{
		holidays: map[string]*models.NationalHoliday{"hol-1": recurringHoliday()},
		existing: map[string]bool{
			"2026-08-17": true,
			"2028-08-17": true,
		},
	}
	service := NewHolidayService(store, &holidayRowStoreStub{}, &holidayApplierStub{}, &attendanceTaggerStub{}, nil, nil, nil)

	created, err := service.GenerateRecurring(context.Background(), "hol-1", dto.GenerateRecurringRequest{Years: 3}, Actor{})
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestGenerateRecurringRequiresRecurringFlag(t *testing.T) {
	holiday := recurringHoliday()
	holiday.IsRecurring = false
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": holiday}}
	service := NewHolidayService(store, &holidayRowStoreStub{}, &holidayApplierStub{}, &attendanceTaggerStub{}, nil, nil, nil)

	_, err := service.GenerateRecurring(context.Background(), "hol-1", dto.GenerateRecurringRequest{Years: 3}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestHolidayPreviewCountsEligibleRows(t *testing.T) {
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": recurringHoliday()}}
	rows := &holidayRowStoreStub{byDate: map[string][]models.EmployeeMonthlySchedule{
		"2025-08-17": {
			{ID: "row-1", Status: models.ScheduleStatusActive},
			{ID: "row-2", Status: models.ScheduleStatusActive},
		},
	}}
	service := NewHolidayService(store, rows, &holidayApplierStub{}, &attendanceTaggerStub{}, nil, nil, nil)

	previews, err := service.Preview(context.Background(), "hol-1")
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, 2, previews[0].AffectedSchedules)
	assert.Equal(t, "Hari Kemerdekaan", previews[0].Name)
}

func TestHolidayApplySpansEveryDate(t *testing.T) {
	holiday := recurringHoliday()
	end := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	holiday.EndDate = &end
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": holiday}}
	rows := newHolidayRowStoreStub(t)
	rows.byDate = map[string][]models.EmployeeMonthlySchedule{
		"2025-08-17": {{ID: "row-1"}, {ID: "row-2"}},
		"2025-08-18": {{ID: "row-3"}},
	}
	applier := &holidayApplierStub{}
	tagger := &attendanceTaggerStub{}
	service := NewHolidayService(store, rows, applier, tagger, nil, nil, nil)

	applied, err := service.ApplyToSchedules(context.Background(), "hol-1", Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
	assert.ElementsMatch(t, []string{"row-1", "row-2", "row-3"}, applier.applied)
	assert.Equal(t, 2, tagger.tagged)
	assert.NoError(t, rows.mock.ExpectationsWereMet())
}

func TestHolidayApplyCountsOnlyStampedRows(t *testing.T) {
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": recurringHoliday()}}
	rows := newHolidayRowStoreStub(t)
	rows.byDate = map[string][]models.EmployeeMonthlySchedule{
		"2025-08-17": {{ID: "row-1"}, {ID: "row-2"}},
	}
	applier := &holidayApplierStub{unchanged: map[string]bool{"row-2": true}}
	service := NewHolidayService(store, rows, applier, &attendanceTaggerStub{}, nil, nil, nil)

	applied, err := service.ApplyToSchedules(context.Background(), "hol-1", Actor{})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []string{"row-1"}, applier.applied)
}

func TestHolidayApplyRollsBackDateOnFailure(t *testing.T) {
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": recurringHoliday()}}
	rows := newHolidayRowStoreStub(t)
	rows.expectRollback = true
	rows.byDate = map[string][]models.EmployeeMonthlySchedule{
		"2025-08-17": {{ID: "row-1"}, {ID: "row-2"}},
	}
	applier := &holidayApplierStub{failOn: "row-2"}
	tagger := &attendanceTaggerStub{}
	service := NewHolidayService(store, rows, applier, tagger, nil, nil, nil)

	applied, err := service.ApplyToSchedules(context.Background(), "hol-1", Actor{})
	require.Error(t, err)
	assert.Zero(t, applied)
	assert.Zero(t, tagger.tagged)
	assert.NoError(t, rows.mock.ExpectationsWereMet())
}

func TestHolidayApplyRollsBackWhenTaggingFails(t *testing.T) {
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": recurringHoliday()}}
	rows := newHolidayRowStoreStub(t)
	rows.expectRollback = true
	rows.byDate = map[string][]models.EmployeeMonthlySchedule{
		"2025-08-17": {{ID: "row-1"}},
	}
	tagger := &attendanceTaggerStub{tagErr: errors.New("attendance unavailable")}
	service := NewHolidayService(store, rows, &holidayApplierStub{}, tagger, nil, nil, nil)

	applied, err := service.ApplyToSchedules(context.Background(), "hol-1", Actor{})
	require.Error(t, err)
	assert.Zero(t, applied)
	assert.NoError(t, rows.mock.ExpectationsWereMet())
}

func TestHolidayApplyRequiresForceOverride(t *testing.T) {
	holiday := recurringHoliday()
	holiday.ForceOverride = false
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": holiday}}
	service := NewHolidayService(store, &holidayRowStoreStub{}, &holidayApplierStub{}, &attendanceTaggerStub{}, nil, nil, nil)

	_, err := service.ApplyToSchedules(context.Background(), "hol-1", Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestHolidayRemoveRevertsStampedRows(t *testing.T) {
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": recurringHoliday()}}
	rows := &holidayRowStoreStub{byHoliday: []models.EmployeeMonthlySchedule{
		{ID: "row-1", Status: models.ScheduleStatusHoliday},
		{ID: "row-2", Status: models.ScheduleStatusHoliday},
	}}
	applier := &holidayApplierStub{}
	tagger := &attendanceTaggerStub{}
	service := NewHolidayService(store, rows, applier, tagger, nil, nil, nil)

	reverted, err := service.RemoveFromSchedules(context.Background(), "hol-1", Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 2, reverted)
	assert.ElementsMatch(t, []string{"row-1", "row-2"}, applier.reverted)
	assert.Equal(t, 1, tagger.cleared)
}

func TestHolidayRemoveCountsOnlyRevertedRows(t *testing.T) {
	store := &holidayStoreStub{holidays: map[string]*models.NationalHoliday{"hol-1": recurringHoliday()}}
	rows := &holidayRowStoreStub{byHoliday: []models.EmployeeMonthlySchedule{
		{ID: "row-1", Status: models.ScheduleStatusHoliday},
		{ID: "row-2", Status: models.ScheduleStatusActive},
	}}
	applier := &holidayApplierStub{revertNoOp: map[string]bool{"row-2": true}}
	service := NewHolidayService(store, rows, applier, &attendanceTaggerStub{}, nil, nil, nil)

	reverted, err := service.RemoveFromSchedules(context.Background(), "hol-1", Actor{})
	require.NoError(t, err)
	assert.Equal(t, 1, reverted)
	assert.Equal(t, []string{"row-1"}, applier.reverted)
}
