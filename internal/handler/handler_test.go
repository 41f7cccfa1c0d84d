package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/service"
)

// These cover the request parsing layer, which rejects before any service
// call, so the handlers run with a nil service.

func jsonRequest(t *testing.T, method, target string, body []byte) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestWeeklyScheduleHandlerCreateRejectsMalformedBody(t *testing.T) {
	h := NewWeeklyScheduleHandler(nil, nil)
	w, c := jsonRequest(t, http.MethodPost, "/schedules/weekly", []byte(`{not json`))

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWeeklyScheduleHandlerListRejectsUnknownDay(t *testing.T) {
	h := NewWeeklyScheduleHandler(nil, nil)
	w, c := jsonRequest(t, http.MethodGet, "/schedules/weekly?dayOfWeek=someday", nil)

	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeachingScheduleHandlerCreateRejectsMalformedBody(t *testing.T) {
	h := NewTeachingScheduleHandler(nil, nil)
	w, c := jsonRequest(t, http.MethodPost, "/schedules/teaching", []byte(`{`))

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHolidayHandlerGenerateRecurringRejectsMalformedBody(t *testing.T) {
	h := NewHolidayHandler(nil, nil)
	w, c := jsonRequest(t, http.MethodPost, "/holidays/hol-1/generate", []byte(`[]`))
	c.Params = gin.Params{{Key: "id", Value: "hol-1"}}

	h.GenerateRecurring(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEffectiveScheduleHandlerResolveRejectsBadDate(t *testing.T) {
	h := NewEffectiveScheduleHandler(nil)
	w, c := jsonRequest(t, http.MethodGet, "/employees/emp-1/schedule?date=17-07-2025", nil)
	c.Params = gin.Params{{Key: "id", Value: "emp-1"}}

	h.Resolve(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEffectiveScheduleHandlerRangeRequiresBothBounds(t *testing.T) {
	h := NewEffectiveScheduleHandler(nil)
	w, c := jsonRequest(t, http.MethodGet, "/employees/emp-1/schedule/range?from=2025-07-01", nil)
	c.Params = gin.Params{{Key: "id", Value: "emp-1"}}

	h.ResolveRange(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	h := NewAuthHandler(nil)
	w, c := jsonRequest(t, http.MethodGet, "/auth/me", nil)

	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type revertRowStoreStub struct {
	rows    map[string]*models.EmployeeMonthlySchedule
	updates int
}

func (s *revertRowStoreStub) FindByID(ctx context.Context, id string) (*models.EmployeeMonthlySchedule, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, sql.ErrNoRows
}

func (s *revertRowStoreStub) Update(ctx context.Context, row *models.EmployeeMonthlySchedule) error {
	s.updates++
	s.rows[row.ID] = row
	return nil
}

func (s *revertRowStoreStub) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule) error {
	s.updates++
	s.rows[row.ID] = row
	return nil
}

type revertMonthlyStub struct{}

func (revertMonthlyStub) FindByID(ctx context.Context, id string) (*models.MonthlySchedule, error) {
	return &models.MonthlySchedule{ID: id, DefaultStartTime: "08:00", DefaultEndTime: "16:00"}, nil
}

type revertAttendanceStub struct{}

func (revertAttendanceStub) Create(ctx context.Context, attendance *models.Attendance) error {
	return nil
}

func overriddenRow(t *testing.T) *models.EmployeeMonthlySchedule {
	t.Helper()
	row := &models.EmployeeMonthlySchedule{
		ID:                "row-1",
		MonthlyScheduleID: "ms-1",
		EmployeeID:        "emp-1",
		EffectiveDate:     time.Date(2025, 7, 17, 0, 0, 0, 0, time.UTC),
		StartTime:         "10:00",
		EndTime:           "12:00",
		LocationID:        "loc-1",
		Status:            models.ScheduleStatusOverridden,
		ScheduledHours:    2,
	}
	require.NoError(t, row.SetMetadata(models.OverrideMetadata{
		OverrideType:      models.OverrideTypeTeaching,
		OriginalStartTime: "08:00",
		OriginalEndTime:   "16:00",
	}))
	return row
}

func TestMonthlyScheduleHandlerRevertRowRestoresShift(t *testing.T) {
	store := &revertRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": overriddenRow(t)}}
	overrides := service.NewOverrideService(store, revertMonthlyStub{}, revertAttendanceStub{}, nil)
	h := NewMonthlyScheduleHandler(nil, overrides, nil)

	w, c := jsonRequest(t, http.MethodPost, "/schedules/rows/row-1/revert", []byte(`{"reason":"substitute cancelled"}`))
	c.Params = gin.Params{{Key: "id", Value: "row-1"}}

	h.RevertRow(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.updates)

	row := store.rows["row-1"]
	assert.Equal(t, models.ScheduleStatusActive, row.Status)
	assert.Equal(t, "08:00", row.StartTime)
	assert.Equal(t, "16:00", row.EndTime)
	assert.Equal(t, 8.0, row.ScheduledHours)

	meta, err := row.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "substitute cancelled", meta.RevertReason)
	assert.Contains(t, w.Body.String(), `"reverted":true`)
}

func TestMonthlyScheduleHandlerRevertRowActiveIsNoOp(t *testing.T) {
	row := overriddenRow(t)
	row.Status = models.ScheduleStatusActive
	store := &revertRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{"row-1": row}}
	overrides := service.NewOverrideService(store, revertMonthlyStub{}, revertAttendanceStub{}, nil)
	h := NewMonthlyScheduleHandler(nil, overrides, nil)

	w, c := jsonRequest(t, http.MethodPost, "/schedules/rows/row-1/revert", nil)
	c.Params = gin.Params{{Key: "id", Value: "row-1"}}

	h.RevertRow(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.updates)
	assert.Contains(t, w.Body.String(), `"reverted":false`)
}

func TestMonthlyScheduleHandlerRevertRowUnknownRow(t *testing.T) {
	store := &revertRowStoreStub{rows: map[string]*models.EmployeeMonthlySchedule{}}
	overrides := service.NewOverrideService(store, revertMonthlyStub{}, revertAttendanceStub{}, nil)
	h := NewMonthlyScheduleHandler(nil, overrides, nil)

	w, c := jsonRequest(t, http.MethodPost, "/schedules/rows/missing/revert", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.RevertRow(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
