package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/repository"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

type holidayStore interface {
	Create(ctx context.Context, holiday *models.NationalHoliday) error
	FindByID(ctx context.Context, id string) (*models.NationalHoliday, error)
	ExistsByRecurrence(ctx context.Context, referenceCode string, date time.Time) (bool, error)
	List(ctx context.Context, filter models.HolidayFilter, limit, offset int) ([]models.NationalHoliday, int, error)
	ListActiveInRange(ctx context.Context, from, to time.Time) ([]models.NationalHoliday, error)
	Update(ctx context.Context, holiday *models.NationalHoliday) error
	Deactivate(ctx context.Context, id string) error
}

type holidayRowStore interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	ListForHolidayDate(ctx context.Context, date time.Time, locationID *string) ([]models.EmployeeMonthlySchedule, error)
	ListByHoliday(ctx context.Context, holidayID string, from, to time.Time) ([]models.EmployeeMonthlySchedule, error)
}

type holidayOverrideApplier interface {
	ApplyHolidayOverride(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule, holiday models.NationalHoliday, actor Actor) (bool, error)
	RevertOverride(ctx context.Context, rowID, reason string, actor Actor) (*models.EmployeeMonthlySchedule, bool, error)
}

type holidayAttendanceTagger interface {
	TagHoliday(ctx context.Context, tx *sqlx.Tx, date time.Time, locationID *string, holidayID string) (int64, error)
	ClearHolidayTag(ctx context.Context, date time.Time, holidayID string) (int64, error)
}

// HolidayService manages the holiday calendar: registration, yearly
// recurrence expansion, and applying or removing holiday overrides across
// generated employee schedules with the attendance cascade.
type HolidayService struct {
	holidays   holidayStore
	rows       holidayRowStore
	overrides  holidayOverrideApplier
	attendance holidayAttendanceTagger
	cache      gridCache
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewHolidayService instantiates HolidayService.
func NewHolidayService(
	holidays holidayStore,
	rows holidayRowStore,
	overrides holidayOverrideApplier,
	attendance holidayAttendanceTagger,
	cache gridCache,
	validate *validator.Validate,
	logger *zap.Logger,
) *HolidayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{
		holidays:   holidays,
		rows:       rows,
		overrides:  overrides,
		attendance: attendance,
		cache:      cache,
		validator:  validate,
		logger:     logger,
	}
}

// Create registers a holiday. force_override and paid_leave default to true
// when omitted.
func (s *HolidayService) Create(ctx context.Context, req dto.CreateHolidayRequest, actor Actor) (*models.NationalHoliday, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday payload")
	}
	if req.EndDate != nil && req.EndDate.Before(req.HolidayDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not precede holiday date")
	}

	holiday := &models.NationalHoliday{
		Name:          req.Name,
		HolidayDate:   models.DateOnly(req.HolidayDate),
		Type:          models.HolidayType(req.Type),
		LocationID:    req.LocationID,
		IsRecurring:   req.IsRecurring,
		ForceOverride: true,
		PaidLeave:     true,
		Source:        models.HolidaySourceManual,
	}
	if req.EndDate != nil {
		end := models.DateOnly(*req.EndDate)
		holiday.EndDate = &end
	}
	if req.Description != "" {
		holiday.Description = &req.Description
	}
	if req.ForceOverride != nil {
		holiday.ForceOverride = *req.ForceOverride
	}
	if req.PaidLeave != nil {
		holiday.PaidLeave = *req.PaidLeave
	}
	if actor.UserID != "" {
		holiday.CreatedBy = &actor.UserID
	}
	if req.Recurrence != nil {
		raw, err := json.Marshal(models.RecurrenceConfig{
			Frequency:  req.Recurrence.Frequency,
			Month:      req.Recurrence.Month,
			DayOfMonth: req.Recurrence.DayOfMonth,
			Exceptions: req.Recurrence.Exceptions,
			EndDate:    req.Recurrence.EndDate,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode recurrence")
		}
		holiday.RecurrenceConfig = types.JSONText(raw)
	}

	if err := s.holidays.Create(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create holiday")
	}

	s.invalidateCalendar(ctx, holiday.HolidayDate.Year())
	s.logger.Info("holiday created",
		zap.String("holiday_id", holiday.ID),
		zap.String("name", holiday.Name),
		zap.Time("date", holiday.HolidayDate))
	return holiday, nil
}

// Get loads a holiday.
func (s *HolidayService) Get(ctx context.Context, id string) (*models.NationalHoliday, error) {
	holiday, err := s.holidays.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holiday")
	}
	return holiday, nil
}

// List returns holidays matching the filter with pagination metadata.
func (s *HolidayService) List(ctx context.Context, filter models.HolidayFilter) ([]models.NationalHoliday, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	holidays, total, err := s.holidays.List(ctx, filter, size, (page-1)*size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	return holidays, models.NewPagination(page, size, total), nil
}

// GenerateRecurring expands a recurring holiday into instances for the next
// N years. Dates listed in the recurrence exceptions are skipped, as are
// years past the recurrence end date; generation is idempotent via the
// reference code.
func (s *HolidayService) GenerateRecurring(ctx context.Context, id string, req dto.GenerateRecurringRequest, actor Actor) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence payload")
	}

	source, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if !source.IsRecurring {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "holiday is not recurring")
	}
	cfg, err := source.Recurrence()
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode recurrence")
	}
	month := cfg.Month
	dayOfMonth := cfg.DayOfMonth
	if month == 0 {
		month = int(source.HolidayDate.Month())
		dayOfMonth = source.HolidayDate.Day()
	}

	exceptions := make(map[string]bool, len(cfg.Exceptions))
	for _, raw := range cfg.Exceptions {
		exceptions[raw] = true
	}
	var recurrenceEnd *time.Time
	if cfg.EndDate != "" {
		if parsed, err := time.Parse("2006-01-02", cfg.EndDate); err == nil {
			recurrenceEnd = &parsed
		}
	}

	referenceCode := source.ID
	if source.ReferenceCode != nil && *source.ReferenceCode != "" {
		referenceCode = *source.ReferenceCode
	}

	created := 0
	baseYear := source.HolidayDate.Year()
	for offset := 1; offset <= req.Years; offset++ {
		date := time.Date(baseYear+offset, time.Month(month), dayOfMonth, 0, 0, 0, 0, time.UTC)
		if exceptions[date.Format("2006-01-02")] {
			continue
		}
		if recurrenceEnd != nil && date.After(*recurrenceEnd) {
			break
		}
		exists, err := s.holidays.ExistsByRecurrence(ctx, referenceCode, date)
		if err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check recurring instance")
		}
		if exists {
			continue
		}

		instance := &models.NationalHoliday{
			Name:          source.Name,
			HolidayDate:   date,
			Type:          source.Type,
			Description:   source.Description,
			LocationID:    source.LocationID,
			ForceOverride: source.ForceOverride,
			PaidLeave:     source.PaidLeave,
			Source:        models.HolidaySourceRecurring,
			ReferenceCode: &referenceCode,
		}
		if actor.UserID != "" {
			instance.CreatedBy = &actor.UserID
		}
		if err := s.holidays.Create(ctx, instance); err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to create recurring instance for %d", date.Year()))
		}
		created++
	}

	s.logger.Info("recurring holiday generated",
		zap.String("holiday_id", id),
		zap.Int("instances", created))
	return created, nil
}

// Preview reports which generated schedule rows each date of the holiday
// span would override, without mutating anything.
func (s *HolidayService) Preview(ctx context.Context, id string) ([]models.HolidayConflictPreview, error) {
	holiday, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var previews []models.HolidayConflictPreview
	for _, date := range holidaySpan(*holiday) {
		rows, err := s.rows.ListForHolidayDate(ctx, date, holiday.LocationID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to preview affected schedules")
		}
		previews = append(previews, models.HolidayConflictPreview{
			HolidayID:         holiday.ID,
			Date:              date,
			Name:              holiday.Name,
			Type:              holiday.Type,
			AffectedSchedules: len(rows),
		})
	}
	return previews, nil
}

// ApplyToSchedules stamps every matching employee schedule row in the
// holiday span and cascades the tag onto attendance placeholders. Each date
// is one transaction covering its row updates and the attendance retag, so a
// mid-sweep failure leaves that date untouched. Rows not in active status
// are skipped.
func (s *HolidayService) ApplyToSchedules(ctx context.Context, id string, actor Actor) (int, error) {
	holiday, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if !holiday.ForceOverride {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "holiday is not flagged to override schedules")
	}

	applied := 0
	for _, date := range holidaySpan(*holiday) {
		stamped, err := s.applyToDate(ctx, *holiday, date, actor)
		if err != nil {
			return applied, err
		}
		applied += stamped
	}

	s.invalidateCalendar(ctx, holiday.HolidayDate.Year())
	s.logger.Info("holiday applied to schedules",
		zap.String("holiday_id", holiday.ID),
		zap.Int("rows", applied))
	return applied, nil
}

func (s *HolidayService) applyToDate(ctx context.Context, holiday models.NationalHoliday, date time.Time, actor Actor) (int, error) {
	rows, err := s.rows.ListForHolidayDate(ctx, date, holiday.LocationID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list affected schedules")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.rows.BeginTx(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open holiday transaction")
	}

	stamped := 0
	for i := range rows {
		changed, err := s.overrides.ApplyHolidayOverride(ctx, tx, &rows[i], holiday, actor)
		if err != nil {
			_ = tx.Rollback()
			s.logger.Error("apply holiday override",
				zap.String("row_id", rows[i].ID),
				zap.String("holiday_id", holiday.ID),
				zap.Error(err))
			return 0, err
		}
		if changed {
			stamped++
		}
	}
	if _, err := s.attendance.TagHoliday(ctx, tx, date, holiday.LocationID, holiday.ID); err != nil {
		_ = tx.Rollback()
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tag attendance holiday")
	}
	if err := tx.Commit(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit holiday overrides")
	}
	return stamped, nil
}

// RemoveFromSchedules reverts every row this holiday stamped and clears the
// attendance tags.
func (s *HolidayService) RemoveFromSchedules(ctx context.Context, id string, actor Actor) (int, error) {
	holiday, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	span := holidaySpan(*holiday)
	from := span[0]
	to := span[len(span)-1]

	rows, err := s.rows.ListByHoliday(ctx, holiday.ID, from, to)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stamped schedules")
	}

	reverted := 0
	for i := range rows {
		_, changed, err := s.overrides.RevertOverride(ctx, rows[i].ID, "holiday removed: "+holiday.Name, actor)
		if err != nil {
			s.logger.Error("revert holiday override",
				zap.String("row_id", rows[i].ID),
				zap.String("holiday_id", holiday.ID),
				zap.Error(err))
			continue
		}
		if changed {
			reverted++
		}
	}
	for _, date := range span {
		if _, err := s.attendance.ClearHolidayTag(ctx, date, holiday.ID); err != nil {
			s.logger.Error("clear attendance holiday tag", zap.String("holiday_id", holiday.ID), zap.Error(err))
		}
	}

	s.invalidateCalendar(ctx, holiday.HolidayDate.Year())
	s.logger.Info("holiday removed from schedules",
		zap.String("holiday_id", holiday.ID),
		zap.Int("rows", reverted))
	return reverted, nil
}

// Deactivate retires a holiday after removing it from schedules.
func (s *HolidayService) Deactivate(ctx context.Context, id string, actor Actor) error {
	if _, err := s.RemoveFromSchedules(ctx, id, actor); err != nil {
		return err
	}
	if err := s.holidays.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate holiday")
	}
	return nil
}

// holidaySpan expands a holiday into its covered dates.
func holidaySpan(holiday models.NationalHoliday) []time.Time {
	start := models.DateOnly(holiday.HolidayDate)
	if holiday.EndDate == nil {
		return []time.Time{start}
	}
	end := models.DateOnly(*holiday.EndDate)
	var dates []time.Time
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		dates = append(dates, date)
	}
	return dates
}

func (s *HolidayService) invalidateCalendar(ctx context.Context, year int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.HolidayCalendarCacheKey(year)); err != nil {
		s.logger.Warn("invalidate holiday cache", zap.Int("year", year), zap.Error(err))
	}
}
