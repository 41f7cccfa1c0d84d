package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

type overrideRowStore interface {
	FindByID(ctx context.Context, id string) (*models.EmployeeMonthlySchedule, error)
	Update(ctx context.Context, row *models.EmployeeMonthlySchedule) error
	UpdateWithTx(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule) error
}

type overrideMonthlyReader interface {
	FindByID(ctx context.Context, id string) (*models.MonthlySchedule, error)
}

type attendanceStore interface {
	Create(ctx context.Context, attendance *models.Attendance) error
}

// OverrideService applies and reverts per-row schedule overrides. Every
// override snapshots the pre-change shift into the row's metadata; revert is
// a single-level undo that restores the snapshot or, when the snapshot has
// no original times, the monthly defaults.
type OverrideService struct {
	rows       overrideRowStore
	monthly    overrideMonthlyReader
	attendance attendanceStore
	logger     *zap.Logger
}

// NewOverrideService instantiates OverrideService.
func NewOverrideService(rows overrideRowStore, monthly overrideMonthlyReader, attendance attendanceStore, logger *zap.Logger) *OverrideService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverrideService{rows: rows, monthly: monthly, attendance: attendance, logger: logger}
}

// ApplyHolidayOverride stamps one schedule row with a holiday: status moves
// to holiday, working hours drop to zero and the previous shift is
// snapshotted for revert. Only active rows qualify; rows on leave, suspended,
// already overridden or already on holiday are left untouched and report
// false. Runs inside tx when one is given.
func (s *OverrideService) ApplyHolidayOverride(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule, holiday models.NationalHoliday, actor Actor) (bool, error) {
	if row.Status != models.ScheduleStatusActive {
		return false, nil
	}

	meta, err := s.snapshot(row, actor)
	if err != nil {
		return false, err
	}
	meta.OverrideType = models.OverrideTypeHoliday
	meta.HolidayID = holiday.ID
	meta.HolidayName = holiday.Name
	meta.HolidayType = string(holiday.Type)
	meta.OverrideReason = "holiday: " + holiday.Name

	row.Status = models.ScheduleStatusHoliday
	row.IsHoliday = true
	row.ScheduledHours = 0
	if actor.UserID != "" {
		row.ModifiedBy = &actor.UserID
	}
	if err := row.SetMetadata(meta); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode override snapshot")
	}

	if err := s.updateRow(ctx, tx, row); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply holiday override")
	}
	s.logger.Info("holiday override applied",
		zap.String("row_id", row.ID),
		zap.String("holiday_id", holiday.ID),
		zap.String("employee_id", row.EmployeeID))
	return true, nil
}

func (s *OverrideService) updateRow(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule) error {
	if tx != nil {
		return s.rows.UpdateWithTx(ctx, tx, row)
	}
	return s.rows.Update(ctx, row)
}

// ApplyTeachingOverride replaces a row's shift with the teaching block. Only
// honorary teachers with an override-enabled teaching schedule qualify;
// everyone else is skipped silently so calendar-wide application can walk
// every row.
func (s *OverrideService) ApplyTeachingOverride(ctx context.Context, row *models.EmployeeMonthlySchedule, teaching models.TeachingSchedule, employee models.Employee, actor Actor) (bool, error) {
	if !teaching.CanOverrideFor(employee, row.EffectiveDate) {
		return false, nil
	}
	if row.Status == models.ScheduleStatusHoliday {
		// Holiday outranks teaching; never overwrite a holiday row.
		return false, nil
	}

	minutes, err := teaching.DurationMinutes()
	if err != nil || minutes <= 0 {
		return false, appErrors.Clone(appErrors.ErrValidation, "teaching schedule has an invalid time block")
	}

	meta, err := s.snapshot(row, actor)
	if err != nil {
		return false, err
	}
	meta.OverrideType = models.OverrideTypeTeaching
	meta.TeachingScheduleID = teaching.ID
	meta.OverrideReason = "teaching schedule " + teaching.FormattedTime()

	row.StartTime = teaching.TeachingStartTime
	row.EndTime = teaching.TeachingEndTime
	row.Status = models.ScheduleStatusOverridden
	row.ScheduledHours = float64(minutes) / 60
	if actor.UserID != "" {
		row.ModifiedBy = &actor.UserID
	}
	if err := row.SetMetadata(meta); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode override snapshot")
	}

	if err := s.rows.Update(ctx, row); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply teaching override")
	}
	s.logger.Info("teaching override applied",
		zap.String("row_id", row.ID),
		zap.String("teaching_schedule_id", teaching.ID),
		zap.Float64("hours", row.ScheduledHours))
	return true, nil
}

// snapshot builds the next override metadata, preserving the current
// override (if any) one level deep and capturing the pre-change times.
func (s *OverrideService) snapshot(row *models.EmployeeMonthlySchedule, actor Actor) (models.OverrideMetadata, error) {
	current, err := row.Metadata()
	if err != nil {
		return models.OverrideMetadata{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode override snapshot")
	}

	now := time.Now().UTC()
	next := models.OverrideMetadata{
		OriginalStartTime: row.StartTime,
		OriginalEndTime:   row.EndTime,
		OverrideAt:        &now,
		OverrideBy:        actor.UserID,
	}
	if current.OverrideType != "" {
		previous := current
		previous.PreviousOverride = nil
		next.PreviousOverride = &previous
	}
	return next, nil
}

// RevertOverride restores a row to its pre-override shift. Rows already
// active are a no-op and report false. When the snapshot carries no original
// times the monthly defaults apply. Single-level undo: the nested previous
// override is not replayed, only recorded.
func (s *OverrideService) RevertOverride(ctx context.Context, rowID, reason string, actor Actor) (*models.EmployeeMonthlySchedule, bool, error) {
	row, err := s.rows.FindByID(ctx, rowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "employee schedule not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee schedule")
	}

	if row.Status == models.ScheduleStatusActive {
		return row, false, nil
	}

	meta, err := row.Metadata()
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode override snapshot")
	}

	startTime := meta.OriginalStartTime
	endTime := meta.OriginalEndTime
	if startTime == "" || endTime == "" {
		monthly, err := s.monthly.FindByID(ctx, row.MonthlyScheduleID)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load monthly defaults")
		}
		startTime = monthly.DefaultStartTime
		endTime = monthly.DefaultEndTime
	}

	minutes, err := models.ClockDiffMinutes(startTime, endTime)
	if err != nil || minutes < 0 {
		return nil, false, appErrors.Clone(appErrors.ErrInternal, "restored shift has an invalid time range")
	}

	now := time.Now().UTC()
	meta.RevertedAt = &now
	meta.RevertedBy = actor.UserID
	meta.RevertReason = reason

	row.StartTime = startTime
	row.EndTime = endTime
	row.Status = models.ScheduleStatusActive
	row.IsHoliday = false
	row.ScheduledHours = float64(minutes) / 60
	if actor.UserID != "" {
		row.ModifiedBy = &actor.UserID
	}
	if err := row.SetMetadata(meta); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode override snapshot")
	}

	if err := s.rows.Update(ctx, row); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revert override")
	}
	s.logger.Info("override reverted",
		zap.String("row_id", row.ID),
		zap.String("reverted_by", actor.UserID))
	return row, true, nil
}

// CreateAttendancePlaceholder emits the expected-shift snapshot for a
// schedule row into the attendance subsystem.
func (s *OverrideService) CreateAttendancePlaceholder(ctx context.Context, row models.EmployeeMonthlySchedule, source models.ScheduleSource) (*models.Attendance, error) {
	shift := models.ExpectedShift{
		ExpectedStart: row.StartTime,
		ExpectedEnd:   row.EndTime,
		ExpectedHours: row.WorkingHours(),
		ScheduleType:  string(source),
		CalculatedAt:  time.Now().UTC(),
	}
	raw, err := json.Marshal(shift)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode expected shift")
	}

	attendance := &models.Attendance{
		EmployeeID:                row.EmployeeID,
		Date:                      models.DateOnly(row.EffectiveDate),
		LocationID:                row.LocationID,
		EmployeeMonthlyScheduleID: &row.ID,
		ScheduleSource:            source,
		ScheduleMetadata:          types.JSONText(raw),
	}
	meta, metaErr := row.Metadata()
	if metaErr == nil {
		if meta.HolidayID != "" {
			holidayID := meta.HolidayID
			attendance.HolidayID = &holidayID
		}
		if meta.TeachingScheduleID != "" {
			teachingID := meta.TeachingScheduleID
			attendance.TeachingScheduleID = &teachingID
		}
	}

	if err := s.attendance.Create(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance placeholder")
	}
	return attendance, nil
}
