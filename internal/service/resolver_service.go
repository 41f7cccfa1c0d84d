package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/repository"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

type resolverRowReader interface {
	FindByEmployeeDate(ctx context.Context, employeeID string, date time.Time) (*models.EmployeeMonthlySchedule, error)
}

type resolverTeachingReader interface {
	FindOverrideSource(ctx context.Context, teacherID string, day models.DayOfWeek, date time.Time) (*models.TeachingSchedule, error)
	ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.TeachingSchedule, error)
}

type resolverHolidayReader interface {
	ListActiveInRange(ctx context.Context, from, to time.Time) ([]models.NationalHoliday, error)
}

type resolverWeeklyReader interface {
	ListByTeacher(ctx context.Context, employeeID string) ([]models.WeeklySchedule, error)
}

type resolverDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// ResolverService answers "which schedule actually applies to this employee
// on this date". Sources are consulted in fixed order, highest first:
// substitute assignment, teaching override, holiday, monthly row, base
// weekly timetable. The first applicable source wins; resolution never
// mutates any row.
type ResolverService struct {
	rows      resolverRowReader
	teaching  resolverTeachingReader
	holidays  resolverHolidayReader
	weekly    resolverWeeklyReader
	employees resolverDirectory
	slots     timeSlotReader
	subjects  subjectNameReader
	cache     gridCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewResolverService instantiates ResolverService.
func NewResolverService(
	rows resolverRowReader,
	teaching resolverTeachingReader,
	holidays resolverHolidayReader,
	weekly resolverWeeklyReader,
	employees resolverDirectory,
	slots timeSlotReader,
	subjects subjectNameReader,
	cache gridCache,
	logger *zap.Logger,
) *ResolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolverService{
		rows:      rows,
		teaching:  teaching,
		holidays:  holidays,
		weekly:    weekly,
		employees: employees,
		slots:     slots,
		subjects:  subjects,
		cache:     cache,
		cacheTTL:  2 * time.Minute,
		logger:    logger,
	}
}

// Resolve computes the effective schedule for one employee on one date.
func (s *ResolverService) Resolve(ctx context.Context, employeeID string, date time.Time) (*models.EffectiveSchedule, error) {
	date = models.DateOnly(date)

	cacheKey := repository.EffectiveScheduleCacheKey(employeeID, date)
	if s.cache != nil {
		var cached models.EffectiveSchedule
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	row, err := s.rows.FindByEmployeeDate(ctx, employeeID, date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule row")
	}

	resolved, err := s.resolve(ctx, *employee, row, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resolved, s.cacheTTL); err != nil {
			s.logger.Warn("cache effective schedule", zap.String("employee_id", employeeID), zap.Error(err))
		}
	}
	return resolved, nil
}

// ResolveRange resolves every date in [from, to] inclusive.
func (s *ResolverService) ResolveRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.EffectiveSchedule, error) {
	from = models.DateOnly(from)
	to = models.DateOnly(to)
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end precedes range start")
	}

	var resolved []models.EffectiveSchedule
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		schedule, err := s.Resolve(ctx, employeeID, date)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *schedule)
	}
	return resolved, nil
}

func (s *ResolverService) resolve(ctx context.Context, employee models.Employee, row *models.EmployeeMonthlySchedule, date time.Time) (*models.EffectiveSchedule, error) {
	locationID := employee.LocationID
	if row != nil {
		locationID = row.LocationID
	}

	if resolved, err := s.resolveSubstitute(ctx, employee, date, locationID); err != nil || resolved != nil {
		return resolved, err
	}
	if resolved, err := s.resolveTeaching(ctx, employee, date, locationID); err != nil || resolved != nil {
		return resolved, err
	}
	if resolved, err := s.resolveHoliday(ctx, employee, date, locationID); err != nil || resolved != nil {
		return resolved, err
	}
	if row != nil {
		return s.resolveMonthly(employee, *row, date), nil
	}
	return s.resolveBase(ctx, employee, date)
}

// resolveSubstitute wins when the employee stands in on another teacher's
// block whose substitution window covers the date.
func (s *ResolverService) resolveSubstitute(ctx context.Context, employee models.Employee, date time.Time, locationID string) (*models.EffectiveSchedule, error) {
	blocks, err := s.teaching.ListActiveByTeacher(ctx, employee.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching blocks")
	}
	for _, block := range blocks {
		if block.TeacherID == employee.ID {
			continue
		}
		if !block.HasSubstituteOn(date) || *block.SubstituteTeacherID != employee.ID {
			continue
		}
		if block.DayOfWeek != models.DayFromTime(date) || !block.IsEffectiveOn(date) {
			continue
		}
		resolved := s.fromTeachingBlock(ctx, employee, block, date, locationID, models.ScheduleSourceSubstitute)
		resolved.SubstituteID = &employee.ID
		return resolved, nil
	}
	return nil, nil
}

// resolveTeaching wins for honorary teachers with a matching override block,
// unless the block is substituted away on that date.
func (s *ResolverService) resolveTeaching(ctx context.Context, employee models.Employee, date time.Time, locationID string) (*models.EffectiveSchedule, error) {
	block, err := s.teaching.FindOverrideSource(ctx, employee.ID, models.DayFromTime(date), date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching override")
	}
	if !block.CanOverrideFor(employee, date) {
		return nil, nil
	}
	if block.EffectiveTeacherID(date) != employee.ID {
		return nil, nil
	}
	return s.fromTeachingBlock(ctx, employee, *block, date, locationID, models.ScheduleSourceTeaching), nil
}

func (s *ResolverService) resolveHoliday(ctx context.Context, employee models.Employee, date time.Time, locationID string) (*models.EffectiveSchedule, error) {
	holidays, err := s.holidays.ListActiveInRange(ctx, date, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	for _, holiday := range holidays {
		if !holiday.CoversDate(date) || !holiday.AppliesToLocation(locationID) {
			continue
		}
		if !holiday.ForceOverride {
			continue
		}
		resolved := &models.EffectiveSchedule{
			EmployeeID:   employee.ID,
			Date:         date,
			LocationID:   locationID,
			Status:       models.ScheduleStatusHoliday,
			IsWorkingDay: false,
			WorkingHours: 0,
			Source:       models.ScheduleSourceHolidayOverride,
			HolidayID:    &holiday.ID,
			HolidayName:  holiday.Name,
		}
		return resolved, nil
	}
	return nil, nil
}

// resolveMonthly uses the generated row's template values. If overrides
// mutated the row in place, the metadata snapshot still carries the
// template times.
func (s *ResolverService) resolveMonthly(employee models.Employee, row models.EmployeeMonthlySchedule, date time.Time) *models.EffectiveSchedule {
	start, end := row.StartTime, row.EndTime
	if row.Status != models.ScheduleStatusActive {
		if meta, err := row.Metadata(); err == nil && meta.OriginalStartTime != "" && meta.OriginalEndTime != "" {
			start, end = meta.OriginalStartTime, meta.OriginalEndTime
		}
	}

	hours := row.ScheduledHours
	if minutes, err := models.ClockDiffMinutes(start, end); err == nil && minutes > 0 {
		hours = float64(minutes) / 60
	}

	return &models.EffectiveSchedule{
		EmployeeID:   employee.ID,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		LocationID:   row.LocationID,
		Status:       models.ScheduleStatusActive,
		WorkingHours: hours,
		IsWorkingDay: !row.IsWeekend,
		Source:       models.ScheduleSourceMonthly,
	}
}

// resolveBase falls back to the weekly timetable: the employee's teaching
// blocks on that weekday, spanned from the earliest slot start to the
// latest slot end.
func (s *ResolverService) resolveBase(ctx context.Context, employee models.Employee, date time.Time) (*models.EffectiveSchedule, error) {
	schedules, err := s.weekly.ListByTeacher(ctx, employee.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly timetable")
	}

	day := models.DayFromTime(date)
	var start, end string
	matched := false
	for _, schedule := range schedules {
		if schedule.DayOfWeek != day || !schedule.IsEffectiveOn(date) {
			continue
		}
		slot, err := s.slots.FindByID(ctx, schedule.TimeSlotID)
		if err != nil {
			continue
		}
		if !matched {
			start, end = slot.StartTime, slot.EndTime
			matched = true
			continue
		}
		if slot.StartTime < start {
			start = slot.StartTime
		}
		if slot.EndTime > end {
			end = slot.EndTime
		}
	}

	resolved := &models.EffectiveSchedule{
		EmployeeID: employee.ID,
		Date:       date,
		LocationID: employee.LocationID,
		Status:     models.ScheduleStatusActive,
		Source:     models.ScheduleSourceBase,
	}
	if !matched {
		resolved.IsWorkingDay = false
		return resolved, nil
	}

	resolved.StartTime = start
	resolved.EndTime = end
	resolved.IsWorkingDay = !models.IsWeekend(date)
	if minutes, err := models.ClockDiffMinutes(start, end); err == nil && minutes > 0 {
		resolved.WorkingHours = float64(minutes) / 60
	}
	return resolved, nil
}

func (s *ResolverService) fromTeachingBlock(ctx context.Context, employee models.Employee, block models.TeachingSchedule, date time.Time, locationID string, source models.ScheduleSource) *models.EffectiveSchedule {
	resolved := &models.EffectiveSchedule{
		EmployeeID:         employee.ID,
		Date:               date,
		StartTime:          block.TeachingStartTime,
		EndTime:            block.TeachingEndTime,
		LocationID:         locationID,
		Status:             models.ScheduleStatusOverridden,
		IsWorkingDay:       true,
		Source:             source,
		TeachingScheduleID: &block.ID,
		ClassName:          block.ClassName,
	}
	if minutes, err := block.DurationMinutes(); err == nil && minutes > 0 {
		resolved.WorkingHours = float64(minutes) / 60
	}
	if subject, err := s.subjects.FindByID(ctx, block.SubjectID); err == nil {
		resolved.SubjectName = subject.Name
	}
	return resolved
}

// InvalidateEmployee drops cached resolutions for an employee.
func (s *ResolverService) InvalidateEmployee(ctx context.Context, employeeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "schedule:effective:"+employeeID+":*"); err != nil {
		s.logger.Warn("invalidate effective schedule cache", zap.String("employee_id", employeeID), zap.Error(err))
	}
}
