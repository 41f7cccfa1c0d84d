package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/repository"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

type teachingScheduleStore interface {
	Create(ctx context.Context, schedule *models.TeachingSchedule) error
	FindByID(ctx context.Context, id string) (*models.TeachingSchedule, error)
	List(ctx context.Context, filter models.TeachingScheduleFilter, limit, offset int) ([]models.TeachingSchedule, int, error)
	ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.TeachingSchedule, error)
	ListByTeacherDay(ctx context.Context, teacherID string, day models.DayOfWeek) ([]models.TeachingSchedule, error)
	Update(ctx context.Context, schedule *models.TeachingSchedule) error
	SetSubstitution(ctx context.Context, schedule *models.TeachingSchedule) error
	Deactivate(ctx context.Context, id string) error
}

type teachingRowStore interface {
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.EmployeeMonthlySchedule, error)
}

type teachingDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	Capabilities(ctx context.Context, employeeID string) (models.EmployeeCapabilities, error)
}

type teachingOverrideApplier interface {
	ApplyTeachingOverride(ctx context.Context, row *models.EmployeeMonthlySchedule, teaching models.TeachingSchedule, employee models.Employee, actor Actor) (bool, error)
}

type subjectNameReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// teachingOverloadHours is the weekly teaching load above which a teacher
// counts as overloaded.
const teachingOverloadHours = 40.0

// TeachingScheduleService manages recurring teaching blocks, their
// application onto honorary teacher monthly rows, substitute assignment and
// workload summaries.
type TeachingScheduleService struct {
	schedules teachingScheduleStore
	rows      teachingRowStore
	employees teachingDirectory
	overrides teachingOverrideApplier
	subjects  subjectNameReader
	cache     gridCache
	horizon   time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeachingScheduleService instantiates TeachingScheduleService. horizon
// caps how far ahead open-ended teaching overrides are applied.
func NewTeachingScheduleService(
	schedules teachingScheduleStore,
	rows teachingRowStore,
	employees teachingDirectory,
	overrides teachingOverrideApplier,
	subjects subjectNameReader,
	cache gridCache,
	horizon time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *TeachingScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if horizon <= 0 {
		horizon = 180 * 24 * time.Hour
	}
	return &TeachingScheduleService{
		schedules: schedules,
		rows:      rows,
		employees: employees,
		overrides: overrides,
		subjects:  subjects,
		cache:     cache,
		horizon:   horizon,
		validator: validate,
		logger:    logger,
	}
}

// Create registers a teaching block. The teacher must exist and carry the
// teaching capability; the block must be a valid clock range.
func (s *TeachingScheduleService) Create(ctx context.Context, req dto.CreateTeachingScheduleRequest, actor Actor) (*models.TeachingSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teaching schedule payload")
	}
	day, err := models.ParseDayOfWeek(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
	}
	minutes, err := models.ClockDiffMinutes(req.TeachingStartTime, req.TeachingEndTime)
	if err != nil || minutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teaching end time must be after start time")
	}

	teacher, err := s.employees.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	caps, err := s.employees.Capabilities(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher capabilities")
	}
	if !caps.CanTeach {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "employee is not registered as a teacher")
	}

	schedule := &models.TeachingSchedule{
		TeacherID:            req.TeacherID,
		SubjectID:            req.SubjectID,
		MonthlyScheduleID:    req.MonthlyScheduleID,
		DayOfWeek:            day,
		TeachingStartTime:    req.TeachingStartTime,
		TeachingEndTime:      req.TeachingEndTime,
		EffectiveFrom:        models.DateOnly(req.EffectiveFrom),
		EffectiveUntil:       req.EffectiveUntil,
		ClassName:            req.ClassName,
		Room:                 req.Room,
		StudentCount:         req.StudentCount,
		OverrideAttendance:   true,
		StrictTiming:         true,
		LateThresholdMinutes: req.LateThresholdMinutes,
	}
	if req.OverrideAttendance != nil {
		schedule.OverrideAttendance = *req.OverrideAttendance
	}
	if req.StrictTiming != nil {
		schedule.StrictTiming = *req.StrictTiming
	}
	if actor.UserID != "" {
		schedule.CreatedBy = &actor.UserID
	}

	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teaching schedule")
	}

	s.invalidateWorkload(ctx, schedule.TeacherID)
	s.logger.Info("teaching schedule created",
		zap.String("teaching_schedule_id", schedule.ID),
		zap.String("teacher_id", schedule.TeacherID),
		zap.String("day", string(schedule.DayOfWeek)))
	return schedule, nil
}

// Get loads a teaching schedule.
func (s *TeachingScheduleService) Get(ctx context.Context, id string) (*models.TeachingSchedule, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching schedule")
	}
	return schedule, nil
}

// List returns teaching schedules with pagination metadata.
func (s *TeachingScheduleService) List(ctx context.Context, filter models.TeachingScheduleFilter) ([]models.TeachingSchedule, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	schedules, total, err := s.schedules.List(ctx, filter, size, (page-1)*size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching schedules")
	}
	return schedules, models.NewPagination(page, size, total), nil
}

// Update mutates a teaching block. When the block's times changed the
// override is re-applied across the effective range.
func (s *TeachingScheduleService) Update(ctx context.Context, id string, req dto.UpdateTeachingScheduleRequest, actor Actor) (*models.TeachingSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teaching schedule payload")
	}

	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	timesChanged := false
	if req.TeachingStartTime != "" && req.TeachingStartTime != schedule.TeachingStartTime {
		schedule.TeachingStartTime = req.TeachingStartTime
		timesChanged = true
	}
	if req.TeachingEndTime != "" && req.TeachingEndTime != schedule.TeachingEndTime {
		schedule.TeachingEndTime = req.TeachingEndTime
		timesChanged = true
	}
	if minutes, err := models.ClockDiffMinutes(schedule.TeachingStartTime, schedule.TeachingEndTime); err != nil || minutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teaching end time must be after start time")
	}
	if req.EffectiveUntil != nil {
		schedule.EffectiveUntil = req.EffectiveUntil
	}
	if req.ClassName != "" {
		schedule.ClassName = req.ClassName
	}
	if req.Room != "" {
		schedule.Room = req.Room
	}
	if req.OverrideAttendance != nil && *req.OverrideAttendance != schedule.OverrideAttendance {
		schedule.OverrideAttendance = *req.OverrideAttendance
		timesChanged = true
	}
	if actor.UserID != "" {
		schedule.UpdatedBy = &actor.UserID
	}

	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teaching schedule")
	}

	if timesChanged && schedule.OverrideAttendance {
		if _, err := s.ApplyToEmployeeSchedules(ctx, schedule.ID, actor); err != nil {
			s.logger.Error("re-apply teaching override", zap.String("teaching_schedule_id", schedule.ID), zap.Error(err))
		}
	}
	s.invalidateWorkload(ctx, schedule.TeacherID)
	return schedule, nil
}

// ApplyToEmployeeSchedules walks the teacher's generated monthly rows inside
// the effective window and applies the teaching override to the qualifying
// ones. Returns the number of rows changed.
func (s *TeachingScheduleService) ApplyToEmployeeSchedules(ctx context.Context, id string, actor Actor) (int, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if !schedule.IsActive || !schedule.OverrideAttendance {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "teaching schedule does not override attendance")
	}

	teacher, err := s.employees.FindByID(ctx, schedule.TeacherID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.IsHonoraryTeacher() {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "teaching overrides apply to honorary teachers only")
	}

	from := models.DateOnly(schedule.EffectiveFrom)
	to := models.DateOnly(time.Now().Add(s.horizon))
	if schedule.EffectiveUntil != nil && models.DateOnly(*schedule.EffectiveUntil).Before(to) {
		to = models.DateOnly(*schedule.EffectiveUntil)
	}

	rows, err := s.rows.ListByEmployeeRange(ctx, schedule.TeacherID, from, to)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher schedule rows")
	}

	applied := 0
	for i := range rows {
		changed, err := s.overrides.ApplyTeachingOverride(ctx, &rows[i], *schedule, *teacher, actor)
		if err != nil {
			s.logger.Error("apply teaching override",
				zap.String("row_id", rows[i].ID),
				zap.String("teaching_schedule_id", schedule.ID),
				zap.Error(err))
			continue
		}
		if changed {
			applied++
		}
	}

	s.logger.Info("teaching schedule applied",
		zap.String("teaching_schedule_id", schedule.ID),
		zap.Int("rows", applied))
	return applied, nil
}

// AssignSubstitute places a substitute teacher on a teaching block for a
// date window. The substitute must carry the substitute capability and must
// be free: any clock overlap with their existing blocks on that weekday
// rejects the assignment.
func (s *TeachingScheduleService) AssignSubstitute(ctx context.Context, id string, req dto.AssignSubstituteRequest, actor Actor) (*models.TeachingSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid substitute payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "substitution end date must not precede start date")
	}

	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SubstituteID == schedule.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher cannot substitute for themselves")
	}

	substitute, err := s.employees.FindByID(ctx, req.SubstituteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "substitute teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute")
	}
	if !substitute.IsActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "substitute teacher is inactive")
	}
	caps, err := s.employees.Capabilities(ctx, substitute.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute capabilities")
	}
	if !caps.CanSubstitute {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "employee is not registered as a substitute teacher")
	}

	available, err := s.substituteAvailable(ctx, substitute.ID, *schedule)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, appErrors.Clone(appErrors.ErrConflict, "substitute already teaches at that time")
	}

	start := models.DateOnly(req.StartDate)
	end := models.DateOnly(req.EndDate)
	schedule.SubstituteTeacherID = &substitute.ID
	schedule.SubstitutionStartDate = &start
	schedule.SubstitutionEndDate = &end
	schedule.SubstitutionReason = &req.Reason
	schedule.Status = models.TeachingStatusSubstituted
	if actor.UserID != "" {
		schedule.UpdatedBy = &actor.UserID
	}

	if err := s.schedules.SetSubstitution(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign substitute")
	}

	s.invalidateWorkload(ctx, schedule.TeacherID)
	s.invalidateWorkload(ctx, substitute.ID)
	s.logger.Info("substitute assigned",
		zap.String("teaching_schedule_id", schedule.ID),
		zap.String("substitute_id", substitute.ID))
	return schedule, nil
}

// substituteAvailable checks the candidate's existing blocks on the same
// weekday for clock overlap.
func (s *TeachingScheduleService) substituteAvailable(ctx context.Context, substituteID string, target models.TeachingSchedule) (bool, error) {
	existing, err := s.schedules.ListByTeacherDay(ctx, substituteID, target.DayOfWeek)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute schedules")
	}
	for _, block := range existing {
		if block.ID == target.ID {
			continue
		}
		overlap, err := models.ClockRangesOverlap(
			target.TeachingStartTime, target.TeachingEndTime,
			block.TeachingStartTime, block.TeachingEndTime)
		if err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compare teaching blocks")
		}
		if overlap {
			return false, nil
		}
	}
	return true, nil
}

// RemoveSubstitute clears the substitution window from a teaching block.
func (s *TeachingScheduleService) RemoveSubstitute(ctx context.Context, id string, actor Actor) (*models.TeachingSchedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule.SubstituteTeacherID == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "teaching schedule has no substitute")
	}

	previousSubstitute := *schedule.SubstituteTeacherID
	schedule.SubstituteTeacherID = nil
	schedule.SubstitutionStartDate = nil
	schedule.SubstitutionEndDate = nil
	schedule.SubstitutionReason = nil
	schedule.Status = models.TeachingStatusScheduled
	if actor.UserID != "" {
		schedule.UpdatedBy = &actor.UserID
	}

	if err := s.schedules.SetSubstitution(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove substitute")
	}
	s.invalidateWorkload(ctx, previousSubstitute)
	return schedule, nil
}

// Workload summarises a teacher's active weekly teaching load, cached
// briefly. Blocks currently substituted away still count toward the original
// teacher.
func (s *TeachingScheduleService) Workload(ctx context.Context, teacherID string) (*models.TeacherWorkload, error) {
	cacheKey := repository.TeacherWorkloadCacheKey(teacherID)
	if s.cache != nil {
		var cached models.TeacherWorkload
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	schedules, err := s.schedules.ListActiveByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching schedules")
	}

	workload := &models.TeacherWorkload{TeacherID: teacherID}
	perSubject := make(map[string]*models.WorkloadSubjectBreakdown)
	for _, schedule := range schedules {
		if schedule.TeacherID != teacherID {
			continue
		}
		minutes, err := schedule.DurationMinutes()
		if err != nil {
			continue
		}
		hours := float64(minutes) / 60
		workload.TotalHoursPerWeek += hours
		workload.TotalClasses++

		breakdown, ok := perSubject[schedule.SubjectID]
		if !ok {
			breakdown = &models.WorkloadSubjectBreakdown{SubjectID: schedule.SubjectID}
			if subject, err := s.subjects.FindByID(ctx, schedule.SubjectID); err == nil {
				breakdown.SubjectName = subject.Name
			}
			perSubject[schedule.SubjectID] = breakdown
		}
		breakdown.HoursPerWeek += hours
		breakdown.ClassesCount++
		if schedule.ClassName != "" {
			breakdown.Classes = append(breakdown.Classes, schedule.ClassName)
		}
	}
	for _, breakdown := range perSubject {
		workload.SubjectBreakdown = append(workload.SubjectBreakdown, *breakdown)
	}
	workload.WorkloadPercentage = workload.TotalHoursPerWeek / teachingOverloadHours * 100
	workload.IsOverloaded = workload.TotalHoursPerWeek > teachingOverloadHours

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, workload, 5*time.Minute); err != nil {
			s.logger.Warn("cache teacher workload", zap.String("teacher_id", teacherID), zap.Error(err))
		}
	}
	return workload, nil
}

// Deactivate cancels a teaching block.
func (s *TeachingScheduleService) Deactivate(ctx context.Context, id string, actor Actor) error {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.schedules.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teaching schedule")
	}
	s.invalidateWorkload(ctx, schedule.TeacherID)
	return nil
}

func (s *TeachingScheduleService) invalidateWorkload(ctx context.Context, teacherID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.TeacherWorkloadCacheKey(teacherID)); err != nil {
		s.logger.Warn("invalidate workload cache", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}
