package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

type monthlyScheduleStore interface {
	Create(ctx context.Context, schedule *models.MonthlySchedule) error
	FindByID(ctx context.Context, id string) (*models.MonthlySchedule, error)
	FindByLocationMonth(ctx context.Context, locationID string, month, year int) (*models.MonthlySchedule, error)
	List(ctx context.Context, locationID string, limit, offset int) ([]models.MonthlySchedule, int, error)
	Deactivate(ctx context.Context, id string) error
}

type employeeScheduleStore interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, row *models.EmployeeMonthlySchedule) error
	ExistingDates(ctx context.Context, monthlyScheduleID, employeeID string) (map[string]bool, error)
	ListByMonthlySchedule(ctx context.Context, monthlyScheduleID string) ([]models.EmployeeMonthlySchedule, error)
	List(ctx context.Context, filter models.EmployeeScheduleFilter, limit, offset int) ([]models.EmployeeMonthlySchedule, int, error)
}

type employeeDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type attendanceDispatcher interface {
	EnqueuePlaceholders(ctx context.Context, rows []models.EmployeeMonthlySchedule) error
}

// MonthlyScheduleService manages the monthly generation jobs and their
// expansion into per-employee, per-date schedule rows.
type MonthlyScheduleService struct {
	schedules  monthlyScheduleStore
	rows       employeeScheduleStore
	employees  employeeDirectory
	dispatcher attendanceDispatcher
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewMonthlyScheduleService instantiates MonthlyScheduleService.
func NewMonthlyScheduleService(
	schedules monthlyScheduleStore,
	rows employeeScheduleStore,
	employees employeeDirectory,
	dispatcher attendanceDispatcher,
	validate *validator.Validate,
	logger *zap.Logger,
) *MonthlyScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthlyScheduleService{
		schedules:  schedules,
		rows:       rows,
		employees:  employees,
		dispatcher: dispatcher,
		validator:  validate,
		logger:     logger,
	}
}

// Create registers a monthly generation job. The default times must form a
// valid shift and the date range must fall inside the named month.
func (s *MonthlyScheduleService) Create(ctx context.Context, req dto.CreateMonthlyScheduleRequest, actor Actor) (*models.MonthlySchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid monthly schedule payload")
	}

	minutes, err := models.ClockDiffMinutes(req.DefaultStartTime, req.DefaultEndTime)
	if err != nil || minutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "default end time must be after start time")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}
	if int(req.StartDate.Month()) != req.Month || req.StartDate.Year() != req.Year {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must fall in the schedule month")
	}

	if existing, err := s.schedules.FindByLocationMonth(ctx, req.LocationID, req.Month, req.Year); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("location already has an active schedule for %d-%02d", req.Year, req.Month))
	}

	workDays := req.WorkDays
	if len(workDays) == 0 {
		workDays = models.DefaultWorkDays
	}
	for _, day := range workDays {
		if _, err := models.ParseDayOfWeek(day); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work day")
		}
	}

	schedule := &models.MonthlySchedule{
		Name:             req.Name,
		Month:            req.Month,
		Year:             req.Year,
		StartDate:        models.DateOnly(req.StartDate),
		EndDate:          models.DateOnly(req.EndDate),
		DefaultStartTime: req.DefaultStartTime,
		DefaultEndTime:   req.DefaultEndTime,
		WorkDays:         workDays,
		LocationID:       req.LocationID,
	}
	if req.Description != "" {
		schedule.Description = &req.Description
	}
	if actor.UserID != "" {
		schedule.CreatedBy = &actor.UserID
	}

	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create monthly schedule")
	}

	s.logger.Info("monthly schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.Int("month", schedule.Month),
		zap.Int("year", schedule.Year))
	return schedule, nil
}

// Get loads a monthly schedule.
func (s *MonthlyScheduleService) Get(ctx context.Context, id string) (*models.MonthlySchedule, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "monthly schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load monthly schedule")
	}
	return schedule, nil
}

// List returns a location's monthly schedules with pagination metadata.
func (s *MonthlyScheduleService) List(ctx context.Context, locationID string, page, pageSize int) ([]models.MonthlySchedule, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	schedules, total, err := s.schedules.List(ctx, locationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list monthly schedules")
	}
	return schedules, models.NewPagination(page, pageSize, total), nil
}

// AssignEmployee expands the monthly schedule into one row per working day
// for the employee. Generation is idempotent: dates that already carry a row
// are skipped, never duplicated and never reset, so re-running after an
// override preserves the override.
func (s *MonthlyScheduleService) AssignEmployee(ctx context.Context, monthlyScheduleID string, req dto.AssignEmployeeRequest, actor Actor) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	schedule, err := s.Get(ctx, monthlyScheduleID)
	if err != nil {
		return 0, err
	}
	employee, err := s.employees.FindByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if !employee.IsActive {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "employee is inactive")
	}

	created, err := s.generateRows(ctx, schedule, employee, actor)
	if err != nil {
		return 0, err
	}

	s.logger.Info("employee assigned to monthly schedule",
		zap.String("schedule_id", monthlyScheduleID),
		zap.String("employee_id", employee.ID),
		zap.Int("rows_created", created))
	return created, nil
}

// generateRows walks every date in range and inserts rows for configured
// work days that have none yet. scheduled_hours is derived from the default
// shift; weekend flags are stamped from the calendar.
func (s *MonthlyScheduleService) generateRows(ctx context.Context, schedule *models.MonthlySchedule, employee *models.Employee, actor Actor) (int, error) {
	existing, err := s.rows.ExistingDates(ctx, schedule.ID, employee.ID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing schedule dates")
	}

	hours, err := schedule.WorkingHours()
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid default shift")
	}

	tx, err := s.rows.BeginTx(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}

	created := 0
	start := models.DateOnly(schedule.StartDate)
	end := models.DateOnly(schedule.EndDate)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if !schedule.IsWorkDay(date) {
			continue
		}
		if existing[date.Format("2006-01-02")] {
			continue
		}

		row := &models.EmployeeMonthlySchedule{
			MonthlyScheduleID: schedule.ID,
			EmployeeID:        employee.ID,
			EffectiveDate:     date,
			StartTime:         schedule.DefaultStartTime,
			EndTime:           schedule.DefaultEndTime,
			LocationID:        schedule.LocationID,
			Status:            models.ScheduleStatusActive,
			ScheduledHours:    hours,
			IsWeekend:         models.IsWeekend(date),
		}
		if actor.UserID != "" {
			row.AssignedBy = &actor.UserID
		}
		if err := s.rows.CreateWithTx(ctx, tx, row); err != nil {
			tx.Rollback()
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to create schedule row for %s", date.Format("2006-01-02")))
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule rows")
	}
	return created, nil
}

// BulkAssign assigns many employees in one call. Per-item failures are
// collected in the result and never abort sibling assignments.
func (s *MonthlyScheduleService) BulkAssign(ctx context.Context, monthlyScheduleID string, req dto.BulkAssignRequest, actor Actor) (*models.BulkAssignResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk assignment payload")
	}
	if _, err := s.Get(ctx, monthlyScheduleID); err != nil {
		return nil, err
	}

	result := &models.BulkAssignResult{}
	for _, employeeID := range req.EmployeeIDs {
		created, err := s.AssignEmployee(ctx, monthlyScheduleID, dto.AssignEmployeeRequest{EmployeeID: employeeID}, actor)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", employeeID, err))
			continue
		}
		result.Success++
		result.Created += created
	}

	s.logger.Info("bulk assignment finished",
		zap.String("schedule_id", monthlyScheduleID),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
		zap.Int("created", result.Created))
	return result, nil
}

// Finalize fans out attendance placeholders for every row of the schedule.
func (s *MonthlyScheduleService) Finalize(ctx context.Context, monthlyScheduleID string) (int, error) {
	if _, err := s.Get(ctx, monthlyScheduleID); err != nil {
		return 0, err
	}

	rows, err := s.rows.ListByMonthlySchedule(ctx, monthlyScheduleID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule rows")
	}
	if s.dispatcher == nil {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "attendance dispatcher is not configured")
	}
	if err := s.dispatcher.EnqueuePlaceholders(ctx, rows); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue attendance placeholders")
	}

	s.logger.Info("monthly schedule finalized",
		zap.String("schedule_id", monthlyScheduleID),
		zap.Int("rows", len(rows)))
	return len(rows), nil
}

// ListRows returns generated employee schedule rows for a filter.
func (s *MonthlyScheduleService) ListRows(ctx context.Context, filter models.EmployeeScheduleFilter) ([]models.EmployeeMonthlySchedule, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	rows, total, err := s.rows.List(ctx, filter, size, (page-1)*size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employee schedules")
	}
	return rows, models.NewPagination(page, size, total), nil
}

// Deactivate soft-deletes a monthly schedule.
func (s *MonthlyScheduleService) Deactivate(ctx context.Context, id string) error {
	if err := s.schedules.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "monthly schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate monthly schedule")
	}
	return nil
}
