package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/repository"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
	"github.com/raka-dev/sekolah-hr-api/pkg/export"
)

type weeklyScheduleStore interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	List(ctx context.Context, filter models.WeeklyScheduleFilter, limit, offset int) ([]models.WeeklySchedule, int, error)
	FindByID(ctx context.Context, id string) (*models.WeeklySchedule, error)
	ListByClass(ctx context.Context, classID string) ([]models.WeeklySchedule, error)
	ListByTeacher(ctx context.Context, employeeID string) ([]models.WeeklySchedule, error)
	Create(ctx context.Context, schedule *models.WeeklySchedule) error
	Update(ctx context.Context, schedule *models.WeeklySchedule) error
	Deactivate(ctx context.Context, id string) error
}

type conflictDetector interface {
	Detect(ctx context.Context, candidate models.WeeklySchedule, excludeID string, ref time.Time) ([]models.ConflictFinding, error)
	Persist(ctx context.Context, tx *sqlx.Tx, scheduleID string, findings []models.ConflictFinding) error
}

type lockChecker interface {
	IsLocked(ctx context.Context, scheduleID string) (bool, error)
}

type changeLogWriter interface {
	Create(ctx context.Context, entry *models.ScheduleChangeLog) error
	ListBySchedule(ctx context.Context, scheduleID string, limit, offset int) ([]models.ScheduleChangeLog, int, error)
}

type timeSlotReader interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
}

type gridCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Actor identifies who performs a mutation, for audit trail entries.
type Actor struct {
	UserID    string
	IPAddress string
}

// WeeklyScheduleService coordinates the base timetable: creation and update
// behind conflict detection, lock gating, audit logging and grid rendering.
type WeeklyScheduleService struct {
	schedules weeklyScheduleStore
	detector  conflictDetector
	locks     lockChecker
	changeLog changeLogWriter
	slots     timeSlotReader
	catalog   conflictCatalogReader
	cache     gridCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger

	// slotMu serialises check-then-insert per (teacher, day, slot) so two
	// concurrent writes cannot both pass detection and double-book.
	slotMu sync.Map
}

// NewWeeklyScheduleService instantiates WeeklyScheduleService.
func NewWeeklyScheduleService(
	schedules weeklyScheduleStore,
	detector conflictDetector,
	locks lockChecker,
	changeLog changeLogWriter,
	slots timeSlotReader,
	catalog conflictCatalogReader,
	cache gridCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *WeeklyScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &WeeklyScheduleService{
		schedules: schedules,
		detector:  detector,
		locks:     locks,
		changeLog: changeLog,
		slots:     slots,
		catalog:   catalog,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

func (s *WeeklyScheduleService) lockSlot(employeeID string, day models.DayOfWeek, timeSlotID string) func() {
	key := employeeID + "|" + string(day) + "|" + timeSlotID
	value, _ := s.slotMu.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// List returns timetable entries with pagination metadata.
func (s *WeeklyScheduleService) List(ctx context.Context, filter models.WeeklyScheduleFilter) ([]models.WeeklySchedule, *models.Pagination, error) {
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
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weekly schedules")
	}
	return schedules, models.NewPagination(page, size, total), nil
}

// Get loads one timetable entry.
func (s *WeeklyScheduleService) Get(ctx context.Context, id string) (*models.WeeklySchedule, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weekly schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly schedule")
	}
	return schedule, nil
}

// Create inserts a timetable entry after running conflict detection. All
// findings are persisted either way; blocking findings reject the write
// unless force is set. Advisory findings never block.
func (s *WeeklyScheduleService) Create(ctx context.Context, req dto.CreateWeeklyScheduleRequest, actor Actor) (*models.WeeklySchedule, []models.ConflictFinding, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	day, err := models.ParseDayOfWeek(req.DayOfWeek)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
	}
	if _, err := s.slots.FindByID(ctx, req.TimeSlotID); err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
	}

	candidate := models.WeeklySchedule{
		AcademicClassID: req.AcademicClassID,
		SubjectID:       req.SubjectID,
		EmployeeID:      req.EmployeeID,
		TimeSlotID:      req.TimeSlotID,
		DayOfWeek:       day,
		Room:            req.Room,
		EffectiveFrom:   models.DateOnly(req.EffectiveFrom),
		EffectiveUntil:  req.EffectiveUntil,
	}
	if actor.UserID != "" {
		candidate.CreatedBy = &actor.UserID
	}

	unlock := s.lockSlot(candidate.EmployeeID, candidate.DayOfWeek, candidate.TimeSlotID)
	defer unlock()

	findings, err := s.detector.Detect(ctx, candidate, "", models.DateOnly(time.Now().UTC()))
	if err != nil {
		return nil, nil, err
	}
	if conflictErr := BlockingError(findings); conflictErr != nil && !req.Force {
		return nil, findings, conflictErr
	}

	if err := s.schedules.Create(ctx, &candidate); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create weekly schedule")
	}

	if err := s.persistFindings(ctx, candidate.ID, findings); err != nil {
		s.logger.Error("persist conflict findings", zap.String("schedule_id", candidate.ID), zap.Error(err))
	}
	s.audit(ctx, candidate.ID, models.ChangeActionCreate, nil, &candidate, "", actor)
	s.invalidateGrid(ctx, candidate.AcademicClassID)

	s.logger.Info("weekly schedule created",
		zap.String("schedule_id", candidate.ID),
		zap.String("employee_id", candidate.EmployeeID),
		zap.Int("findings", len(findings)),
		zap.Bool("forced", req.Force))
	return &candidate, findings, nil
}

// Update mutates a timetable entry behind the same detection and lock gates
// as creation.
func (s *WeeklyScheduleService) Update(ctx context.Context, id string, req dto.UpdateWeeklyScheduleRequest, actor Actor) (*models.WeeklySchedule, []models.ConflictFinding, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureModifiable(ctx, existing); err != nil {
		return nil, nil, err
	}

	before := *existing
	updated := *existing
	if req.SubjectID != "" {
		updated.SubjectID = req.SubjectID
	}
	if req.EmployeeID != "" {
		updated.EmployeeID = req.EmployeeID
	}
	if req.TimeSlotID != "" {
		if _, err := s.slots.FindByID(ctx, req.TimeSlotID); err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		updated.TimeSlotID = req.TimeSlotID
	}
	if req.DayOfWeek != "" {
		day, err := models.ParseDayOfWeek(req.DayOfWeek)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
		}
		updated.DayOfWeek = day
	}
	if req.Room != "" {
		updated.Room = req.Room
	}
	if req.EffectiveUntil != nil {
		updated.EffectiveUntil = req.EffectiveUntil
	}
	if actor.UserID != "" {
		updated.UpdatedBy = &actor.UserID
	}

	unlock := s.lockSlot(updated.EmployeeID, updated.DayOfWeek, updated.TimeSlotID)
	defer unlock()

	findings, err := s.detector.Detect(ctx, updated, id, models.DateOnly(time.Now().UTC()))
	if err != nil {
		return nil, nil, err
	}
	if conflictErr := BlockingError(findings); conflictErr != nil {
		return nil, findings, conflictErr
	}

	if err := s.schedules.Update(ctx, &updated); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update weekly schedule")
	}

	if err := s.persistFindings(ctx, id, findings); err != nil {
		s.logger.Error("persist conflict findings", zap.String("schedule_id", id), zap.Error(err))
	}
	s.audit(ctx, id, models.ChangeActionUpdate, &before, &updated, req.Reason, actor)
	s.invalidateGrid(ctx, updated.AcademicClassID)

	return &updated, findings, nil
}

// Delete retires a timetable entry. Locked entries reject deletion.
func (s *WeeklyScheduleService) Delete(ctx context.Context, id, reason string, actor Actor) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureModifiable(ctx, existing); err != nil {
		return err
	}

	if err := s.schedules.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete weekly schedule")
	}
	s.audit(ctx, id, models.ChangeActionDelete, existing, nil, reason, actor)
	s.invalidateGrid(ctx, existing.AcademicClassID)
	return nil
}

func (s *WeeklyScheduleService) ensureModifiable(ctx context.Context, schedule *models.WeeklySchedule) error {
	if !schedule.CanBeModified() {
		return appErrors.Clone(appErrors.ErrLocked, "schedule is locked or inactive")
	}
	locked, err := s.locks.IsLocked(ctx, schedule.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule lock")
	}
	if locked {
		return appErrors.ErrLocked
	}
	return nil
}

func (s *WeeklyScheduleService) persistFindings(ctx context.Context, scheduleID string, findings []models.ConflictFinding) error {
	tx, err := s.schedules.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := s.detector.Persist(ctx, tx, scheduleID, findings); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *WeeklyScheduleService) audit(ctx context.Context, scheduleID string, action models.ChangeAction, before, after *models.WeeklySchedule, reason string, actor Actor) {
	entry := &models.ScheduleChangeLog{
		ScheduleID: scheduleID,
		Action:     action,
		IPAddress:  actor.IPAddress,
	}
	if before != nil {
		if raw, err := json.Marshal(before); err == nil {
			entry.OldData = types.JSONText(raw)
		}
	}
	if after != nil {
		if raw, err := json.Marshal(after); err == nil {
			entry.NewData = types.JSONText(raw)
		}
	}
	if reason != "" {
		entry.Reason = &reason
	}
	if actor.UserID != "" {
		entry.UserID = &actor.UserID
	}
	if err := s.changeLog.Create(ctx, entry); err != nil {
		s.logger.Error("write change log", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
}

// ChangeHistory returns the audit trail for a schedule.
func (s *WeeklyScheduleService) ChangeHistory(ctx context.Context, scheduleID string, page, pageSize int) ([]models.ScheduleChangeLog, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	entries, total, err := s.changeLog.ListBySchedule(ctx, scheduleID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list change history")
	}
	return entries, models.NewPagination(page, pageSize, total), nil
}

// ClassGrid assembles the day × slot matrix for one class, cached briefly.
func (s *WeeklyScheduleService) ClassGrid(ctx context.Context, classID string) (*models.ScheduleGrid, error) {
	cacheKey := repository.ClassGridCacheKey(classID)
	if s.cache != nil {
		var cached models.ScheduleGrid
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	slots, err := s.slots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	schedules, err := s.schedules.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedules")
	}

	bySlot := make(map[models.DayOfWeek]map[string]*models.WeeklySchedule)
	for i := range schedules {
		sch := &schedules[i]
		if bySlot[sch.DayOfWeek] == nil {
			bySlot[sch.DayOfWeek] = make(map[string]*models.WeeklySchedule)
		}
		bySlot[sch.DayOfWeek][sch.TimeSlotID] = sch
	}

	grid := &models.ScheduleGrid{
		AcademicClassID: classID,
		ReferenceDate:   models.DateOnly(time.Now()),
		Days:            make(map[models.DayOfWeek]models.ScheduleGridDay, len(models.SchoolDays)),
	}
	for _, day := range models.SchoolDays {
		gridDay := models.ScheduleGridDay{
			DayName: day.Label(),
			Slots:   make([]models.ScheduleGridCell, 0, len(slots)),
		}
		for _, slot := range slots {
			cell := models.ScheduleGridCell{TimeSlot: slot, Status: "empty"}
			if sch, ok := bySlot[day][slot.ID]; ok {
				cell.Schedule = sch
				cell.Status = "filled"
				cell.Display = s.gridDisplay(ctx, sch, slot)
			}
			gridDay.Slots = append(gridDay.Slots, cell)
		}
		grid.Days[day] = gridDay
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, grid, s.cacheTTL); err != nil {
			s.logger.Warn("cache class grid", zap.String("class_id", classID), zap.Error(err))
		}
	}
	return grid, nil
}

func (s *WeeklyScheduleService) gridDisplay(ctx context.Context, sch *models.WeeklySchedule, slot models.TimeSlot) *models.GridDisplay {
	display := &models.GridDisplay{
		Room:     sch.Room,
		Time:     slot.StartTime + " - " + slot.EndTime,
		IsLocked: sch.IsLocked,
	}
	if subject, err := s.catalog.FindByID(ctx, sch.SubjectID); err == nil {
		display.SubjectCode = subject.Code
		display.SubjectName = subject.Name
		display.Color = subject.Color
	}
	return display
}

func (s *WeeklyScheduleService) invalidateGrid(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.ClassGridCacheKey(classID)); err != nil {
		s.logger.Warn("invalidate grid cache", zap.String("class_id", classID), zap.Error(err))
	}
}

// ExportGridCSV renders a class timetable as CSV.
func (s *WeeklyScheduleService) ExportGridCSV(ctx context.Context, classID string) ([]byte, error) {
	dataset, err := s.gridDataset(ctx, classID)
	if err != nil {
		return nil, err
	}
	payload, err := export.NewCSVExporter().Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV timetable")
	}
	return payload, nil
}

// ExportGridPDF renders a class timetable as a landscape PDF.
func (s *WeeklyScheduleService) ExportGridPDF(ctx context.Context, classID string) ([]byte, error) {
	dataset, err := s.gridDataset(ctx, classID)
	if err != nil {
		return nil, err
	}
	payload, err := export.NewPDFExporter().Render(*dataset, fmt.Sprintf("Class Timetable %s", classID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF timetable")
	}
	return payload, nil
}

func (s *WeeklyScheduleService) gridDataset(ctx context.Context, classID string) (*export.Dataset, error) {
	grid, err := s.ClassGrid(ctx, classID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Slot"}
	for _, day := range models.SchoolDays {
		headers = append(headers, day.Label())
	}

	slots, err := s.slots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}

	rows := make([][]string, 0, len(slots))
	for slotIdx, slot := range slots {
		row := []string{slot.Name}
		for _, day := range models.SchoolDays {
			cellText := ""
			gridDay := grid.Days[day]
			if slotIdx < len(gridDay.Slots) {
				cell := gridDay.Slots[slotIdx]
				if cell.Display != nil {
					cellText = cell.Display.SubjectName
					if cell.Display.Room != "" {
						cellText += " (" + cell.Display.Room + ")"
					}
				}
			}
			row = append(row, cellText)
		}
		rows = append(rows, row)
	}
	return &export.Dataset{Headers: headers, Rows: rows}, nil
}
