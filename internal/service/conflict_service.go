package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

type conflictScheduleReader interface {
	ListByTeacherDaySlot(ctx context.Context, employeeID string, day models.DayOfWeek, timeSlotID, excludeID string, ref time.Time) ([]models.WeeklySchedule, error)
	ListByClassDaySlot(ctx context.Context, classID string, day models.DayOfWeek, timeSlotID, excludeID string, ref time.Time) ([]models.WeeklySchedule, error)
	ListByRoomDaySlot(ctx context.Context, room string, day models.DayOfWeek, timeSlotID, excludeID string, ref time.Time) ([]models.WeeklySchedule, error)
	CountByClassSubject(ctx context.Context, classID, subjectID, excludeID string, ref time.Time) (int, error)
	ListByClassSubjectDay(ctx context.Context, classID, subjectID string, day models.DayOfWeek, excludeID string, ref time.Time) ([]models.WeeklySchedule, error)
}

type conflictCatalogReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindClassByID(ctx context.Context, id string) (*models.AcademicClass, error)
}

type conflictStore interface {
	CreateBatch(ctx context.Context, tx *sqlx.Tx, conflicts []models.ScheduleConflict) error
	DeleteUnresolvedBySchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleConflict, error)
	ListUnresolved(ctx context.Context, limit, offset int) ([]models.ScheduleConflict, int, error)
	Resolve(ctx context.Context, id, resolvedBy, notes string) error
}

// ConflictService runs the timetable conflict checks. Detection is pure
// reads: it never mutates schedules, and every check runs even when an
// earlier one already found a blocking conflict so callers always see the
// complete picture.
type ConflictService struct {
	schedules conflictScheduleReader
	catalog   conflictCatalogReader
	conflicts conflictStore
	logger    *zap.Logger
}

// NewConflictService instantiates ConflictService.
func NewConflictService(schedules conflictScheduleReader, catalog conflictCatalogReader, conflicts conflictStore, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{schedules: schedules, catalog: catalog, conflicts: conflicts, logger: logger}
}

// Detect evaluates a candidate entry against the timetable rows active and
// effective on ref and returns every finding. A zero ref means today. Passing
// the candidate's own id in excludeID keeps update checks from flagging the
// row against itself; detection is symmetric, so evaluating either side of a
// clashing pair reports the same conflict.
func (s *ConflictService) Detect(ctx context.Context, candidate models.WeeklySchedule, excludeID string, ref time.Time) ([]models.ConflictFinding, error) {
	if ref.IsZero() {
		ref = models.DateOnly(time.Now().UTC())
	}

	var findings []models.ConflictFinding

	teacherClashes, err := s.schedules.ListByTeacherDaySlot(ctx, candidate.EmployeeID, candidate.DayOfWeek, candidate.TimeSlotID, excludeID, ref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher availability")
	}
	for i := range teacherClashes {
		clash := teacherClashes[i]
		findings = append(findings, models.ConflictFinding{
			Type:                  models.ConflictTeacherDoubleBooking,
			Severity:              models.SeverityCritical,
			ConflictingScheduleID: &clash.ID,
			Description: fmt.Sprintf("teacher is already assigned to another class on %s at the same slot (schedule %s)",
				candidate.DayOfWeek, clash.ID),
		})
	}

	classClashes, err := s.schedules.ListByClassDaySlot(ctx, candidate.AcademicClassID, candidate.DayOfWeek, candidate.TimeSlotID, excludeID, ref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class availability")
	}
	for i := range classClashes {
		clash := classClashes[i]
		findings = append(findings, models.ConflictFinding{
			Type:                  models.ConflictClassDoubleBooking,
			Severity:              models.SeverityCritical,
			ConflictingScheduleID: &clash.ID,
			Description: fmt.Sprintf("class already has a lesson on %s at the same slot (schedule %s)",
				candidate.DayOfWeek, clash.ID),
		})
	}

	if candidate.Room != "" {
		roomClashes, err := s.schedules.ListByRoomDaySlot(ctx, candidate.Room, candidate.DayOfWeek, candidate.TimeSlotID, excludeID, ref)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room availability")
		}
		for i := range roomClashes {
			clash := roomClashes[i]
			findings = append(findings, models.ConflictFinding{
				Type:                  models.ConflictRoomDoubleBooking,
				Severity:              models.SeverityHigh,
				ConflictingScheduleID: &clash.ID,
				Description: fmt.Sprintf("room %s is occupied on %s at the same slot (schedule %s)",
					candidate.Room, candidate.DayOfWeek, clash.ID),
			})
		}
	}

	frequencyFindings, err := s.checkSubjectFrequency(ctx, candidate, excludeID, ref)
	if err != nil {
		return nil, err
	}
	findings = append(findings, frequencyFindings...)

	sameDayFindings, err := s.checkSubjectSameDay(ctx, candidate, excludeID, ref)
	if err != nil {
		return nil, err
	}
	findings = append(findings, sameDayFindings...)

	return findings, nil
}

// checkSubjectFrequency flags a class exceeding a subject's weekly meeting
// ceiling. Advisory only.
func (s *ConflictService) checkSubjectFrequency(ctx context.Context, candidate models.WeeklySchedule, excludeID string, ref time.Time) ([]models.ConflictFinding, error) {
	subject, err := s.catalog.FindByID(ctx, candidate.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "subject not found")
	}
	if subject.MaxMeetingsPerWeek <= 0 {
		return nil, nil
	}

	existing, err := s.schedules.CountByClassSubject(ctx, candidate.AcademicClassID, candidate.SubjectID, excludeID, ref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subject meetings")
	}
	if existing+1 <= subject.MaxMeetingsPerWeek {
		return nil, nil
	}

	return []models.ConflictFinding{{
		Type:     models.ConflictSubjectFrequencyExceeded,
		Severity: models.SeverityMedium,
		Description: fmt.Sprintf("subject %s would meet %d times per week, above its limit of %d",
			subject.Name, existing+1, subject.MaxMeetingsPerWeek),
	}}, nil
}

// checkSubjectSameDay flags a class getting the same subject twice on one
// day. Advisory only.
func (s *ConflictService) checkSubjectSameDay(ctx context.Context, candidate models.WeeklySchedule, excludeID string, ref time.Time) ([]models.ConflictFinding, error) {
	sameDay, err := s.schedules.ListByClassSubjectDay(ctx, candidate.AcademicClassID, candidate.SubjectID, candidate.DayOfWeek, excludeID, ref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check same-day meetings")
	}
	if len(sameDay) == 0 {
		return nil, nil
	}

	first := sameDay[0]
	return []models.ConflictFinding{{
		Type:                  models.ConflictSubjectSameDayDuplication,
		Severity:              models.SeverityMedium,
		ConflictingScheduleID: &first.ID,
		Description: fmt.Sprintf("subject is already scheduled for this class on %s (schedule %s)",
			candidate.DayOfWeek, first.ID),
	}}, nil
}

// BlockingError converts findings into a rejection error when any blocking
// finding is present. Advisory findings alone return nil.
func BlockingError(findings []models.ConflictFinding) *models.ScheduleConflictError {
	var blocking int
	for _, f := range findings {
		if f.Type.Blocking() {
			blocking++
		}
	}
	if blocking == 0 {
		return nil
	}
	return &models.ScheduleConflictError{
		Message:  fmt.Sprintf("schedule has %d blocking conflict(s)", blocking),
		Findings: findings,
	}
}

// Persist records findings against a schedule inside the caller's
// transaction, replacing any unresolved findings from a previous evaluation.
func (s *ConflictService) Persist(ctx context.Context, tx *sqlx.Tx, scheduleID string, findings []models.ConflictFinding) error {
	if err := s.conflicts.DeleteUnresolvedBySchedule(ctx, tx, scheduleID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear stale conflicts")
	}
	if len(findings) == 0 {
		return nil
	}

	records := make([]models.ScheduleConflict, 0, len(findings))
	for _, f := range findings {
		records = append(records, models.ScheduleConflict{
			ScheduleID1:  scheduleID,
			ScheduleID2:  f.ConflictingScheduleID,
			ConflictType: f.Type,
			Severity:     f.Severity,
			Description:  f.Description,
		})
	}
	if err := s.conflicts.CreateBatch(ctx, tx, records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist conflicts")
	}
	return nil
}

// ListBySchedule returns conflicts recorded against a schedule.
func (s *ConflictService) ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleConflict, error) {
	conflicts, err := s.conflicts.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conflicts")
	}
	return conflicts, nil
}

// ListUnresolved returns open conflicts with pagination metadata.
func (s *ConflictService) ListUnresolved(ctx context.Context, page, pageSize int) ([]models.ScheduleConflict, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	conflicts, total, err := s.conflicts.ListUnresolved(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unresolved conflicts")
	}
	return conflicts, models.NewPagination(page, pageSize, total), nil
}

// Resolve marks a conflict as handled.
func (s *ConflictService) Resolve(ctx context.Context, id, resolvedBy, notes string) error {
	if err := s.conflicts.Resolve(ctx, id, resolvedBy, notes); err != nil {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "conflict not found or already resolved")
	}
	s.logger.Info("conflict resolved", zap.String("conflict_id", id), zap.String("resolved_by", resolvedBy))
	return nil
}
