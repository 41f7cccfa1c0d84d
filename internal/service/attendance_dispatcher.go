package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/pkg/jobs"
)

type placeholderCreator interface {
	CreateAttendancePlaceholder(ctx context.Context, row models.EmployeeMonthlySchedule, source models.ScheduleSource) (*models.Attendance, error)
}

type attendanceLinker interface {
	SetAttendanceID(ctx context.Context, id, attendanceID string) error
}

// AttendanceDispatcher fans settled schedule rows out to the attendance
// subsystem through a background queue. Each row becomes one expected-shift
// placeholder; the row is then back-linked to it.
type AttendanceDispatcher struct {
	queue     *jobs.Queue
	creator   placeholderCreator
	linker    attendanceLinker
	logger    *zap.Logger
	queueName string
}

// NewAttendanceDispatcher builds the dispatcher and its queue. Call Start
// before enqueuing and Stop on shutdown.
func NewAttendanceDispatcher(creator placeholderCreator, linker attendanceLinker, cfg jobs.QueueConfig, logger *zap.Logger) *AttendanceDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AttendanceDispatcher{
		creator:   creator,
		linker:    linker,
		logger:    logger,
		queueName: "attendance-placeholders",
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	d.queue = jobs.NewQueue(d.queueName, d.handle, cfg)
	return d
}

// Start begins background processing.
func (d *AttendanceDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the worker pool.
func (d *AttendanceDispatcher) Stop() {
	d.queue.Stop()
}

// EnqueuePlaceholders queues one placeholder job per schedule row. Rows
// already linked to an attendance record are skipped.
func (d *AttendanceDispatcher) EnqueuePlaceholders(ctx context.Context, rows []models.EmployeeMonthlySchedule) error {
	for _, row := range rows {
		if row.AttendanceID != nil {
			continue
		}
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    "attendance.placeholder",
			Payload: row,
		}
		if err := d.queue.Enqueue(job); err != nil {
			return fmt.Errorf("enqueue placeholder for row %s: %w", row.ID, err)
		}
	}
	return nil
}

func (d *AttendanceDispatcher) handle(ctx context.Context, job jobs.Job) error {
	row, ok := job.Payload.(models.EmployeeMonthlySchedule)
	if !ok {
		d.logger.Error("unexpected placeholder payload", zap.String("job_id", job.ID))
		return nil
	}

	attendance, err := d.creator.CreateAttendancePlaceholder(ctx, row, scheduleSourceFor(row))
	if err != nil {
		return fmt.Errorf("create placeholder for row %s: %w", row.ID, err)
	}
	if err := d.linker.SetAttendanceID(ctx, row.ID, attendance.ID); err != nil {
		return fmt.Errorf("link placeholder for row %s: %w", row.ID, err)
	}

	d.logger.Debug("attendance placeholder created",
		zap.String("row_id", row.ID),
		zap.String("attendance_id", attendance.ID))
	return nil
}

// scheduleSourceFor derives the source tag from the row's current state.
func scheduleSourceFor(row models.EmployeeMonthlySchedule) models.ScheduleSource {
	switch {
	case row.IsHoliday || row.Status == models.ScheduleStatusHoliday:
		return models.ScheduleSourceHolidayOverride
	case row.Status == models.ScheduleStatusOverridden:
		return models.ScheduleSourceTeaching
	default:
		return models.ScheduleSourceMonthly
	}
}
