package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

// WeeklyScheduleRepository provides persistence for weekly timetable entries.
type WeeklyScheduleRepository struct {
	db *sqlx.DB
}

// NewWeeklyScheduleRepository creates a new weekly schedule repository.
func NewWeeklyScheduleRepository(db *sqlx.DB) *WeeklyScheduleRepository {
	return &WeeklyScheduleRepository{db: db}
}

const weeklyScheduleColumns = `id, academic_class_id, subject_id, employee_id, time_slot_id, day_of_week, room,
	effective_from, effective_until, is_locked, is_active, metadata, created_by, updated_by, created_at, updated_at`

// BeginTx opens a transaction for multi-row schedule mutations.
func (r *WeeklyScheduleRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

// List returns timetable entries matching the filter, newest first, with the
// total count.
func (r *WeeklyScheduleRepository) List(ctx context.Context, filter models.WeeklyScheduleFilter, limit, offset int) ([]models.WeeklySchedule, int, error) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}
	idx := 1

	appendCond := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, idx))
		args = append(args, value)
		idx++
	}

	if filter.EmployeeID != "" {
		appendCond("employee_id = $%d", filter.EmployeeID)
	}
	if filter.AcademicClassID != "" {
		appendCond("academic_class_id = $%d", filter.AcademicClassID)
	}
	if filter.TimeSlotID != "" {
		appendCond("time_slot_id = $%d", filter.TimeSlotID)
	}
	if filter.DayOfWeek != "" {
		appendCond("day_of_week = $%d", filter.DayOfWeek)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}
	if filter.EffectiveOn != nil {
		conditions = append(conditions, fmt.Sprintf("effective_from <= $%d AND (effective_until IS NULL OR effective_until >= $%d)", idx, idx))
		args = append(args, models.DateOnly(*filter.EffectiveOn))
		idx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM weekly_schedules WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count weekly schedules: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM weekly_schedules WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		weeklyScheduleColumns, where, idx, idx+1)
	args = append(args, limit, offset)

	var schedules []models.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list weekly schedules: %w", err)
	}
	return schedules, total, nil
}

// FindByID loads a timetable entry by id.
func (r *WeeklyScheduleRepository) FindByID(ctx context.Context, id string) (*models.WeeklySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM weekly_schedules WHERE id = $1`, weeklyScheduleColumns)
	var schedule models.WeeklySchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListByTeacherDaySlot returns entries active and effective on ref that share
// a teacher, day and slot, excluding the entry being evaluated. Used by the
// double-booking check.
func (r *WeeklyScheduleRepository) ListByTeacherDaySlot(ctx context.Context, employeeID string, day models.DayOfWeek, timeSlotID, excludeID string, ref time.Time) ([]models.WeeklySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM weekly_schedules
		WHERE is_active = true AND employee_id = $1 AND day_of_week = $2 AND time_slot_id = $3 AND id != $4
		AND effective_from <= $5 AND (effective_until IS NULL OR effective_until >= $5)`,
		weeklyScheduleColumns)
	var schedules []models.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, employeeID, day, timeSlotID, excludeID, models.DateOnly(ref)); err != nil {
		return nil, fmt.Errorf("list schedules by teacher slot: %w", err)
	}
	return schedules, nil
}

// ListByClassDaySlot returns entries active and effective on ref that share a
// class, day and slot, excluding the entry being evaluated.
func (r *WeeklyScheduleRepository) ListByClassDaySlot(ctx context.Context, classID string, day models.DayOfWeek, timeSlotID, excludeID string, ref time.Time) ([]models.WeeklySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM weekly_schedules
		WHERE is_active = true AND academic_class_id = $1 AND day_of_week = $2 AND time_slot_id = $3 AND id != $4
		AND effective_from <= $5 AND (effective_until IS NULL OR effective_until >= $5)`,
		weeklyScheduleColumns)
	var schedules []models.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, classID, day, timeSlotID, excludeID, models.DateOnly(ref)); err != nil {
		return nil, fmt.Errorf("list schedules by class slot: %w", err)
	}
	return schedules, nil
}

// ListByRoomDaySlot returns entries active and effective on ref occupying the
// same room, day and slot.
func (r *WeeklyScheduleRepository) ListByRoomDaySlot(ctx context.Context, room string, day models.DayOfWeek, timeSlotID, excludeID string, ref time.Time) ([]models.WeeklySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM weekly_schedules
		WHERE is_active = true AND room = $1 AND day_of_week = $2 AND time_slot_id = $3 AND id != $4
		AND effective_from <= $5 AND (effective_until IS NULL OR effective_until >= $5)`,
		weeklyScheduleColumns)
	var schedules []models.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, room, day, timeSlotID, excludeID, models.DateOnly(ref)); err != nil {
		return nil, fmt.Errorf("list schedules by room slot: %w", err)
	}
	return schedules, nil
}

// CountByClassSubject counts how many weekly meetings effective on ref a
// class already has for a subject, excluding the entry being evaluated.
func (r *WeeklyScheduleRepository) CountByClassSubject(ctx context.Context, classID, subjectID, excludeID string, ref time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM weekly_schedules
		WHERE is_active = true AND academic_class_id = $1 AND subject_id = $2 AND id != $3
		AND effective_from <= $4 AND (effective_until IS NULL OR effective_until >= $4)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, subjectID, excludeID, models.DateOnly(ref)); err != nil {
		return 0, fmt.Errorf("count class subject meetings: %w", err)
	}
	return count, nil
}

// ListByClassSubjectDay returns a class's meetings effective on ref for a
// subject on a given day, excluding the entry being evaluated.
func (r *WeeklyScheduleRepository) ListByClassSubjectDay(ctx context.Context, classID, subjectID string, day models.DayOfWeek, excludeID string, ref time.Time) ([]models.WeeklySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM weekly_schedules
		WHERE is_active = true AND academic_class_id = $1 AND subject_id = $2 AND day_of_week = $3 AND id != $4
		AND effective_from <= $5 AND (effective_until IS NULL OR effective_until >= $5)`,
		weeklyScheduleColumns)
	var schedules []models.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, classID, subjectID, day, excludeID, models.DateOnly(ref)); err != nil {
		return nil, fmt.Errorf("list schedules by class subject day: %w", err)
	}
	return schedules, nil
}

// ListByClass returns every active entry for a class, ordered for grid
// rendering.
func (r *WeeklyScheduleRepository) ListByClass(ctx context.Context, classID string) ([]models.WeeklySchedule, error) {
	const query = `SELECT ws.id, ws.academic_class_id, ws.subject_id, ws.employee_id, ws.time_slot_id, ws.day_of_week, ws.room,
			ws.effective_from, ws.effective_until, ws.is_locked, ws.is_active, ws.metadata, ws.created_by, ws.updated_by, ws.created_at, ws.updated_at
		FROM weekly_schedules ws
		JOIN time_slots ts ON ts.id = ws.time_slot_id
		WHERE ws.is_active = true AND ws.academic_class_id = $1
		ORDER BY ws.day_of_week ASC, ts.slot_order ASC`
	var schedules []models.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, classID); err != nil {
		return nil, fmt.Errorf("list schedules by class: %w", err)
	}
	return schedules, nil
}

// ListByTeacher returns every active entry taught by a teacher.
func (r *WeeklyScheduleRepository) ListByTeacher(ctx context.Context, employeeID string) ([]models.WeeklySchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM weekly_schedules WHERE is_active = true AND employee_id = $1
		ORDER BY day_of_week ASC`, weeklyScheduleColumns)
	var schedules []models.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, employeeID); err != nil {
		return nil, fmt.Errorf("list schedules by teacher: %w", err)
	}
	return schedules, nil
}

// Create stores a new timetable entry.
func (r *WeeklyScheduleRepository) Create(ctx context.Context, schedule *models.WeeklySchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	schedule.IsActive = true

	const query = `INSERT INTO weekly_schedules (id, academic_class_id, subject_id, employee_id, time_slot_id, day_of_week, room,
			effective_from, effective_until, is_locked, is_active, metadata, created_by, created_at, updated_at)
		VALUES (:id, :academic_class_id, :subject_id, :employee_id, :time_slot_id, :day_of_week, :room,
			:effective_from, :effective_until, :is_locked, :is_active, :metadata, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create weekly schedule: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a timetable entry.
func (r *WeeklyScheduleRepository) Update(ctx context.Context, schedule *models.WeeklySchedule) error {
	schedule.UpdatedAt = time.Now().UTC()

	const query = `UPDATE weekly_schedules SET
			academic_class_id = :academic_class_id, subject_id = :subject_id, employee_id = :employee_id,
			time_slot_id = :time_slot_id, day_of_week = :day_of_week, room = :room,
			effective_from = :effective_from, effective_until = :effective_until,
			metadata = :metadata, updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update weekly schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetLocked flips the lock flag on a timetable entry.
func (r *WeeklyScheduleRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE weekly_schedules SET is_locked = $2, updated_at = $3 WHERE id = $1`,
		id, locked, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set schedule lock flag: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a timetable entry.
func (r *WeeklyScheduleRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE weekly_schedules SET is_active = false, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate weekly schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
