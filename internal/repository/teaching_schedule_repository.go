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

// TeachingScheduleRepository persists teaching schedules and their
// substitution windows.
type TeachingScheduleRepository struct {
	db *sqlx.DB
}

// NewTeachingScheduleRepository creates a new teaching schedule repository.
func NewTeachingScheduleRepository(db *sqlx.DB) *TeachingScheduleRepository {
	return &TeachingScheduleRepository{db: db}
}

const teachingScheduleColumns = `id, teacher_id, subject_id, monthly_schedule_id, day_of_week,
	teaching_start_time, teaching_end_time, effective_from, effective_until,
	class_name, room, student_count, is_active, status,
	override_attendance, strict_timing, late_threshold_minutes,
	substitute_teacher_id, substitution_start_date, substitution_end_date, substitution_reason,
	metadata, created_by, updated_by, created_at, updated_at`

// Create stores a new teaching schedule.
func (r *TeachingScheduleRepository) Create(ctx context.Context, schedule *models.TeachingSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	schedule.IsActive = true
	if schedule.Status == "" {
		schedule.Status = models.TeachingStatusScheduled
	}

	const query = `INSERT INTO teaching_schedules (id, teacher_id, subject_id, monthly_schedule_id, day_of_week,
			teaching_start_time, teaching_end_time, effective_from, effective_until,
			class_name, room, student_count, is_active, status,
			override_attendance, strict_timing, late_threshold_minutes,
			metadata, created_by, created_at, updated_at)
		VALUES (:id, :teacher_id, :subject_id, :monthly_schedule_id, :day_of_week,
			:teaching_start_time, :teaching_end_time, :effective_from, :effective_until,
			:class_name, :room, :student_count, :is_active, :status,
			:override_attendance, :strict_timing, :late_threshold_minutes,
			:metadata, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create teaching schedule: %w", err)
	}
	return nil
}

// FindByID loads a teaching schedule.
func (r *TeachingScheduleRepository) FindByID(ctx context.Context, id string) (*models.TeachingSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM teaching_schedules WHERE id = $1`, teachingScheduleColumns)
	var schedule models.TeachingSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// List returns teaching schedules matching the filter with the total count.
func (r *TeachingScheduleRepository) List(ctx context.Context, filter models.TeachingScheduleFilter, limit, offset int) ([]models.TeachingSchedule, int, error) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}
	idx := 1

	appendCond := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, idx))
		args = append(args, value)
		idx++
	}

	if filter.TeacherID != "" {
		appendCond("teacher_id = $%d", filter.TeacherID)
	}
	if filter.SubjectID != "" {
		appendCond("subject_id = $%d", filter.SubjectID)
	}
	if filter.DayOfWeek != "" {
		appendCond("day_of_week = $%d", filter.DayOfWeek)
	}
	if filter.Status != "" {
		appendCond("status = $%d", filter.Status)
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
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM teaching_schedules WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teaching schedules: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM teaching_schedules WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, teachingScheduleColumns, where, idx, idx+1)
	args = append(args, limit, offset)

	var schedules []models.TeachingSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teaching schedules: %w", err)
	}
	return schedules, total, nil
}

// FindOverrideSource returns the teaching schedule that should override a
// teacher's monthly template on a date. When several match, the most recently
// created wins so repeated resolution stays deterministic.
func (r *TeachingScheduleRepository) FindOverrideSource(ctx context.Context, teacherID string, day models.DayOfWeek, date time.Time) (*models.TeachingSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM teaching_schedules
		WHERE teacher_id = $1 AND day_of_week = $2 AND is_active = true AND override_attendance = true
		AND effective_from <= $3 AND (effective_until IS NULL OR effective_until >= $3)
		ORDER BY created_at DESC LIMIT 1`, teachingScheduleColumns)
	var schedule models.TeachingSchedule
	if err := r.db.GetContext(ctx, &schedule, query, teacherID, day, models.DateOnly(date)); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListActiveByTeacher returns a teacher's active teaching schedules together
// with any they substitute for. Used by workload and resolution.
func (r *TeachingScheduleRepository) ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.TeachingSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM teaching_schedules
		WHERE is_active = true AND (teacher_id = $1 OR substitute_teacher_id = $1)
		ORDER BY day_of_week ASC, teaching_start_time ASC`, teachingScheduleColumns)
	var schedules []models.TeachingSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID); err != nil {
		return nil, fmt.Errorf("list active teaching schedules: %w", err)
	}
	return schedules, nil
}

// ListByTeacherDay returns a teacher's active schedules on a weekday. The
// substitute overlap check compares clock ranges against these.
func (r *TeachingScheduleRepository) ListByTeacherDay(ctx context.Context, teacherID string, day models.DayOfWeek) ([]models.TeachingSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM teaching_schedules
		WHERE is_active = true AND day_of_week = $2 AND (teacher_id = $1 OR substitute_teacher_id = $1)`,
		teachingScheduleColumns)
	var schedules []models.TeachingSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID, day); err != nil {
		return nil, fmt.Errorf("list teaching schedules by teacher day: %w", err)
	}
	return schedules, nil
}

// Update rewrites the mutable columns of a teaching schedule.
func (r *TeachingScheduleRepository) Update(ctx context.Context, schedule *models.TeachingSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()

	const query = `UPDATE teaching_schedules SET
			subject_id = :subject_id, day_of_week = :day_of_week,
			teaching_start_time = :teaching_start_time, teaching_end_time = :teaching_end_time,
			effective_from = :effective_from, effective_until = :effective_until,
			class_name = :class_name, room = :room, student_count = :student_count,
			status = :status, override_attendance = :override_attendance,
			strict_timing = :strict_timing, late_threshold_minutes = :late_threshold_minutes,
			metadata = :metadata, updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update teaching schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetSubstitution records a substitution window on a schedule.
func (r *TeachingScheduleRepository) SetSubstitution(ctx context.Context, schedule *models.TeachingSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()

	const query = `UPDATE teaching_schedules SET
			substitute_teacher_id = :substitute_teacher_id,
			substitution_start_date = :substitution_start_date,
			substitution_end_date = :substitution_end_date,
			substitution_reason = :substitution_reason,
			status = :status, updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("set substitution: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a teaching schedule.
func (r *TeachingScheduleRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teaching_schedules SET is_active = false, status = $2, updated_at = $3 WHERE id = $1`,
		id, models.TeachingStatusCancelled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate teaching schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
