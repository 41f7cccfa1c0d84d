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
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

type lockStore interface {
	Create(ctx context.Context, lock *models.ScheduleLock) error
	FindActiveBySchedule(ctx context.Context, scheduleID string) (*models.ScheduleLock, error)
	Unlock(ctx context.Context, id, unlockedBy, reason string) error
	ListExpiredActive(ctx context.Context, now time.Time) ([]models.ScheduleLock, error)
	ReleaseExpired(ctx context.Context, id string, now time.Time) error
}

type lockFlagStore interface {
	FindByID(ctx context.Context, id string) (*models.WeeklySchedule, error)
	SetLocked(ctx context.Context, id string, locked bool) error
}

// LockService manages advisory schedule locks: acquisition, manual release
// and the periodic expiry sweep. The sweep is the only transition without an
// actor.
type LockService struct {
	locks     lockStore
	schedules lockFlagStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLockService instantiates LockService.
func NewLockService(locks lockStore, schedules lockFlagStore, validate *validator.Validate, logger *zap.Logger) *LockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockService{locks: locks, schedules: schedules, validator: validate, logger: logger}
}

// Lock places an advisory lock on a schedule. A schedule carries at most one
// active lock.
func (s *LockService) Lock(ctx context.Context, scheduleID string, req dto.LockScheduleRequest, actor Actor) (*models.ScheduleLock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lock payload")
	}
	if _, err := s.schedules.FindByID(ctx, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weekly schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	if existing, err := s.locks.FindActiveBySchedule(ctx, scheduleID); err == nil && existing.IsCurrentlyLocked(time.Now()) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "schedule already holds an active lock")
	}

	lock := &models.ScheduleLock{
		ScheduleID:  scheduleID,
		LockType:    models.LockTypeManual,
		Reason:      req.Reason,
		LockedUntil: req.LockedUntil,
		LockedBy:    actor.UserID,
	}
	if err := s.locks.Create(ctx, lock); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lock")
	}
	if err := s.schedules.SetLocked(ctx, scheduleID, true); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag schedule locked")
	}

	s.logger.Info("schedule locked",
		zap.String("schedule_id", scheduleID),
		zap.String("locked_by", actor.UserID))
	return lock, nil
}

// Unlock releases the active lock on a schedule on behalf of an actor.
func (s *LockService) Unlock(ctx context.Context, scheduleID string, req dto.UnlockScheduleRequest, actor Actor) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unlock payload")
	}

	lock, err := s.locks.FindActiveBySchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no active lock on schedule")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lock")
	}

	if err := s.locks.Unlock(ctx, lock.ID, actor.UserID, req.Reason); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release lock")
	}
	if err := s.schedules.SetLocked(ctx, scheduleID, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear schedule lock flag")
	}

	s.logger.Info("schedule unlocked",
		zap.String("schedule_id", scheduleID),
		zap.String("unlocked_by", actor.UserID))
	return nil
}

// IsLocked reports whether a schedule currently holds an in-force lock.
// Expired rows that the sweep has not reaped yet count as unlocked.
func (s *LockService) IsLocked(ctx context.Context, scheduleID string) (bool, error) {
	lock, err := s.locks.FindActiveBySchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return lock.IsCurrentlyLocked(time.Now()), nil
}

// CleanupExpired releases every lock whose expiry has passed and clears the
// schedule flags. Returns the number of locks released.
func (s *LockService) CleanupExpired(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	expired, err := s.locks.ListExpiredActive(ctx, now)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expired locks")
	}

	released := 0
	for _, lock := range expired {
		if err := s.locks.ReleaseExpired(ctx, lock.ID, now); err != nil {
			s.logger.Error("release expired lock", zap.String("lock_id", lock.ID), zap.Error(err))
			continue
		}
		if err := s.schedules.SetLocked(ctx, lock.ScheduleID, false); err != nil && !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("clear lock flag", zap.String("schedule_id", lock.ScheduleID), zap.Error(err))
		}
		released++
	}
	if released > 0 {
		s.logger.Info("expired schedule locks released", zap.Int("count", released))
	}
	return released, nil
}

// RunSweep blocks, releasing expired locks on every tick until the context
// is cancelled.
func (s *LockService) RunSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanupExpired(ctx); err != nil {
				s.logger.Error("lock sweep", zap.Error(err))
			}
		}
	}
}
