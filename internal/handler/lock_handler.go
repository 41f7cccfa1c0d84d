package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/service"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
	"github.com/raka-dev/sekolah-hr-api/pkg/response"
)

// LockHandler manages advisory schedule locks.
type LockHandler struct {
	service *service.LockService
	metrics *service.MetricsService
}

// NewLockHandler constructs handler.
func NewLockHandler(svc *service.LockService, metrics *service.MetricsService) *LockHandler {
	return &LockHandler{service: svc, metrics: metrics}
}

// Lock godoc
// @Summary Lock a weekly schedule
// @Tags Locks
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.LockScheduleRequest true "Lock payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/weekly/{id}/lock [post]
func (h *LockHandler) Lock(c *gin.Context) {
	var req dto.LockScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lock payload"))
		return
	}

	lock, err := h.service.Lock(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lock)
}

// Unlock godoc
// @Summary Release a schedule lock
// @Tags Locks
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.UnlockScheduleRequest true "Unlock payload"
// @Success 204
// @Security BearerAuth
// @Router /schedules/weekly/{id}/lock [delete]
func (h *LockHandler) Unlock(c *gin.Context) {
	var req dto.UnlockScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid unlock payload"))
		return
	}

	if err := h.service.Unlock(c.Request.Context(), c.Param("id"), req, actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Status godoc
// @Summary Lock status of a schedule
// @Tags Locks
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/weekly/{id}/lock [get]
func (h *LockHandler) Status(c *gin.Context) {
	locked, err := h.service.IsLocked(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"locked": locked}, nil)
}

// Cleanup godoc
// @Summary Release expired locks now
// @Tags Locks
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /locks/cleanup [post]
func (h *LockHandler) Cleanup(c *gin.Context) {
	released, err := h.service.CleanupExpired(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordExpiredLocks(released)
	response.JSON(c, http.StatusOK, gin.H{"released": released}, nil)
}
