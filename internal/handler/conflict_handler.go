package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/service"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
	"github.com/raka-dev/sekolah-hr-api/pkg/response"
)

// ConflictHandler exposes persisted conflict findings.
type ConflictHandler struct {
	service *service.ConflictService
}

// NewConflictHandler constructs handler.
func NewConflictHandler(svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

// ListBySchedule godoc
// @Summary Conflicts recorded for a schedule
// @Tags Conflicts
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/weekly/{id}/conflicts [get]
func (h *ConflictHandler) ListBySchedule(c *gin.Context) {
	conflicts, err := h.service.ListBySchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}

// ListUnresolved godoc
// @Summary Unresolved conflicts
// @Tags Conflicts
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) ListUnresolved(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	conflicts, pagination, err := h.service.ListUnresolved(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, pagination)
}

// Resolve godoc
// @Summary Mark a conflict resolved
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param id path string true "Conflict ID"
// @Param payload body dto.ResolveConflictRequest true "Resolution payload"
// @Success 204
// @Security BearerAuth
// @Router /conflicts/{id}/resolve [post]
func (h *ConflictHandler) Resolve(c *gin.Context) {
	var req dto.ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	actor := actorFromContext(c)
	if err := h.service.Resolve(c.Request.Context(), c.Param("id"), actor.UserID, req.Notes); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
