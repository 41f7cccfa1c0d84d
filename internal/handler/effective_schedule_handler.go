package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raka-dev/sekolah-hr-api/internal/service"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
	"github.com/raka-dev/sekolah-hr-api/pkg/response"
)

// EffectiveScheduleHandler exposes the resolved daily schedule of an employee.
type EffectiveScheduleHandler struct {
	service *service.ResolverService
}

// NewEffectiveScheduleHandler constructs handler.
func NewEffectiveScheduleHandler(svc *service.ResolverService) *EffectiveScheduleHandler {
	return &EffectiveScheduleHandler{service: svc}
}

// Resolve godoc
// @Summary Resolve the effective schedule of an employee for one date
// @Tags Effective Schedules
// @Produce json
// @Param id path string true "Employee ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/schedule [get]
func (h *EffectiveScheduleHandler) Resolve(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid date, expect YYYY-MM-DD"))
		return
	}

	schedule, err := h.service.Resolve(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// ResolveRange godoc
// @Summary Resolve effective schedules for an inclusive date range
// @Tags Effective Schedules
// @Produce json
// @Param id path string true "Employee ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/schedule/range [get]
func (h *EffectiveScheduleHandler) ResolveRange(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid from date, expect YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid to date, expect YYYY-MM-DD"))
		return
	}

	schedules, err := h.service.ResolveRange(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}
