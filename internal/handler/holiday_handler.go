package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/service"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
	"github.com/raka-dev/sekolah-hr-api/pkg/response"
)

// HolidayHandler manages holiday calendar and stamping endpoints.
type HolidayHandler struct {
	service *service.HolidayService
	metrics *service.MetricsService
}

// NewHolidayHandler constructs handler.
func NewHolidayHandler(svc *service.HolidayService, metrics *service.MetricsService) *HolidayHandler {
	return &HolidayHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Create holiday
// @Tags Holidays
// @Accept json
// @Produce json
// @Param payload body dto.CreateHolidayRequest true "Holiday payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /holidays [post]
func (h *HolidayHandler) Create(c *gin.Context) {
	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	holiday, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, holiday)
}

// List godoc
// @Summary List holidays
// @Tags Holidays
// @Produce json
// @Param locationId query string false "Filter by location"
// @Param type query string false "Filter by holiday type"
// @Param year query int false "Filter by year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /holidays [get]
func (h *HolidayHandler) List(c *gin.Context) {
	var filter models.HolidayFilter
	if locationID := c.Query("locationId"); locationID != "" {
		filter.LocationID = &locationID
	}
	filter.Type = models.HolidayType(c.Query("type"))
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	filter.ActiveOnly = c.DefaultQuery("active", "true") == "true"
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	holidays, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, pagination)
}

// Get godoc
// @Summary Get holiday
// @Tags Holidays
// @Produce json
// @Param id path string true "Holiday ID"
// @Success 200 {object} response.Envelope
// @Router /holidays/{id} [get]
func (h *HolidayHandler) Get(c *gin.Context) {
	holiday, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holiday, nil)
}

// GenerateRecurring godoc
// @Summary Generate future instances of a recurring holiday
// @Tags Holidays
// @Accept json
// @Produce json
// @Param id path string true "Holiday ID"
// @Param payload body dto.GenerateRecurringRequest true "Generation horizon"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /holidays/{id}/generate [post]
func (h *HolidayHandler) GenerateRecurring(c *gin.Context) {
	var req dto.GenerateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	created, err := h.service.GenerateRecurring(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"created": created}, nil)
}

// Preview godoc
// @Summary Preview schedule rows a holiday would override
// @Tags Holidays
// @Produce json
// @Param id path string true "Holiday ID"
// @Success 200 {object} response.Envelope
// @Router /holidays/{id}/preview [get]
func (h *HolidayHandler) Preview(c *gin.Context) {
	previews, err := h.service.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, previews, nil)
}

// Apply godoc
// @Summary Stamp a holiday onto generated schedule rows
// @Tags Holidays
// @Produce json
// @Param id path string true "Holiday ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /holidays/{id}/apply [post]
func (h *HolidayHandler) Apply(c *gin.Context) {
	applied, err := h.service.ApplyToSchedules(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if applied > 0 {
		h.metrics.RecordOverride(models.ScheduleSourceHolidayOverride)
	}
	response.JSON(c, http.StatusOK, gin.H{"applied": applied}, nil)
}

// Remove godoc
// @Summary Revert holiday stamps from generated schedule rows
// @Tags Holidays
// @Produce json
// @Param id path string true "Holiday ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /holidays/{id}/apply [delete]
func (h *HolidayHandler) Remove(c *gin.Context) {
	reverted, err := h.service.RemoveFromSchedules(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"reverted": reverted}, nil)
}

// Deactivate godoc
// @Summary Deactivate holiday
// @Tags Holidays
// @Produce json
// @Param id path string true "Holiday ID"
// @Success 204
// @Security BearerAuth
// @Router /holidays/{id} [delete]
func (h *HolidayHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
