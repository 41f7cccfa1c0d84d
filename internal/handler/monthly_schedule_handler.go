package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	"github.com/raka-dev/sekolah-hr-api/internal/service"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
	"github.com/raka-dev/sekolah-hr-api/pkg/response"
)

// MonthlyScheduleHandler manages monthly template and row generation
// endpoints, including per-row override revert.
type MonthlyScheduleHandler struct {
	service   *service.MonthlyScheduleService
	overrides *service.OverrideService
	metrics   *service.MetricsService
}

// NewMonthlyScheduleHandler constructs handler.
func NewMonthlyScheduleHandler(svc *service.MonthlyScheduleService, overrides *service.OverrideService, metrics *service.MetricsService) *MonthlyScheduleHandler {
	return &MonthlyScheduleHandler{service: svc, overrides: overrides, metrics: metrics}
}

// Create godoc
// @Summary Create monthly schedule template
// @Tags Monthly Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateMonthlyScheduleRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/monthly [post]
func (h *MonthlyScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateMonthlyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	schedule, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// List godoc
// @Summary List monthly schedule templates
// @Tags Monthly Schedules
// @Produce json
// @Param locationId query string false "Filter by location"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules/monthly [get]
func (h *MonthlyScheduleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	schedules, pagination, err := h.service.List(c.Request.Context(), c.Query("locationId"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get monthly schedule template
// @Tags Monthly Schedules
// @Produce json
// @Param id path string true "Monthly schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/monthly/{id} [get]
func (h *MonthlyScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// AssignEmployee godoc
// @Summary Generate daily rows for one employee
// @Tags Monthly Schedules
// @Accept json
// @Produce json
// @Param id path string true "Monthly schedule ID"
// @Param payload body dto.AssignEmployeeRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/monthly/{id}/assign [post]
func (h *MonthlyScheduleHandler) AssignEmployee(c *gin.Context) {
	var req dto.AssignEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	created, err := h.service.AssignEmployee(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordGeneratedRows(created)
	response.JSON(c, http.StatusOK, gin.H{"created": created}, nil)
}

// BulkAssign godoc
// @Summary Generate daily rows for many employees
// @Description Per-employee failures are collected and reported; successes are kept.
// @Tags Monthly Schedules
// @Accept json
// @Produce json
// @Param id path string true "Monthly schedule ID"
// @Param payload body dto.BulkAssignRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/monthly/{id}/assign/bulk [post]
func (h *MonthlyScheduleHandler) BulkAssign(c *gin.Context) {
	var req dto.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.BulkAssign(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordGeneratedRows(result.Created)
	response.JSON(c, http.StatusOK, result, nil)
}

// Finalize godoc
// @Summary Finalize monthly schedule
// @Description Enqueues attendance placeholder creation for every settled row.
// @Tags Monthly Schedules
// @Produce json
// @Param id path string true "Monthly schedule ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/monthly/{id}/finalize [post]
func (h *MonthlyScheduleHandler) Finalize(c *gin.Context) {
	enqueued, err := h.service.Finalize(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enqueued": enqueued}, nil)
}

// ListRows godoc
// @Summary List generated schedule rows
// @Tags Monthly Schedules
// @Produce json
// @Param id path string true "Monthly schedule ID"
// @Param employeeId query string false "Filter by employee"
// @Param status query string false "Filter by status"
// @Param dateFrom query string false "Range start (YYYY-MM-DD)"
// @Param dateTo query string false "Range end (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules/monthly/{id}/rows [get]
func (h *MonthlyScheduleHandler) ListRows(c *gin.Context) {
	filter := models.EmployeeScheduleFilter{
		MonthlyScheduleID: c.Param("id"),
		EmployeeID:        c.Query("employeeId"),
		Status:            models.ScheduleStatus(c.Query("status")),
	}
	if raw := c.Query("dateFrom"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if raw := c.Query("dateTo"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateTo = &parsed
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = limit
	}

	rows, pagination, err := h.service.ListRows(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Deactivate godoc
// @Summary Deactivate monthly schedule template
// @Tags Monthly Schedules
// @Produce json
// @Param id path string true "Monthly schedule ID"
// @Success 204
// @Security BearerAuth
// @Router /schedules/monthly/{id} [delete]
func (h *MonthlyScheduleHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RevertRow godoc
// @Summary Revert the latest override on a schedule row
// @Tags Monthly Schedules
// @Accept json
// @Produce json
// @Param id path string true "Employee schedule row ID"
// @Param payload body dto.RevertOverrideRequest false "Revert reason"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/rows/{id}/revert [post]
func (h *MonthlyScheduleHandler) RevertRow(c *gin.Context) {
	var req dto.RevertOverrideRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	row, changed, err := h.overrides.RevertOverride(c.Request.Context(), c.Param("id"), req.Reason, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !changed {
		response.JSON(c, http.StatusOK, gin.H{"row": row, "reverted": false}, nil)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"row": row, "reverted": true}, nil)
}
