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

// WeeklyScheduleHandler manages base timetable endpoints.
type WeeklyScheduleHandler struct {
	service *service.WeeklyScheduleService
	metrics *service.MetricsService
}

// NewWeeklyScheduleHandler constructs handler.
func NewWeeklyScheduleHandler(svc *service.WeeklyScheduleService, metrics *service.MetricsService) *WeeklyScheduleHandler {
	return &WeeklyScheduleHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List weekly schedules
// @Tags Weekly Schedules
// @Produce json
// @Param classId query string false "Filter by class"
// @Param employeeId query string false "Filter by teacher"
// @Param timeSlotId query string false "Filter by time slot"
// @Param dayOfWeek query string false "Filter by day"
// @Param effectiveOn query string false "Effective on date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules/weekly [get]
func (h *WeeklyScheduleHandler) List(c *gin.Context) {
	var filter models.WeeklyScheduleFilter
	filter.AcademicClassID = c.Query("classId")
	filter.EmployeeID = c.Query("employeeId")
	filter.TimeSlotID = c.Query("timeSlotId")
	if day := c.Query("dayOfWeek"); day != "" {
		parsed, err := models.ParseDayOfWeek(day)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day of week"))
			return
		}
		filter.DayOfWeek = parsed
	}
	if raw := c.Query("effectiveOn"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid effectiveOn date"))
			return
		}
		filter.EffectiveOn = &parsed
	}
	filter.ActiveOnly = c.DefaultQuery("active", "true") == "true"
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	schedules, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get weekly schedule
// @Tags Weekly Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/weekly/{id} [get]
func (h *WeeklyScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Create godoc
// @Summary Create weekly schedule
// @Description Runs conflict detection; blocking conflicts reject the write unless force is set.
// @Tags Weekly Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateWeeklyScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/weekly [post]
func (h *WeeklyScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateWeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	schedule, findings, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	h.metrics.RecordConflicts(findings)
	if err != nil {
		if conflictErr, ok := err.(*models.ScheduleConflictError); ok {
			c.JSON(http.StatusConflict, response.Envelope{
				Error: appErrors.New(appErrors.ErrConflict.Code, http.StatusConflict, conflictErr.Message),
				Data:  gin.H{"findings": conflictErr.Findings},
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"schedule": schedule, "findings": findings}, nil)
}

// Update godoc
// @Summary Update weekly schedule
// @Tags Weekly Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.UpdateWeeklyScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/weekly/{id} [put]
func (h *WeeklyScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateWeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	schedule, findings, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	h.metrics.RecordConflicts(findings)
	if err != nil {
		if conflictErr, ok := err.(*models.ScheduleConflictError); ok {
			c.JSON(http.StatusConflict, response.Envelope{
				Error: appErrors.New(appErrors.ErrConflict.Code, http.StatusConflict, conflictErr.Message),
				Data:  gin.H{"findings": conflictErr.Findings},
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"schedule": schedule, "findings": findings}, nil)
}

// Delete godoc
// @Summary Delete weekly schedule
// @Tags Weekly Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param reason query string false "Deletion reason"
// @Success 204
// @Failure 423 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/weekly/{id} [delete]
func (h *WeeklyScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Query("reason"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ChangeHistory godoc
// @Summary Schedule change history
// @Tags Weekly Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules/weekly/{id}/history [get]
func (h *WeeklyScheduleHandler) ChangeHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, pagination, err := h.service.ChangeHistory(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// ClassGrid godoc
// @Summary Class timetable grid
// @Tags Weekly Schedules
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/grid [get]
func (h *WeeklyScheduleHandler) ClassGrid(c *gin.Context) {
	grid, err := h.service.ClassGrid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// ExportCSV godoc
// @Summary Export class timetable as CSV
// @Tags Weekly Schedules
// @Produce text/csv
// @Param id path string true "Class ID"
// @Success 200 {string} string "CSV payload"
// @Router /classes/{id}/grid/export/csv [get]
func (h *WeeklyScheduleHandler) ExportCSV(c *gin.Context) {
	payload, err := h.service.ExportGridCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timetable.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export class timetable as PDF
// @Tags Weekly Schedules
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Success 200 {string} string "PDF payload"
// @Router /classes/{id}/grid/export/pdf [get]
func (h *WeeklyScheduleHandler) ExportPDF(c *gin.Context) {
	payload, err := h.service.ExportGridPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timetable.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
