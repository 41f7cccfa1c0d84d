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

// TeachingScheduleHandler manages teaching block, substitute and workload
// endpoints.
type TeachingScheduleHandler struct {
	service *service.TeachingScheduleService
	metrics *service.MetricsService
}

// NewTeachingScheduleHandler constructs handler.
func NewTeachingScheduleHandler(svc *service.TeachingScheduleService, metrics *service.MetricsService) *TeachingScheduleHandler {
	return &TeachingScheduleHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Create teaching schedule
// @Tags Teaching Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateTeachingScheduleRequest true "Teaching payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/teaching [post]
func (h *TeachingScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateTeachingScheduleRequest
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
// @Summary List teaching schedules
// @Tags Teaching Schedules
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param subjectId query string false "Filter by subject"
// @Param dayOfWeek query string false "Filter by day"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules/teaching [get]
func (h *TeachingScheduleHandler) List(c *gin.Context) {
	var filter models.TeachingScheduleFilter
	filter.TeacherID = c.Query("teacherId")
	filter.SubjectID = c.Query("subjectId")
	filter.Status = models.TeachingStatus(c.Query("status"))
	if day := c.Query("dayOfWeek"); day != "" {
		parsed, err := models.ParseDayOfWeek(day)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day of week"))
			return
		}
		filter.DayOfWeek = parsed
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
// @Summary Get teaching schedule
// @Tags Teaching Schedules
// @Produce json
// @Param id path string true "Teaching schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/teaching/{id} [get]
func (h *TeachingScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Update godoc
// @Summary Update teaching schedule
// @Tags Teaching Schedules
// @Accept json
// @Produce json
// @Param id path string true "Teaching schedule ID"
// @Param payload body dto.UpdateTeachingScheduleRequest true "Teaching payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/teaching/{id} [put]
func (h *TeachingScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateTeachingScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	schedule, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Apply godoc
// @Summary Apply teaching override to generated rows
// @Tags Teaching Schedules
// @Produce json
// @Param id path string true "Teaching schedule ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/teaching/{id}/apply [post]
func (h *TeachingScheduleHandler) Apply(c *gin.Context) {
	applied, err := h.service.ApplyToEmployeeSchedules(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if applied > 0 {
		h.metrics.RecordOverride(models.ScheduleSourceTeaching)
	}
	response.JSON(c, http.StatusOK, gin.H{"applied": applied}, nil)
}

// AssignSubstitute godoc
// @Summary Assign substitute teacher
// @Tags Teaching Schedules
// @Accept json
// @Produce json
// @Param id path string true "Teaching schedule ID"
// @Param payload body dto.AssignSubstituteRequest true "Substitute payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/teaching/{id}/substitute [post]
func (h *TeachingScheduleHandler) AssignSubstitute(c *gin.Context) {
	var req dto.AssignSubstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	schedule, err := h.service.AssignSubstitute(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// RemoveSubstitute godoc
// @Summary Remove substitute teacher
// @Tags Teaching Schedules
// @Produce json
// @Param id path string true "Teaching schedule ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/teaching/{id}/substitute [delete]
func (h *TeachingScheduleHandler) RemoveSubstitute(c *gin.Context) {
	schedule, err := h.service.RemoveSubstitute(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Workload godoc
// @Summary Teacher weekly workload summary
// @Tags Teaching Schedules
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/workload [get]
func (h *TeachingScheduleHandler) Workload(c *gin.Context) {
	workload, err := h.service.Workload(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workload, nil)
}

// Deactivate godoc
// @Summary Deactivate teaching schedule
// @Tags Teaching Schedules
// @Produce json
// @Param id path string true "Teaching schedule ID"
// @Success 204
// @Security BearerAuth
// @Router /schedules/teaching/{id} [delete]
func (h *TeachingScheduleHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
