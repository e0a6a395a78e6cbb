package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/services"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ActivityHandler struct {
	BaseHandler
	service services.ActivityService
	export  services.ExportService
}

func NewActivityHandler(service services.ActivityService, export services.ExportService, logger utils.Logger) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		export:      export,
	}
}

// CreateActivity creates a new activity
// @Summary Create activity
// @Description Creates an activity whose content is a JSON array of exercises of one type
// @Tags activities
// @Accept json
// @Produce json
// @Param activity body services.CreateActivityRequest true "Activity data"
// @Success 201 {object} services.ActivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /activities [post]
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	h.LogRequest(c, "Creating activity")

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// GetActivity gets an activity by ID
// @Summary Get activity
// @Tags activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} services.ActivityResponse
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	activity, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// UpdateActivity updates an activity
// @Summary Update activity
// @Description Updates an activity. The request must carry the version it was read at.
// @Tags activities
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param activity body services.UpdateActivityRequest true "Update data"
// @Success 200 {object} services.ActivityResponse
// @Failure 409 {object} ErrorResponse
// @Router /activities/{id} [put]
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.UpdateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// DeleteActivity deletes an activity
// @Summary Delete activity
// @Tags activities
// @Param id path int true "Activity ID"
// @Success 204
// @Router /activities/{id} [delete]
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListActivities lists activities with filters
// @Summary List activities
// @Tags activities
// @Produce json
// @Param lessonId query int false "Lesson ID"
// @Param typeId query int false "Exercise type ID"
// @Param createdBy query string false "Author"
// @Param search query string false "Title search"
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Param sortBy query string false "Sort by field"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {object} services.ActivityListResponse
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	filters := repositories.ActivityFilters{
		Search:    c.Query("search"),
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sortBy", "sequence_order"),
		SortOrder: c.DefaultQuery("sortOrder", "asc"),
	}

	if lessonID := parseIntQuery(c, "lessonId", 0); lessonID > 0 {
		id := uint(lessonID)
		filters.LessonID = &id
	}
	if typeID := parseIntQuery(c, "typeId", 0); typeID > 0 {
		t := models.ExerciseTypeID(typeID)
		filters.TypeID = &t
	}
	if createdBy := c.Query("createdBy"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	result, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListLessonActivities lists a lesson's activities in sequence order
// @Summary List lesson activities
// @Tags activities
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {array} services.ActivityResponse
// @Router /lessons/{id}/activities [get]
func (h *ActivityHandler) ListLessonActivities(c *gin.Context) {
	lessonID := parseIDParam(c, "id")
	if lessonID == 0 {
		return
	}

	activities, err := h.service.ListByLesson(c.Request.Context(), lessonID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

// ReorderLessonActivities sets the sequence order of a lesson's activities
// @Summary Reorder lesson activities
// @Tags activities
// @Accept json
// @Param id path int true "Lesson ID"
// @Param order body services.ReorderActivitiesRequest true "New order"
// @Success 200 {object} SuccessResponse
// @Router /lessons/{id}/activities/order [put]
func (h *ActivityHandler) ReorderLessonActivities(c *gin.Context) {
	lessonID := parseIDParam(c, "id")
	if lessonID == 0 {
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.ReorderActivitiesRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Reorder(c.Request.Context(), lessonID, req.Order, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Activities reordered", nil)
}

// ExportActivity downloads an activity as a spreadsheet
// @Summary Export activity
// @Tags activities
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Activity ID"
// @Router /activities/{id}/export [get]
func (h *ActivityHandler) ExportActivity(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, err := h.export.ExportActivityToExcel(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=activity_%d.xlsx", id))
	c.Data(http.StatusOK, excelContentType, data)
}

// ExportLesson downloads every activity of a lesson as a spreadsheet
// @Summary Export lesson
// @Tags activities
// @Param id path int true "Lesson ID"
// @Router /lessons/{id}/export [get]
func (h *ActivityHandler) ExportLesson(c *gin.Context) {
	lessonID := parseIDParam(c, "id")
	if lessonID == 0 {
		return
	}

	data, err := h.export.ExportLessonToExcel(c.Request.Context(), lessonID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=lesson_%d.xlsx", lessonID))
	c.Data(http.StatusOK, excelContentType, data)
}
