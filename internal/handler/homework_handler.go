package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thebethel/portal-api/internal/models"
	"github.com/thebethel/portal-api/internal/service"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
	"github.com/thebethel/portal-api/pkg/response"
)

// HomeworkHandler exposes homework assignment endpoints.
type HomeworkHandler struct {
	homework *service.HomeworkService
	students *service.StudentService
}

// NewHomeworkHandler constructs HomeworkHandler.
func NewHomeworkHandler(homework *service.HomeworkService, students *service.StudentService) *HomeworkHandler {
	return &HomeworkHandler{homework: homework, students: students}
}

// List godoc
// @Summary List homework assignments
// @Description Parents only see homework for the class their linked student
// @Description belongs to.
// @Tags Homework
// @Produce json
// @Param class_type query string false "Class type filter"
// @Param due_after query string false "Only assignments due on or after this date"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := models.HomeworkFilter{
		ClassType: c.Query("class_type"),
		Page:      page,
		PageSize:  pageSize,
	}
	if due := c.Query("due_after"); due != "" {
		filter.DueAfter = &due
	}

	if claims.Role == models.RoleParent {
		if claims.LinkedStudentID == "" {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		student, err := h.students.Lookup(c.Request.Context(), claims.LinkedStudentID, claims)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.ClassType = string(student.ClassType)
	}

	assignments, pagination, err := h.homework.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Create godoc
// @Summary Create a homework assignment
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body service.CreateHomeworkRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /homework [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.homework.Create(c.Request.Context(), req, claims.FullName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update a homework assignment
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Assignment id"
// @Param payload body service.UpdateHomeworkRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /homework/{id} [put]
func (h *HomeworkHandler) Update(c *gin.Context) {
	var req service.UpdateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.homework.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete a homework assignment
// @Tags Homework
// @Param id path string true "Assignment id"
// @Success 204
// @Security BearerAuth
// @Router /homework/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
	if err := h.homework.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
