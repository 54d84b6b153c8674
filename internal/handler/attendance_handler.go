package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thebethel/portal-api/internal/service"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
	"github.com/thebethel/portal-api/pkg/response"
)

// AttendanceHandler exposes attendance marking and reporting endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Mark godoc
// @Summary Mark a student present or absent for a date
// @Description Re-marking the same date replaces the previous state for that
// @Description date and recomputes the streak, so the call is safe to retry.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Mark"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/mark [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// BulkMark godoc
// @Summary Mark a whole roster for one date
// @Description Processes every item; per-student failures are reported as
// @Description conflicts without aborting the rest of the roster.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.BulkMarkRequest true "Roster"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	var req service.BulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.BulkMark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary Attendance history for a student
// @Tags Attendance
// @Produce json
// @Param id path string true "Student primary key"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/students/{id} [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	history, err := h.attendance.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// ClassReport godoc
// @Summary Per-student attendance totals for a class
// @Tags Attendance
// @Produce json
// @Param class_type query string false "Class type filter"
// @Param location query string false "Location filter"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/report [get]
func (h *AttendanceHandler) ClassReport(c *gin.Context) {
	rows, err := h.attendance.ClassReport(c.Request.Context(), c.Query("class_type"), c.Query("location"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
