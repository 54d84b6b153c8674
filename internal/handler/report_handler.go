package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thebethel/portal-api/internal/service"
	"github.com/thebethel/portal-api/pkg/response"
)

// ReportHandler serves downloadable attendance and finance reports.
type ReportHandler struct {
	exports *service.ExportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(exports *service.ExportService) *ReportHandler {
	return &ReportHandler{exports: exports}
}

func sendAttachment(c *gin.Context, contentType, prefix, ext string, payload []byte) {
	filename := fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("20060102-150405"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, contentType, payload)
}

// AttendanceCSV godoc
// @Summary Download the attendance report as CSV
// @Tags Reports
// @Produce text/csv
// @Param class_type query string false "Class type filter"
// @Param location query string false "Location filter"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/attendance.csv [get]
func (h *ReportHandler) AttendanceCSV(c *gin.Context) {
	payload, err := h.exports.AttendanceCSV(c.Request.Context(), c.Query("class_type"), c.Query("location"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendAttachment(c, "text/csv", "attendance", "csv", payload)
}

// AttendancePDF godoc
// @Summary Download the attendance report as PDF
// @Tags Reports
// @Produce application/pdf
// @Param class_type query string false "Class type filter"
// @Param location query string false "Location filter"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/attendance.pdf [get]
func (h *ReportHandler) AttendancePDF(c *gin.Context) {
	payload, err := h.exports.AttendancePDF(c.Request.Context(), c.Query("class_type"), c.Query("location"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendAttachment(c, "application/pdf", "attendance", "pdf", payload)
}

// FinanceCSV godoc
// @Summary Download the expense register as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/finance.csv [get]
func (h *ReportHandler) FinanceCSV(c *gin.Context) {
	payload, err := h.exports.FinanceCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	sendAttachment(c, "text/csv", "expenses", "csv", payload)
}
