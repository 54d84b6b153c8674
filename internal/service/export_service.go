package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
	"github.com/thebethel/portal-api/pkg/export"
)

type attendanceReporter interface {
	ClassReport(ctx context.Context, classType, location string) ([]models.AttendanceReportRow, error)
}

type expenseReporter interface {
	MonthlySummary(ctx context.Context) ([]models.MonthlyExpenseSummary, error)
}

// ExportService renders attendance and finance reports as CSV or PDF.
type ExportService struct {
	attendance attendanceReporter
	finance    expenseReporter
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(attendance attendanceReporter, finance expenseReporter, orgName string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendance: attendance,
		finance:    finance,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(orgName),
		logger:     logger,
	}
}

func attendanceTable(rows []models.AttendanceReportRow) export.Table {
	table := export.Table{
		Title:   "Attendance report",
		Columns: []string{"Student ID", "Name", "Class", "Location", "Attended", "Absent", "Streak"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.StudentID,
			row.FullName,
			string(row.ClassType),
			row.Location,
			strconv.Itoa(row.AttendedDays),
			strconv.Itoa(row.AbsentDays),
			strconv.Itoa(row.CurrentStreak),
		})
	}
	return table
}

// AttendanceCSV renders the class attendance report as CSV bytes.
func (s *ExportService) AttendanceCSV(ctx context.Context, classType, location string) ([]byte, error) {
	rows, err := s.attendance.ClassReport(ctx, classType, location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build attendance report")
	}
	payload, err := s.csv.Render(attendanceTable(rows))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance csv")
	}
	return payload, nil
}

// AttendancePDF renders the class attendance report as a PDF document.
func (s *ExportService) AttendancePDF(ctx context.Context, classType, location string) ([]byte, error) {
	rows, err := s.attendance.ClassReport(ctx, classType, location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build attendance report")
	}
	payload, err := s.pdf.Render(attendanceTable(rows), time.Now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance pdf")
	}
	return payload, nil
}

// FinanceCSV renders the monthly expense summary as CSV bytes.
func (s *ExportService) FinanceCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.finance.MonthlySummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build finance report")
	}
	table := export.Table{
		Title:   "Monthly expenses",
		Columns: []string{"Month", "Total", "Entries"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Month,
			strconv.Itoa(row.Total),
			strconv.Itoa(row.EntryCount),
		})
	}
	payload, err := s.csv.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render finance csv")
	}
	return payload, nil
}
