package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/engine"
	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
)

type attendanceRepository interface {
	ApplyMark(ctx context.Context, studentPK string, apply func(models.AttendanceSheet) (models.AttendanceSheet, error)) (*models.AttendanceSheet, error)
	ClassReport(ctx context.Context, classType, location string) ([]models.AttendanceReportRow, error)
}

type attendanceStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
}

// AttendanceService applies present/absent decisions for students. It reads
// the current date sets, runs the streak engine and persists the result; the
// repository wraps read, recompute and write in one locked transaction.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service. A nil metrics
// service disables instrumentation.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, metrics: metrics, validator: validate, logger: logger}
}

// MarkAttendanceRequest describes a single present/absent decision. ID is
// the student row id, the same identifier the student sub-resource routes
// use; the external student number is never accepted here.
type MarkAttendanceRequest struct {
	ID      string `json:"id" validate:"required"`
	Date    string `json:"date" validate:"required"`
	Present *bool  `json:"present" validate:"required"`
}

// BulkMarkItem holds one roster entry for bulk marking.
type BulkMarkItem struct {
	ID      string `json:"id" validate:"required"`
	Present *bool  `json:"present" validate:"required"`
}

// BulkMarkRequest marks a whole roster for one calendar date.
type BulkMarkRequest struct {
	Date  string         `json:"date" validate:"required"`
	Items []BulkMarkItem `json:"items" validate:"required,min=1,dive"`
}

// BulkMarkResult summarises bulk execution.
type BulkMarkResult struct {
	Processed int                             `json:"processed"`
	Success   int                             `json:"success"`
	Conflicts []models.AttendanceBulkConflict `json:"conflicts,omitempty"`
}

// Mark records one attendance decision and returns the updated sheet.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := models.ParseISODate(req.Date); err != nil {
		return nil, appErrors.Validation("date", "must be an ISO yyyy-MM-dd date")
	}

	present := *req.Present
	sheet, err := s.repo.ApplyMark(ctx, req.ID, func(current models.AttendanceSheet) (models.AttendanceSheet, error) {
		att, abs, streak := engine.RecordAttendance(current.AttendanceDates, current.AbsentDates, req.Date, present)
		current.AttendanceDates = att
		current.AbsentDates = abs
		current.CurrentStreak = streak
		return current, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.metrics.RecordAttendanceMark(present)
	s.logger.Info("attendance recorded",
		zap.String("student_id", sheet.StudentID),
		zap.String("date", req.Date),
		zap.Bool("present", present),
		zap.Int("streak", sheet.CurrentStreak))

	return &models.AttendanceResult{
		StudentID:     sheet.StudentID,
		Date:          req.Date,
		Present:       present,
		CurrentStreak: sheet.CurrentStreak,
		AttendedDays:  len(sheet.AttendanceDates),
		AbsentDays:    len(sheet.AbsentDates),
		Attendance:    sheet.AttendanceDates,
		Absences:      sheet.AbsentDates,
	}, nil
}

// BulkMark applies one date's decisions across a roster. Entries fail
// independently; a failed student never blocks the rest of the class.
func (s *AttendanceService) BulkMark(ctx context.Context, req BulkMarkRequest) (*BulkMarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	if _, err := models.ParseISODate(req.Date); err != nil {
		return nil, appErrors.Validation("date", "must be an ISO yyyy-MM-dd date")
	}

	result := &BulkMarkResult{Processed: len(req.Items)}
	for _, item := range req.Items {
		_, err := s.Mark(ctx, MarkAttendanceRequest{ID: item.ID, Date: req.Date, Present: item.Present})
		if err != nil {
			result.Conflicts = append(result.Conflicts, models.AttendanceBulkConflict{
				ID:     item.ID,
				Reason: appErrors.FromError(err).Message,
			})
			continue
		}
		result.Success++
	}
	return result, nil
}

// History returns a student's full recorded attendance.
func (s *AttendanceService) History(ctx context.Context, studentPK string) (*models.AttendanceHistory, error) {
	student, err := s.students.FindByID(ctx, studentPK)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return &models.AttendanceHistory{
		StudentID:       student.StudentID,
		FullName:        student.FullName,
		ClassType:       student.ClassType,
		AttendanceDates: student.AttendanceDates,
		AbsentDates:     student.AbsentDates,
		CurrentStreak:   student.CurrentStreak,
	}, nil
}

// ClassReport summarises attendance per student for a class and location.
func (s *AttendanceService) ClassReport(ctx context.Context, classType, location string) ([]models.AttendanceReportRow, error) {
	if classType != "" && !models.ClassType(classType).Valid() {
		return nil, appErrors.Validation("class_type", "must be BEGINNER, PRIMARY or SECONDARY")
	}
	start := time.Now()
	rows, err := s.repo.ClassReport(ctx, classType, location)
	s.metrics.ObserveDBQuery("attendance_class_report", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build attendance report")
	}
	return rows, nil
}
