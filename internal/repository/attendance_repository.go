package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/thebethel/portal-api/internal/models"
)

// AttendanceRepository persists the attendance date sets and streak cache.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ApplyMark loads a student's attendance sheet under a row lock, lets apply
// derive the new sets and streak, and writes the result back in the same
// transaction. Reading and recomputing inside one transaction is what keeps
// the streak cache consistent with the date sets under concurrent marking.
func (r *AttendanceRepository) ApplyMark(ctx context.Context, studentPK string, apply func(models.AttendanceSheet) (models.AttendanceSheet, error)) (*models.AttendanceSheet, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin attendance tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	sheet := models.AttendanceSheet{ID: studentPK}
	row := tx.QueryRowxContext(ctx,
		`SELECT student_id, attendance_dates, absent_dates, current_streak FROM students WHERE id = $1 FOR UPDATE`,
		studentPK)
	if err := row.Scan(&sheet.StudentID, pq.Array(&sheet.AttendanceDates), pq.Array(&sheet.AbsentDates), &sheet.CurrentStreak); err != nil {
		return nil, err
	}

	updated, err := apply(sheet)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE students SET attendance_dates = $2, absent_dates = $3, current_streak = $4, updated_at = $5 WHERE id = $1`,
		studentPK, pq.Array(updated.AttendanceDates), pq.Array(updated.AbsentDates), updated.CurrentStreak, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("save attendance sheet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit attendance tx: %w", err)
	}
	return &updated, nil
}

// ClassReport summarises attendance per student for a class level and
// optional location.
func (r *AttendanceRepository) ClassReport(ctx context.Context, classType, location string) ([]models.AttendanceReportRow, error) {
	query := `SELECT student_id, full_name, class_type, location,
        COALESCE(array_length(attendance_dates, 1), 0) AS attended_days,
        COALESCE(array_length(absent_dates, 1), 0) AS absent_days,
        current_streak
        FROM students WHERE active = true`
	args := []interface{}{}
	if classType != "" {
		args = append(args, classType)
		query += fmt.Sprintf(" AND class_type = $%d", len(args))
	}
	if location != "" {
		args = append(args, location)
		query += fmt.Sprintf(" AND location = $%d", len(args))
	}
	query += " ORDER BY full_name ASC"

	var rows []models.AttendanceReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("attendance class report: %w", err)
	}
	return rows, nil
}
