package models

import (
	"time"

	"github.com/lib/pq"
)

// ClassType groups students by teaching level.
type ClassType string

const (
	ClassBeginner  ClassType = "BEGINNER"
	ClassPrimary   ClassType = "PRIMARY"
	ClassSecondary ClassType = "SECONDARY"
)

// Valid returns true when the class type is a supported value.
func (c ClassType) Valid() bool {
	switch c {
	case ClassBeginner, ClassPrimary, ClassSecondary:
		return true
	default:
		return false
	}
}

// Student represents one enrolled student record. AttendanceDates and
// AbsentDates are disjoint sets of ISO yyyy-MM-dd strings. CurrentStreak and
// DollarPoints are cached derived values recomputed on every mutating write;
// the date sets and reward ledger remain the source of truth.
type Student struct {
	ID              string         `db:"id" json:"id"`
	StudentID       string         `db:"student_id" json:"student_id"`
	FullName        string         `db:"full_name" json:"full_name"`
	ClassType       ClassType      `db:"class_type" json:"class_type"`
	Location        string         `db:"location" json:"location"`
	AttendanceDates pq.StringArray `db:"attendance_dates" json:"attendance_dates"`
	AbsentDates     pq.StringArray `db:"absent_dates" json:"absent_dates"`
	CurrentStreak   int            `db:"current_streak" json:"current_streak"`
	DollarPoints    int            `db:"dollar_points" json:"dollar_points"`
	Active          bool           `db:"active" json:"active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ClassType string
	Location  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
