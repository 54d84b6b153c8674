package models

import "time"

// ISODateLayout is the wire format for attendance dates.
const ISODateLayout = "2006-01-02"

// AttendanceSheet is the slice of a student row the attendance flow reads and
// writes. Loaded under row lock so a recompute never runs against stale sets.
type AttendanceSheet struct {
	ID              string   `db:"id"`
	StudentID       string   `db:"student_id"`
	AttendanceDates []string `db:"attendance_dates"`
	AbsentDates     []string `db:"absent_dates"`
	CurrentStreak   int      `db:"current_streak"`
}

// AttendanceResult reports the outcome of a single mark operation.
type AttendanceResult struct {
	StudentID     string   `json:"student_id"`
	Date          string   `json:"date"`
	Present       bool     `json:"present"`
	CurrentStreak int      `json:"current_streak"`
	AttendedDays  int      `json:"attended_days"`
	AbsentDays    int      `json:"absent_days"`
	Attendance    []string `json:"attendance_dates"`
	Absences      []string `json:"absent_dates"`
}

// AttendanceBulkConflict captures a roster entry that failed during bulk
// marking. ID echoes the student row id the caller submitted.
type AttendanceBulkConflict struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// AttendanceHistory returns a student's full recorded history.
type AttendanceHistory struct {
	StudentID       string    `json:"student_id"`
	FullName        string    `json:"full_name"`
	ClassType       ClassType `json:"class_type"`
	AttendanceDates []string  `json:"attendance_dates"`
	AbsentDates     []string  `json:"absent_dates"`
	CurrentStreak   int       `json:"current_streak"`
}

// AttendanceReportRow is one line of the class attendance report.
type AttendanceReportRow struct {
	StudentID     string    `db:"student_id" json:"student_id"`
	FullName      string    `db:"full_name" json:"full_name"`
	ClassType     ClassType `db:"class_type" json:"class_type"`
	Location      string    `db:"location" json:"location"`
	AttendedDays  int       `db:"attended_days" json:"attended_days"`
	AbsentDays    int       `db:"absent_days" json:"absent_days"`
	CurrentStreak int       `db:"current_streak" json:"current_streak"`
}

// ParseISODate validates an ISO yyyy-MM-dd string.
func ParseISODate(value string) (time.Time, error) {
	return time.Parse(ISODateLayout, value)
}
