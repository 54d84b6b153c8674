package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
)

type mockAttendanceRepo struct {
	sheets     map[string]*models.AttendanceSheet
	reportRows []models.AttendanceReportRow
	reportErr  error
}

func (m *mockAttendanceRepo) ApplyMark(ctx context.Context, studentPK string, apply func(models.AttendanceSheet) (models.AttendanceSheet, error)) (*models.AttendanceSheet, error) {
	sheet, ok := m.sheets[studentPK]
	if !ok {
		return nil, sql.ErrNoRows
	}
	updated, err := apply(*sheet)
	if err != nil {
		return nil, err
	}
	cp := updated
	m.sheets[studentPK] = &cp
	return &updated, nil
}

func (m *mockAttendanceRepo) ClassReport(ctx context.Context, classType, location string) ([]models.AttendanceReportRow, error) {
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return m.reportRows, nil
}

type mockAttendanceStudents struct {
	items map[string]*models.Student
}

func (m *mockAttendanceStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceStudents) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	for _, s := range m.items {
		if s.StudentID == studentID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func boolPtr(v bool) *bool { return &v }

func newAttendanceFixture(sheet models.AttendanceSheet) (*AttendanceService, *mockAttendanceRepo) {
	repo := &mockAttendanceRepo{sheets: map[string]*models.AttendanceSheet{sheet.ID: &sheet}}
	svc := NewAttendanceService(repo, &mockAttendanceStudents{}, nil, validator.New(), zap.NewNop())
	return svc, repo
}

func TestAttendanceMarkPresentGrowsStreak(t *testing.T) {
	svc, _ := newAttendanceFixture(models.AttendanceSheet{ID: "s1", StudentID: "STU-001"})

	result, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ID: "s1", Date: "2026-03-01", Present: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, []string{"2026-03-01"}, result.Attendance)

	result, err = svc.Mark(context.Background(), MarkAttendanceRequest{
		ID: "s1", Date: "2026-03-08", Present: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 2, result.AttendedDays)
}

func TestAttendanceMarkAbsentResetsStreak(t *testing.T) {
	svc, _ := newAttendanceFixture(models.AttendanceSheet{
		ID:              "s1",
		StudentID:       "STU-001",
		AttendanceDates: []string{"2026-03-01", "2026-03-08"},
		CurrentStreak:   2,
	})

	result, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ID: "s1", Date: "2026-03-15", Present: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, []string{"2026-03-15"}, result.Absences)
	assert.Equal(t, 2, result.AttendedDays)
}

func TestAttendanceMarkIsIdempotent(t *testing.T) {
	svc, repo := newAttendanceFixture(models.AttendanceSheet{ID: "s1", StudentID: "STU-001"})

	req := MarkAttendanceRequest{ID: "s1", Date: "2026-03-01", Present: boolPtr(true)}
	first, err := svc.Mark(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Mark(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Attendance, second.Attendance)
	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.Len(t, repo.sheets["s1"].AttendanceDates, 1)
}

func TestAttendanceMarkFlipsAbsentToPresent(t *testing.T) {
	svc, repo := newAttendanceFixture(models.AttendanceSheet{
		ID:              "s1",
		StudentID:       "STU-001",
		AttendanceDates: []string{"2026-03-01", "2026-03-08"},
		AbsentDates:     []string{"2026-03-15"},
	})

	result, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ID: "s1", Date: "2026-03-15", Present: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.CurrentStreak)
	assert.Empty(t, result.Absences)
	assert.Empty(t, repo.sheets["s1"].AbsentDates)
}

func TestAttendanceMarkRejectsBadDate(t *testing.T) {
	svc, _ := newAttendanceFixture(models.AttendanceSheet{ID: "s1", StudentID: "STU-001"})

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ID: "s1", Date: "01/03/2026", Present: boolPtr(true),
	})
	require.Error(t, err)
}

func TestAttendanceMarkUnknownStudent(t *testing.T) {
	svc, _ := newAttendanceFixture(models.AttendanceSheet{ID: "s1", StudentID: "STU-001"})

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ID: "missing", Date: "2026-03-01", Present: boolPtr(true),
	})
	require.Error(t, err)
}

func TestAttendanceBulkMarkCollectsConflicts(t *testing.T) {
	svc, repo := newAttendanceFixture(models.AttendanceSheet{ID: "s1", StudentID: "STU-001"})
	repo.sheets["s2"] = &models.AttendanceSheet{ID: "s2", StudentID: "STU-002"}

	result, err := svc.BulkMark(context.Background(), BulkMarkRequest{
		Date: "2026-03-01",
		Items: []BulkMarkItem{
			{ID: "s1", Present: boolPtr(true)},
			{ID: "missing", Present: boolPtr(true)},
			{ID: "s2", Present: boolPtr(false)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Success)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "missing", result.Conflicts[0].ID)
}

func TestAttendanceHistory(t *testing.T) {
	repo := &mockAttendanceRepo{sheets: map[string]*models.AttendanceSheet{}}
	students := &mockAttendanceStudents{items: map[string]*models.Student{
		"s1": {
			ID:              "s1",
			StudentID:       "STU-001",
			FullName:        "Amara Obi",
			ClassType:       models.ClassPrimary,
			AttendanceDates: []string{"2026-03-01"},
			CurrentStreak:   1,
		},
	}}
	svc := NewAttendanceService(repo, students, nil, validator.New(), zap.NewNop())

	history, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "STU-001", history.StudentID)
	assert.Equal(t, 1, history.CurrentStreak)

	_, err = svc.History(context.Background(), "missing")
	require.Error(t, err)
}

func TestAttendanceClassReportValidatesClassType(t *testing.T) {
	svc, repo := newAttendanceFixture(models.AttendanceSheet{ID: "s1", StudentID: "STU-001"})
	repo.reportRows = []models.AttendanceReportRow{{StudentID: "STU-001", AttendedDays: 4}}

	rows, err := svc.ClassReport(context.Background(), "PRIMARY", "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.ClassReport(context.Background(), "KINDERGARTEN", "")
	require.Error(t, err)
}

func TestAttendanceInstrumentsMarksAndReports(t *testing.T) {
	repo := &mockAttendanceRepo{sheets: map[string]*models.AttendanceSheet{
		"s1": {ID: "s1", StudentID: "STU-001"},
	}}
	metrics := NewMetricsService()
	svc := NewAttendanceService(repo, &mockAttendanceStudents{}, metrics, validator.New(), zap.NewNop())

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ID: "s1", Date: "2026-03-01", Present: boolPtr(true),
	})
	require.NoError(t, err)
	_, err = svc.ClassReport(context.Background(), "PRIMARY", "")
	require.NoError(t, err)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.AttendanceMarks)
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
}
