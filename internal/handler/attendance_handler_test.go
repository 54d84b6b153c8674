package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/middleware"
	"github.com/thebethel/portal-api/internal/models"
	"github.com/thebethel/portal-api/internal/service"
	"github.com/thebethel/portal-api/pkg/response"
)

type attendanceRepoStub struct {
	sheets map[string]*models.AttendanceSheet
}

func (s *attendanceRepoStub) ApplyMark(ctx context.Context, studentPK string, apply func(models.AttendanceSheet) (models.AttendanceSheet, error)) (*models.AttendanceSheet, error) {
	sheet, ok := s.sheets[studentPK]
	if !ok {
		return nil, sql.ErrNoRows
	}
	updated, err := apply(*sheet)
	if err != nil {
		return nil, err
	}
	cp := updated
	s.sheets[studentPK] = &cp
	return &updated, nil
}

func (s *attendanceRepoStub) ClassReport(ctx context.Context, classType, location string) ([]models.AttendanceReportRow, error) {
	return nil, nil
}

type studentRepoStub struct{}

func (s *studentRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return nil, sql.ErrNoRows
}

func (s *studentRepoStub) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	return nil, sql.ErrNoRows
}

func buildAttendanceRouter(repo *attendanceRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{
				UserID:   "test-user",
				FullName: "Ms Adeyemi",
				Role:     models.UserRole(role),
			})
		}
		c.Next()
	})

	svc := service.NewAttendanceService(repo, &studentRepoStub{}, nil, nil, zap.NewNop())
	h := NewAttendanceHandler(svc)

	secured := router.Group("")
	secured.POST("/attendance/mark", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Mark)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAttendanceMarkEndpoint(t *testing.T) {
	repo := &attendanceRepoStub{sheets: map[string]*models.AttendanceSheet{
		"s1": {ID: "s1", StudentID: "STU-001"},
	}}
	router := buildAttendanceRouter(repo)

	payload, _ := json.Marshal(map[string]interface{}{
		"id": "s1",
		"date": "2026-03-01",
		"present": true,
	})
	req := httptest.NewRequest(http.MethodPost, "/attendance/mark", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(models.RoleTeacher))

	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data models.AttendanceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.CurrentStreak)
	assert.True(t, envelope.Data.Present)
}

func TestAttendanceMarkEndpointRejectsParent(t *testing.T) {
	router := buildAttendanceRouter(&attendanceRepoStub{sheets: map[string]*models.AttendanceSheet{}})

	payload, _ := json.Marshal(map[string]interface{}{
		"id": "s1",
		"date": "2026-03-01",
		"present": true,
	})
	req := httptest.NewRequest(http.MethodPost, "/attendance/mark", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(models.RoleParent))

	resp := performRequest(router, req)
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAttendanceMarkEndpointRequiresAuth(t *testing.T) {
	router := buildAttendanceRouter(&attendanceRepoStub{sheets: map[string]*models.AttendanceSheet{}})

	req := httptest.NewRequest(http.MethodPost, "/attendance/mark", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")

	resp := performRequest(router, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAttendanceMarkEndpointUnknownStudent(t *testing.T) {
	router := buildAttendanceRouter(&attendanceRepoStub{sheets: map[string]*models.AttendanceSheet{}})

	payload, _ := json.Marshal(map[string]interface{}{
		"id": "missing",
		"date": "2026-03-01",
		"present": true,
	})
	req := httptest.NewRequest(http.MethodPost, "/attendance/mark", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(models.RoleTeacher))

	resp := performRequest(router, req)
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestAttendanceMarkEndpointRoutesByRowID(t *testing.T) {
	repo := &attendanceRepoStub{sheets: map[string]*models.AttendanceSheet{
		"s1": {ID: "s1", StudentID: "STU-001"},
	}}
	router := buildAttendanceRouter(repo)

	// The external student number is not accepted in place of the row id.
	payload, _ := json.Marshal(map[string]interface{}{
		"student_id": "STU-001",
		"date": "2026-03-01",
		"present": true,
	})
	req := httptest.NewRequest(http.MethodPost, "/attendance/mark", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(models.RoleTeacher))

	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
