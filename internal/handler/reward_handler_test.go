package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/middleware"
	"github.com/thebethel/portal-api/internal/models"
	"github.com/thebethel/portal-api/internal/service"
)

type rewardRepoStub struct {
	cached  map[string]int
	ledgers map[string][]models.RewardEntry
}

func (s *rewardRepoStub) ListByStudent(ctx context.Context, studentPK string) ([]models.RewardEntry, error) {
	return s.ledgers[studentPK], nil
}

func (s *rewardRepoStub) Grant(ctx context.Context, studentPK string, decide func(cachedPoints int, ledger []models.RewardEntry) (models.RewardEntry, int, error)) (*models.RewardEntry, int, error) {
	cached, ok := s.cached[studentPK]
	if !ok {
		return nil, 0, sql.ErrNoRows
	}
	entry, points, err := decide(cached, s.ledgers[studentPK])
	if err != nil {
		return nil, 0, err
	}
	entry.ID = "generated"
	entry.StudentPK = studentPK
	entry.Position = len(s.ledgers[studentPK])
	entry.CreatedAt = time.Now()
	s.ledgers[studentPK] = append(s.ledgers[studentPK], entry)
	s.cached[studentPK] = points
	return &entry, points, nil
}

func (s *rewardRepoStub) Summary(ctx context.Context, studentPK string) (*models.RewardSummary, error) {
	return nil, sql.ErrNoRows
}

func buildRewardRouter(repo *rewardRepoStub) *gin.Engine {
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

	svc := service.NewRewardService(repo, nil, nil, zap.NewNop())
	h := NewRewardHandler(svc)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	router.POST("/students/:id/rewards", staff, h.Grant)
	router.GET("/students/:id/rewards", staff, h.List)
	return router
}

func TestRewardGrantEndpoint(t *testing.T) {
	repo := &rewardRepoStub{
		cached:  map[string]int{"s1": 5},
		ledgers: map[string][]models.RewardEntry{"s1": {{Date: "2026-02-01", Dollars: 5, Position: 0}}},
	}
	router := buildRewardRouter(repo)

	payload, _ := json.Marshal(map[string]interface{}{
		"date":    "2026-03-01",
		"dollars": 3,
		"reason":  "best behaviour",
	})
	req := httptest.NewRequest(http.MethodPost, "/students/s1/rewards", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(models.RoleTeacher))

	resp := performRequest(router, req)
	require.Equal(t, http.StatusCreated, resp.Code)

	var envelope struct {
		Data service.GrantResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 8, envelope.Data.DollarPoints)
	assert.Equal(t, "Ms Adeyemi", envelope.Data.Entry.Teacher)
}

func TestRewardGrantEndpointRejectsZeroDollars(t *testing.T) {
	repo := &rewardRepoStub{cached: map[string]int{"s1": 0}, ledgers: map[string][]models.RewardEntry{}}
	router := buildRewardRouter(repo)

	payload, _ := json.Marshal(map[string]interface{}{
		"date":    "2026-03-01",
		"dollars": 0,
		"reason":  "quiz",
	})
	req := httptest.NewRequest(http.MethodPost, "/students/s1/rewards", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(models.RoleTeacher))

	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRewardListEndpoint(t *testing.T) {
	repo := &rewardRepoStub{
		cached: map[string]int{"s1": 8},
		ledgers: map[string][]models.RewardEntry{"s1": {
			{ID: "r1", Date: "2026-02-01", Dollars: 5, Position: 0},
			{ID: "r2", Date: "2026-02-08", Dollars: 3, Position: 1},
		}},
	}
	router := buildRewardRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/students/s1/rewards", nil)
	req.Header.Set("X-Test-Role", string(models.RoleAdmin))

	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data []models.RewardEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, 0, envelope.Data[0].Position)
}
