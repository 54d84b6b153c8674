package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
)

type mockRewardRepo struct {
	cachedPoints map[string]int
	ledgers      map[string][]models.RewardEntry
	summaries    map[string]*models.RewardSummary
}

func (m *mockRewardRepo) ListByStudent(ctx context.Context, studentPK string) ([]models.RewardEntry, error) {
	return m.ledgers[studentPK], nil
}

func (m *mockRewardRepo) Grant(ctx context.Context, studentPK string, decide func(cachedPoints int, ledger []models.RewardEntry) (models.RewardEntry, int, error)) (*models.RewardEntry, int, error) {
	cached, ok := m.cachedPoints[studentPK]
	if !ok {
		return nil, 0, sql.ErrNoRows
	}
	entry, points, err := decide(cached, m.ledgers[studentPK])
	if err != nil {
		return nil, 0, err
	}
	entry.ID = "generated"
	entry.StudentPK = studentPK
	entry.Position = len(m.ledgers[studentPK])
	entry.CreatedAt = time.Now()
	m.ledgers[studentPK] = append(m.ledgers[studentPK], entry)
	m.cachedPoints[studentPK] = points
	return &entry, points, nil
}

func (m *mockRewardRepo) Summary(ctx context.Context, studentPK string) (*models.RewardSummary, error) {
	if s, ok := m.summaries[studentPK]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newRewardFixture(cached int, ledger []models.RewardEntry) (*RewardService, *mockRewardRepo) {
	repo := &mockRewardRepo{
		cachedPoints: map[string]int{"s1": cached},
		ledgers:      map[string][]models.RewardEntry{"s1": ledger},
	}
	return NewRewardService(repo, nil, validator.New(), zap.NewNop()), repo
}

func TestRewardGrantAppendsAndUpdatesBalance(t *testing.T) {
	svc, repo := newRewardFixture(5, []models.RewardEntry{
		{Date: "2026-02-01", Dollars: 5, Reason: "memory verse", Teacher: "Ms Adeyemi", Position: 0},
	})

	result, err := svc.Grant(context.Background(), "s1", GrantRewardRequest{
		Date: "2026-03-01", Dollars: 3, Reason: "best behaviour",
	}, "Ms Adeyemi")
	require.NoError(t, err)
	assert.Equal(t, 8, result.DollarPoints)
	assert.Equal(t, 1, result.Entry.Position)
	assert.Equal(t, "Ms Adeyemi", result.Entry.Teacher)
	assert.Len(t, repo.ledgers["s1"], 2)
}

func TestRewardGrantKeepsCachedBalanceOnNonPositiveSum(t *testing.T) {
	// Historical ledgers can carry unparseable amounts that decode to zero.
	// When the recomputed total is not positive the cached balance stands.
	svc, repo := newRewardFixture(12, []models.RewardEntry{
		{Date: "2026-02-01", Dollars: -6, Reason: "correction", Teacher: "Ms Adeyemi", Position: 0},
	})

	result, err := svc.Grant(context.Background(), "s1", GrantRewardRequest{
		Date: "2026-03-01", Dollars: 6, Reason: "quiz",
	}, "Ms Adeyemi")
	require.NoError(t, err)
	assert.Equal(t, 12, result.DollarPoints)
	assert.Equal(t, 12, repo.cachedPoints["s1"])
	assert.Len(t, repo.ledgers["s1"], 2)
}

func TestRewardGrantRejectsNonPositiveDollars(t *testing.T) {
	svc, _ := newRewardFixture(0, nil)

	_, err := svc.Grant(context.Background(), "s1", GrantRewardRequest{
		Date: "2026-03-01", Dollars: 0, Reason: "quiz",
	}, "Ms Adeyemi")
	require.Error(t, err)

	_, err = svc.Grant(context.Background(), "s1", GrantRewardRequest{
		Date: "2026-03-01", Dollars: -2, Reason: "quiz",
	}, "Ms Adeyemi")
	require.Error(t, err)
}

func TestRewardGrantRequiresKnownTeacher(t *testing.T) {
	svc, _ := newRewardFixture(0, nil)

	_, err := svc.Grant(context.Background(), "s1", GrantRewardRequest{
		Date: "2026-03-01", Dollars: 2, Reason: "quiz",
	}, "")
	require.Error(t, err)
}

func TestRewardGrantUnknownStudent(t *testing.T) {
	svc, _ := newRewardFixture(0, nil)

	_, err := svc.Grant(context.Background(), "missing", GrantRewardRequest{
		Date: "2026-03-01", Dollars: 2, Reason: "quiz",
	}, "Ms Adeyemi")
	require.Error(t, err)
}

func TestRewardListPreservesOrder(t *testing.T) {
	svc, _ := newRewardFixture(8, []models.RewardEntry{
		{Date: "2026-02-01", Dollars: 5, Position: 0},
		{Date: "2026-02-08", Dollars: 3, Position: 1},
	})

	entries, err := svc.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].Position)
	assert.Equal(t, 1, entries[1].Position)
}

func TestRewardSummary(t *testing.T) {
	repo := &mockRewardRepo{summaries: map[string]*models.RewardSummary{
		"s1": {StudentID: "STU-001", DollarPoints: 8, EntryCount: 2},
	}}
	svc := NewRewardService(repo, nil, validator.New(), zap.NewNop())

	summary, err := svc.Summary(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 8, summary.DollarPoints)

	_, err = svc.Summary(context.Background(), "missing")
	require.Error(t, err)
}

func TestRewardGrantInstrumented(t *testing.T) {
	repo := &mockRewardRepo{
		cachedPoints: map[string]int{"s1": 0},
		ledgers:      map[string][]models.RewardEntry{"s1": nil},
	}
	metrics := NewMetricsService()
	svc := NewRewardService(repo, metrics, validator.New(), zap.NewNop())

	_, err := svc.Grant(context.Background(), "s1", GrantRewardRequest{
		Date: "2026-03-01", Dollars: 5, Reason: "memory verse",
	}, "Ms Adeyemi")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), metrics.Snapshot().RewardsGranted)
}
