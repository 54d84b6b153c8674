package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
)

type fakeSummaryStore struct {
	rows    []models.MonthlyExpenseSummary
	hasRows bool
	lastTTL time.Duration
}

func (f *fakeSummaryStore) GetMonthlySummary(ctx context.Context) ([]models.MonthlyExpenseSummary, error) {
	if !f.hasRows {
		return nil, appErrors.ErrCacheMiss
	}
	return f.rows, nil
}

func (f *fakeSummaryStore) SetMonthlySummary(ctx context.Context, rows []models.MonthlyExpenseSummary, ttl time.Duration) error {
	f.rows = rows
	f.hasRows = true
	f.lastTTL = ttl
	return nil
}

func (f *fakeSummaryStore) InvalidateSummary(ctx context.Context) error {
	f.rows = nil
	f.hasRows = false
	return nil
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	store := &fakeSummaryStore{}
	metrics := NewMetricsService()
	svc := NewSummaryCacheService(store, metrics, time.Minute, zap.NewNop(), true)

	_, hit := svc.MonthlySummary(context.Background())
	assert.False(t, hit)

	rows := []models.MonthlyExpenseSummary{{Month: "2026-03", Total: 120, EntryCount: 3}}
	require.NoError(t, svc.Store(context.Background(), rows))
	assert.Equal(t, time.Minute, store.lastTTL)

	cached, hit := svc.MonthlySummary(context.Background())
	require.True(t, hit)
	assert.Equal(t, rows, cached)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
}

func TestSummaryCacheInvalidateDropsRows(t *testing.T) {
	store := &fakeSummaryStore{}
	svc := NewSummaryCacheService(store, nil, time.Minute, zap.NewNop(), true)

	require.NoError(t, svc.Store(context.Background(), []models.MonthlyExpenseSummary{{Month: "2026-03"}}))
	require.NoError(t, svc.Invalidate(context.Background()))

	_, hit := svc.MonthlySummary(context.Background())
	assert.False(t, hit)
}

func TestSummaryCacheDisabledIsInert(t *testing.T) {
	svc := NewSummaryCacheService(nil, nil, time.Minute, zap.NewNop(), false)

	assert.False(t, svc.Enabled())
	_, hit := svc.MonthlySummary(context.Background())
	assert.False(t, hit)
	assert.NoError(t, svc.Store(context.Background(), nil))
	assert.NoError(t, svc.Invalidate(context.Background()))
}
