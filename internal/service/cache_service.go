package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
)

// SummaryCacheStore abstracts persistence for the cached finance summary.
type SummaryCacheStore interface {
	GetMonthlySummary(ctx context.Context) ([]models.MonthlyExpenseSummary, error)
	SetMonthlySummary(ctx context.Context, rows []models.MonthlyExpenseSummary, ttl time.Duration) error
	InvalidateSummary(ctx context.Context) error
}

// SummaryCacheService fronts the finance monthly summary with Redis. Cache
// trouble never fails a request; lookups degrade to the database and writes
// are logged and dropped.
type SummaryCacheService struct {
	store   SummaryCacheStore
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewSummaryCacheService constructs the summary cache service.
func NewSummaryCacheService(store SummaryCacheStore, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *SummaryCacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCacheService{store: store, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether summary caching is active.
func (s *SummaryCacheService) Enabled() bool {
	return s != nil && s.enabled && s.store != nil
}

// MonthlySummary returns the cached rows and true on a hit.
func (s *SummaryCacheService) MonthlySummary(ctx context.Context) ([]models.MonthlyExpenseSummary, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	rows, err := s.store.GetMonthlySummary(ctx)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if !errors.Is(err, appErrors.ErrCacheMiss) && s.logger != nil {
			s.logger.Warn("summary cache lookup failed", zap.Error(err))
		}
		return nil, false
	}
	s.metrics.RecordCacheOperation(true, duration)
	return rows, true
}

// Store caches the summary rows with the configured TTL.
func (s *SummaryCacheService) Store(ctx context.Context, rows []models.MonthlyExpenseSummary) error {
	if !s.Enabled() {
		return nil
	}
	start := time.Now()
	err := s.store.SetMonthlySummary(ctx, rows, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil && s.logger != nil {
		s.logger.Warn("summary cache write failed", zap.Error(err))
	}
	return err
}

// Invalidate drops the cached summary.
func (s *SummaryCacheService) Invalidate(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.store.InvalidateSummary(ctx); err != nil {
		if s.logger != nil {
			s.logger.Warn("summary cache invalidate failed", zap.Error(err))
		}
		return err
	}
	return nil
}
