package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
)

// The summary is cached under a single known key; writes replace it and
// invalidation deletes it, so no key scanning is needed.
const monthlySummaryKey = "portal:finance:summary:monthly"

// SummaryCacheRepository stores the finance monthly summary in Redis.
type SummaryCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSummaryCacheRepository constructs the summary cache repository.
func NewSummaryCacheRepository(client *redis.Client, logger *zap.Logger) *SummaryCacheRepository {
	return &SummaryCacheRepository{client: client, logger: logger}
}

// GetMonthlySummary returns the cached summary rows, or ErrCacheMiss when
// nothing is cached.
func (r *SummaryCacheRepository) GetMonthlySummary(ctx context.Context) ([]models.MonthlyExpenseSummary, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, monthlySummaryKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", monthlySummaryKey, err)
	}

	var rows []models.MonthlyExpenseSummary
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal cached summary: %w", err)
	}

	return rows, nil
}

// SetMonthlySummary replaces the cached summary with the provided rows.
func (r *SummaryCacheRepository) SetMonthlySummary(ctx context.Context, rows []models.MonthlyExpenseSummary, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal summary rows: %w", err)
	}

	if err := r.client.Set(ctx, monthlySummaryKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", monthlySummaryKey, err)
	}

	return nil
}

// InvalidateSummary drops the cached summary after an expense write.
func (r *SummaryCacheRepository) InvalidateSummary(ctx context.Context) error {
	if r.client == nil {
		return nil
	}

	if err := r.client.Del(ctx, monthlySummaryKey).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", monthlySummaryKey, err)
	}

	return nil
}
