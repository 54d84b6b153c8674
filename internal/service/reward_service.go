package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/engine"
	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
)

type rewardRepository interface {
	ListByStudent(ctx context.Context, studentPK string) ([]models.RewardEntry, error)
	Grant(ctx context.Context, studentPK string, decide func(cachedPoints int, ledger []models.RewardEntry) (models.RewardEntry, int, error)) (*models.RewardEntry, int, error)
	Summary(ctx context.Context, studentPK string) (*models.RewardSummary, error)
}

// RewardService appends to the reward ledger and keeps the cached point
// balance in step with it.
type RewardService struct {
	repo      rewardRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRewardService constructs the reward service. A nil metrics service
// disables instrumentation.
func NewRewardService(repo rewardRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RewardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RewardService{repo: repo, metrics: metrics, validator: validate, logger: logger}
}

// GrantRewardRequest describes the grant payload. The teacher name is
// stamped from the caller's claims, never taken from the client.
type GrantRewardRequest struct {
	Date    string `json:"date" validate:"required"`
	Dollars int    `json:"dollars" validate:"required,gt=0"`
	Reason  string `json:"reason" validate:"required"`
}

// GrantResult returns the stored entry and the resulting balance.
type GrantResult struct {
	Entry        models.RewardEntry `json:"entry"`
	DollarPoints int                `json:"dollar_points"`
}

// Grant validates the payload and appends a reward entry. The new balance is
// recomputed from the full ledger inside the repository transaction; a
// non-positive recomputed sum is treated as no information and the cached
// balance is kept.
func (s *RewardService) Grant(ctx context.Context, studentPK string, req GrantRewardRequest, grantedBy string) (*GrantResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reward payload")
	}
	if _, err := models.ParseISODate(req.Date); err != nil {
		return nil, appErrors.Validation("date", "must be an ISO yyyy-MM-dd date")
	}
	if grantedBy == "" {
		return nil, appErrors.Validation("teacher", "granting user is unknown")
	}

	entry, points, err := s.repo.Grant(ctx, studentPK, func(cached int, ledger []models.RewardEntry) (models.RewardEntry, int, error) {
		next := models.RewardEntry{
			Date:    req.Date,
			Dollars: models.DollarAmount(req.Dollars),
			Reason:  req.Reason,
			Teacher: grantedBy,
		}
		_, total := engine.AppendReward(ledger, next)
		return next, engine.ResolvePoints(total, cached), nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grant reward")
	}

	s.metrics.RecordRewardGrant(req.Dollars)
	s.logger.Info("reward granted",
		zap.String("student_pk", studentPK),
		zap.Int("dollars", req.Dollars),
		zap.String("teacher", grantedBy))

	return &GrantResult{Entry: *entry, DollarPoints: points}, nil
}

// List returns the full ledger for a student in insertion order.
func (s *RewardService) List(ctx context.Context, studentPK string) ([]models.RewardEntry, error) {
	entries, err := s.repo.ListByStudent(ctx, studentPK)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rewards")
	}
	return entries, nil
}

// Summary returns aggregated reward information.
func (s *RewardService) Summary(ctx context.Context, studentPK string) (*models.RewardSummary, error) {
	summary, err := s.repo.Summary(ctx, studentPK)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise rewards")
	}
	return summary, nil
}
