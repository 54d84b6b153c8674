package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thebethel/portal-api/internal/models"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
)

type financeRepository interface {
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error)
	Create(ctx context.Context, expense *models.Expense) error
	MonthlySummary(ctx context.Context) ([]models.MonthlyExpenseSummary, error)
}

// FinanceService handles expense tracking. The monthly summary is served
// through the Redis cache when enabled and invalidated on every write.
type FinanceService struct {
	repo      financeRepository
	cache     *SummaryCacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFinanceService constructs the finance service.
func NewFinanceService(repo financeRepository, cache *SummaryCacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// RecordExpenseRequest describes the create payload.
type RecordExpenseRequest struct {
	Date    string `json:"date" validate:"required"`
	Amount  int    `json:"amount" validate:"required,gt=0"`
	Purpose string `json:"purpose" validate:"required"`
}

// List returns expenses with pagination.
func (s *FinanceService) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	expenses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expenses")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return expenses, pagination, nil
}

// Record stores a new expense entry and invalidates the summary cache.
func (s *FinanceService) Record(ctx context.Context, req RecordExpenseRequest, recordedBy string) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expense payload")
	}
	if _, err := models.ParseISODate(req.Date); err != nil {
		return nil, appErrors.Validation("date", "must be an ISO yyyy-MM-dd date")
	}
	expense := &models.Expense{
		Date:       req.Date,
		Amount:     req.Amount,
		Purpose:    req.Purpose,
		RecordedBy: recordedBy,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record expense")
	}
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx)
	}
	return expense, nil
}

// MonthlySummary returns spending aggregated per calendar month.
func (s *FinanceService) MonthlySummary(ctx context.Context) ([]models.MonthlyExpenseSummary, bool, error) {
	if cached, hit := s.cache.MonthlySummary(ctx); hit {
		return cached, true, nil
	}

	start := time.Now()
	rows, err := s.repo.MonthlySummary(ctx)
	s.metrics.ObserveDBQuery("finance_monthly_summary", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise expenses")
	}
	_ = s.cache.Store(ctx, rows)
	return rows, false, nil
}
