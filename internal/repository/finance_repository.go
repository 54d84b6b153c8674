package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thebethel/portal-api/internal/models"
)

// FinanceRepository manages persistence for expense entries.
type FinanceRepository struct {
	db *sqlx.DB
}

// NewFinanceRepository constructs a FinanceRepository.
func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

// List returns expenses per provided filter.
func (r *FinanceRepository) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error) {
	base := "FROM expenses"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size
	query := fmt.Sprintf(`SELECT id, date, amount, purpose, recorded_by, created_at
%s WHERE %s ORDER BY date DESC, created_at DESC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var expenses []models.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}
	return expenses, total, nil
}

// Create inserts a new expense entry.
func (r *FinanceRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO expenses (id, date, amount, purpose, recorded_by, created_at)
        VALUES (:id, :date, :amount, :purpose, :recorded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// MonthlySummary groups spending by calendar month. Dates are ISO yyyy-MM-dd
// strings, so the month is the first seven characters.
func (r *FinanceRepository) MonthlySummary(ctx context.Context) ([]models.MonthlyExpenseSummary, error) {
	const query = `SELECT SUBSTRING(date FROM 1 FOR 7) AS month, COALESCE(SUM(amount),0) AS total, COUNT(*) AS entry_count
        FROM expenses GROUP BY SUBSTRING(date FROM 1 FOR 7) ORDER BY month DESC`
	var rows []models.MonthlyExpenseSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("monthly expense summary: %w", err)
	}
	return rows, nil
}
