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

// HomeworkRepository manages persistence for homework assignments.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs a HomeworkRepository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// List returns homework assignments per provided filter.
func (r *HomeworkRepository) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
	base := "FROM homework"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassType != "" {
		where = append(where, fmt.Sprintf("class_type = $%d", len(args)+1))
		args = append(args, filter.ClassType)
	}
	if filter.DueAfter != nil {
		where = append(where, fmt.Sprintf("due_date >= $%d", len(args)+1))
		args = append(args, *filter.DueAfter)
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size
	query := fmt.Sprintf(`SELECT id, title, description, class_type, due_date, created_by, created_at, updated_at
%s WHERE %s ORDER BY due_date DESC, created_at DESC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var items []models.Homework
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list homework: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count homework: %w", err)
	}
	return items, total, nil
}

// FindByID fetches one assignment.
func (r *HomeworkRepository) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	const query = `SELECT id, title, description, class_type, due_date, created_by, created_at, updated_at FROM homework WHERE id = $1`
	var hw models.Homework
	if err := r.db.GetContext(ctx, &hw, query, id); err != nil {
		return nil, err
	}
	return &hw, nil
}

// Create inserts a new assignment.
func (r *HomeworkRepository) Create(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hw.CreatedAt.IsZero() {
		hw.CreatedAt = now
	}
	hw.UpdatedAt = now
	const query = `INSERT INTO homework (id, title, description, class_type, due_date, created_by, created_at, updated_at)
        VALUES (:id, :title, :description, :class_type, :due_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// Update modifies an existing assignment.
func (r *HomeworkRepository) Update(ctx context.Context, hw *models.Homework) error {
	hw.UpdatedAt = time.Now().UTC()
	const query = `UPDATE homework SET title = :title, description = :description, class_type = :class_type, due_date = :due_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("update homework: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *HomeworkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM homework WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	return nil
}
