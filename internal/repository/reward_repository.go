package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thebethel/portal-api/internal/models"
)

// RewardRepository persists the append-only reward ledger and the cached
// point balance on the student row.
type RewardRepository struct {
	db *sqlx.DB
}

// NewRewardRepository constructs a RewardRepository.
func NewRewardRepository(db *sqlx.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// ListByStudent returns the full ledger in insertion order.
func (r *RewardRepository) ListByStudent(ctx context.Context, studentPK string) ([]models.RewardEntry, error) {
	const query = `SELECT id, student_pk, date, dollars, reason, teacher, position, created_at
        FROM reward_entries WHERE student_pk = $1 ORDER BY position ASC`
	var entries []models.RewardEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentPK); err != nil {
		return nil, fmt.Errorf("list reward entries: %w", err)
	}
	return entries, nil
}

// Grant locks the student row, hands the current cached balance and ledger to
// decide, then inserts the produced entry and writes the new balance inside
// the same transaction so the cache can never drift from the ledger it was
// computed over.
func (r *RewardRepository) Grant(ctx context.Context, studentPK string, decide func(cachedPoints int, ledger []models.RewardEntry) (models.RewardEntry, int, error)) (*models.RewardEntry, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin reward tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var cached int
	if err := tx.GetContext(ctx, &cached, `SELECT dollar_points FROM students WHERE id = $1 FOR UPDATE`, studentPK); err != nil {
		return nil, 0, err
	}

	var ledger []models.RewardEntry
	if err := tx.SelectContext(ctx, &ledger,
		`SELECT id, student_pk, date, dollars, reason, teacher, position, created_at FROM reward_entries WHERE student_pk = $1 ORDER BY position ASC`,
		studentPK); err != nil {
		return nil, 0, fmt.Errorf("load reward ledger: %w", err)
	}

	entry, newPoints, err := decide(cached, ledger)
	if err != nil {
		return nil, 0, err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.StudentPK = studentPK
	entry.Position = len(ledger)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO reward_entries (id, student_pk, date, dollars, reason, teacher, position, created_at)
         VALUES (:id, :student_pk, :date, :dollars, :reason, :teacher, :position, :created_at)`,
		entry); err != nil {
		return nil, 0, fmt.Errorf("insert reward entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE students SET dollar_points = $2, updated_at = $3 WHERE id = $1`,
		studentPK, newPoints, time.Now().UTC()); err != nil {
		return nil, 0, fmt.Errorf("update dollar points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit reward tx: %w", err)
	}
	return &entry, newPoints, nil
}

// Summary aggregates the ledger for a student.
func (r *RewardRepository) Summary(ctx context.Context, studentPK string) (*models.RewardSummary, error) {
	const query = `SELECT s.student_id, s.dollar_points,
        (SELECT COUNT(*) FROM reward_entries e WHERE e.student_pk = s.id) AS entry_count,
        (SELECT MAX(e.created_at) FROM reward_entries e WHERE e.student_pk = s.id) AS last_grant_at
        FROM students s WHERE s.id = $1`
	var summary models.RewardSummary
	var lastGrant sql.NullTime
	if err := r.db.QueryRowxContext(ctx, query, studentPK).Scan(&summary.StudentID, &summary.DollarPoints, &summary.EntryCount, &lastGrant); err != nil {
		return nil, err
	}
	if lastGrant.Valid {
		summary.LastGrantAt = &lastGrant.Time
	}
	return &summary, nil
}
