package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/thebethel/portal-api/internal/models"
)

// MessageRepository backs the portal-wide chat room. The room behaves like a
// capped collection: every insert trims the table down to the configured cap.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ListLatest returns up to limit of the newest messages in ascending send order.
func (r *MessageRepository) ListLatest(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, author_id, author_name, author_role, body, sent_at FROM (
        SELECT id, author_id, author_name, author_role, body, sent_at
        FROM messages ORDER BY sent_at DESC LIMIT $1
    ) latest ORDER BY sent_at ASC`
	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, limit); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// Insert stores msg and evicts the oldest rows beyond cap in the same
// transaction.
func (r *MessageRepository) Insert(ctx context.Context, msg *models.Message, cap int) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin message tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO messages (id, author_id, author_name, author_role, body, sent_at)
         VALUES (:id, :author_id, :author_name, :author_role, :body, :sent_at)`,
		msg); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if cap > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM messages WHERE id NOT IN (SELECT id FROM messages ORDER BY sent_at DESC LIMIT $1)`,
			cap); err != nil {
			return fmt.Errorf("trim messages: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit message tx: %w", err)
	}
	return nil
}
