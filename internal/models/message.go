package models

import "time"

// Message is one chat entry in the portal-wide room. The room is a capped
// collection: inserts beyond the cap evict the oldest rows.
type Message struct {
	ID         string    `db:"id" json:"id"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	AuthorRole UserRole  `db:"author_role" json:"author_role"`
	Body       string    `db:"body" json:"body"`
	SentAt     time.Time `db:"sent_at" json:"sent_at"`
}
