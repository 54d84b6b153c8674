package models

import "time"

// Homework is an assignment published to one class level.
type Homework struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ClassType   ClassType `db:"class_type" json:"class_type"`
	DueDate     string    `db:"due_date" json:"due_date"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// HomeworkFilter scopes homework listings.
type HomeworkFilter struct {
	ClassType string
	DueAfter  *string
	Page      int
	PageSize  int
}
