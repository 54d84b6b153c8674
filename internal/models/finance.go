package models

import "time"

// Expense is one recorded outgoing amount.
type Expense struct {
	ID         string    `db:"id" json:"id"`
	Date       string    `db:"date" json:"date"`
	Amount     int       `db:"amount" json:"amount"`
	Purpose    string    `db:"purpose" json:"purpose"`
	RecordedBy string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ExpenseFilter scopes expense listings.
type ExpenseFilter struct {
	DateFrom *string
	DateTo   *string
	Page     int
	PageSize int
}

// MonthlyExpenseSummary aggregates spending per calendar month.
type MonthlyExpenseSummary struct {
	Month      string `db:"month" json:"month"`
	Total      int    `db:"total" json:"total"`
	EntryCount int    `db:"entry_count" json:"entry_count"`
}
