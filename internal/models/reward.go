package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DollarAmount tolerates the mixed representations found in historical
// reward data: numeric values, numeric strings and missing fields. Anything
// unparseable decodes to zero rather than failing the whole record.
type DollarAmount int

// Int returns the plain integer value.
func (d DollarAmount) Int() int { return int(d) }

// UnmarshalJSON accepts numbers, numeric strings, null and malformed values.
func (d *DollarAmount) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*d = 0
		return nil
	}
	switch v := raw.(type) {
	case float64:
		*d = DollarAmount(int(v))
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			*d = 0
			return nil
		}
		*d = DollarAmount(n)
	default:
		*d = 0
	}
	return nil
}

// Value implements driver.Valuer for database writes.
func (d DollarAmount) Value() (driver.Value, error) {
	return int64(d), nil
}

// Scan implements sql.Scanner.
func (d *DollarAmount) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*d = DollarAmount(v)
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			*d = 0
			return nil
		}
		*d = DollarAmount(n)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			*d = 0
			return nil
		}
		*d = DollarAmount(n)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("cannot scan %T into DollarAmount", src)
	}
	return nil
}

// RewardEntry is one granted reward in a student's append-only ledger.
type RewardEntry struct {
	ID        string       `db:"id" json:"id"`
	StudentPK string       `db:"student_pk" json:"-"`
	Date      string       `db:"date" json:"date"`
	Dollars   DollarAmount `db:"dollars" json:"dollars"`
	Reason    string       `db:"reason" json:"reason"`
	Teacher   string       `db:"teacher" json:"teacher"`
	Position  int          `db:"position" json:"position"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// RewardSummary aggregates the ledger for a student.
type RewardSummary struct {
	StudentID    string     `json:"student_id"`
	DollarPoints int        `json:"dollar_points"`
	EntryCount   int        `json:"entry_count"`
	LastGrantAt  *time.Time `json:"last_grant_at,omitempty"`
}
