// Package core holds the domain model and the pure viewing logic: records,
// money, filtering, pagination and the monthly summary. Nothing here touches
// storage or the network.
package core

import (
	"errors"
	"strings"
	"time"
)

// Category classifies a record. The set of valid categories is configured at
// startup; DefaultCategories lists the built-in ones.
type Category string

const (
	CategoryExpense Category = "Expense"
	CategoryIncome  Category = "Income"
	CategorySavings Category = "Savings"
)

// DefaultCategories returns the built-in category set.
func DefaultCategories() []Category {
	return []Category{CategoryExpense, CategoryIncome, CategorySavings}
}

// Date is a calendar day with no time-of-day component. The zero value means
// "no date".
type Date struct {
	time.Time
}

// NewDate builds a Date from calendar parts, normalised to UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String renders the date as "YYYY-MM-DD", or "" for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MonthIndex returns the zero-based calendar month (January = 0), ignoring
// the year.
func (d Date) MonthIndex() int {
	return int(d.Month()) - 1
}

// Record is a stored ledger entry owned by a single user.
type Record struct {
	ID          string
	OwnerID     string
	Date        Date
	Description string
	Amount      Money
	Category    Category
}

// Draft is an in-progress record edit. It carries no identity: submitting a
// draft either creates a new record or overwrites the one being edited.
type Draft struct {
	Date        Date
	Description string
	Amount      Money
	Category    Category
}

// Validation failures, one sentinel per field check.
var (
	ErrMissingDate      = errors.New("missing date")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrMissingCategory  = errors.New("missing or unknown category")
)

// Validate checks the draft field by field in a fixed order (date,
// description, amount, category) and returns the first failure. Category
// membership is matched case-insensitively against the configured set.
func (d Draft) Validate(categories []Category) error {
	if d.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if d.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	for _, c := range categories {
		if strings.EqualFold(string(c), string(d.Category)) {
			return nil
		}
	}
	return ErrMissingCategory
}

// Record materialises the draft into a record for the given owner. The ID is
// left empty: the store assigns identity on create.
func (d Draft) Record(ownerID string) Record {
	return Record{
		OwnerID:     ownerID,
		Date:        d.Date,
		Description: strings.TrimSpace(d.Description),
		Amount:      d.Amount,
		Category:    d.Category,
	}
}

// DraftFrom prefills a draft from an existing record, for editing.
func DraftFrom(r Record) Draft {
	return Draft{
		Date:        r.Date,
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
	}
}
