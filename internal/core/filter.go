package core

import "strings"

// CategoryAll is the sentinel meaning "no category constraint".
const CategoryAll = "All"

// Criteria is the active set of filter constraints. Empty string fields and
// nil date bounds mean "no constraint". Criteria values are owned by the
// caller and never mutated here.
type Criteria struct {
	From        *Date
	To          *Date
	Description string
	Amount      string
	Category    string
}

// IsZero reports whether no constraint is set at all.
func (c Criteria) IsZero() bool {
	return c.From == nil && c.To == nil &&
		c.Description == "" && c.Amount == "" &&
		(c.Category == "" || strings.EqualFold(c.Category, CategoryAll))
}

// Matches reports whether the record satisfies every constraint. The four
// checks are independent and combined with a logical AND:
//
//   - date within the inclusive [From, To] range, either end open,
//   - case-insensitive substring match on the description,
//   - substring match on the decimal text of the amount,
//   - category equal case-insensitively, "" and "All" passing everything.
func (c Criteria) Matches(r Record) bool {
	return c.matchesDate(r) && c.matchesDescription(r) &&
		c.matchesAmount(r) && c.matchesCategory(r)
}

func (c Criteria) matchesDate(r Record) bool {
	if c.From != nil && r.Date.Before(c.From.Time) {
		return false
	}
	if c.To != nil && r.Date.After(c.To.Time) {
		return false
	}
	return true
}

func (c Criteria) matchesDescription(r Record) bool {
	if c.Description == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Description), strings.ToLower(c.Description))
}

func (c Criteria) matchesAmount(r Record) bool {
	if c.Amount == "" {
		return true
	}
	return strings.Contains(r.Amount.Text(), c.Amount)
}

func (c Criteria) matchesCategory(r Record) bool {
	if c.Category == "" || strings.EqualFold(c.Category, CategoryAll) {
		return true
	}
	return strings.EqualFold(string(r.Category), c.Category)
}

// Filter returns the records matching the criteria, preserving order.
// Filtering is stateless: it is re-run from scratch on every criteria or
// record-set change, never cached incrementally.
func Filter(records []Record, c Criteria) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
