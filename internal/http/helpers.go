package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/store"
)

// recordJSON is the wire shape of a single record.
type recordJSON struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

func toRecordJSON(r core.Record) recordJSON {
	return recordJSON{
		ID:          r.ID,
		Date:        r.Date.String(),
		Description: r.Description,
		Amount:      r.Amount.Float(),
		Category:    string(r.Category),
	}
}

// amountField accepts the amount as either a JSON number or a decimal
// string, keeping the raw text for ParseAmount.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*a = amountField(s)
	return nil
}

// recordPayload is the request body for create and update.
type recordPayload struct {
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      amountField `json:"amount"`
	Category    string      `json:"category"`
}

// draft converts the payload into a draft. Unparseable fields are left at
// their zero value so validation reports them with the proper sentinel.
func (p recordPayload) draft() core.Draft {
	d := core.Draft{
		Description: p.Description,
		Category:    core.Category(p.Category),
	}
	if date, err := core.ParseDate(p.Date); err == nil {
		d.Date = date
	}
	if amount, err := core.ParseAmount(string(p.Amount)); err == nil {
		d.Amount = amount
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeMutationError maps a failed mutation to the right status: validation
// sentinels are the caller's fault, missing records are 404 and everything
// else is a backend failure whose message is passed through verbatim.
func writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrMissingDate),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrMissingCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseCriteria builds filter constraints from the query string. Absent
// parameters mean "no constraint"; malformed date bounds are rejected.
func parseCriteria(q url.Values) (core.Criteria, error) {
	c := core.Criteria{
		Description: strings.TrimSpace(q.Get("description")),
		Amount:      strings.TrimSpace(q.Get("amount")),
		Category:    strings.TrimSpace(q.Get("category")),
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Criteria{}, errors.New("invalid from date, expected YYYY-MM-DD")
		}
		c.From = &d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Criteria{}, errors.New("invalid to date, expected YYYY-MM-DD")
		}
		c.To = &d
	}
	return c, nil
}

// parsePage returns the requested page number, or 0 when absent or invalid.
func parsePage(q url.Values) int {
	v := strings.TrimSpace(q.Get("page"))
	if v == "" {
		return 0
	}
	page, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return page
}
