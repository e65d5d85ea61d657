package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"ledger/internal/auth"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
)

type listResponse struct {
	Records     []recordJSON `json:"records"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
}

type summaryResponse struct {
	Labels []string  `json:"labels"`
	Totals []float64 `json:"totals"`
}

// ledger resolves the caller's per-owner ledger, loading its snapshot on
// first use. Returns nil after writing the error response.
func (s *Server) ledger(w http.ResponseWriter, r *http.Request) *services.Ledger {
	ownerID, err := s.owner.OwnerID(r)
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthorized) {
			slog.WarnContext(r.Context(), "Rejected request",
				log.FieldError, err, log.FieldPath, r.URL.Path)
		}
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}

	l := s.ledgers.Ledger(ownerID)
	if err := l.Load(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Initial record fetch failed",
			log.FieldError, err, log.FieldOwnerID, ownerID)
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	return l
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleList(w, r)
	case http.MethodPost:
		s.handleCreate(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleList replaces the active filter criteria with the query parameters,
// optionally moves to the requested page and returns the visible page. The
// page position is clamped whenever the criteria shrink the result set.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	l := s.ledger(w, r)
	if l == nil {
		return
	}

	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	l.SetCriteria(criteria)
	if page := parsePage(r.URL.Query()); page > 0 {
		l.SetPage(page)
	}

	records, info := l.View()
	resp := listResponse{
		Records:     make([]recordJSON, 0, len(records)),
		CurrentPage: info.CurrentPage,
		TotalPages:  info.TotalPages,
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordJSON(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	l := s.ledger(w, r)
	if l == nil {
		return
	}

	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := l.Submit(r.Context(), payload.draft(), ""); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleUpdate(w, r, id)
	case http.MethodDelete:
		s.handleDelete(w, r, id)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	l := s.ledger(w, r)
	if l == nil {
		return
	}

	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := l.Submit(r.Context(), payload.draft(), id); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleDelete removes a record. The confirmation step happens client-side,
// before this endpoint is called.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	l := s.ledger(w, r)
	if l == nil {
		return
	}

	if err := l.Remove(r.Context(), id); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type draftResponse struct {
	Open      bool       `json:"open"`
	EditingID string     `json:"editingId,omitempty"`
	Draft     *draftJSON `json:"draft,omitempty"`
}

type draftJSON struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

// handleDraft exposes the in-progress interaction: GET reports its state,
// POST opens an edit prefilled from an existing record and DELETE discards
// it. Create-from-scratch needs no draft call, it goes straight through
// POST /api/records.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	l := s.ledger(w, r)
	if l == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := l.StartEdit(body.ID); err != nil {
			writeMutationError(w, err)
			return
		}
	case http.MethodDelete:
		l.CloseDraft()
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	draft, editingID, open := l.Draft()
	resp := draftResponse{Open: open, EditingID: editingID}
	if open {
		resp.Draft = &draftJSON{
			Date:        draft.Date.String(),
			Description: draft.Description,
			Amount:      draft.Amount.Text(),
			Category:    string(draft.Category),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSummary returns the twelve monthly buckets over the full unfiltered
// record set.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	l := s.ledger(w, r)
	if l == nil {
		return
	}

	totals := l.Summary()
	resp := summaryResponse{
		Labels: core.MonthLabels[:],
		Totals: make([]float64, len(totals)),
	}
	for i, m := range totals {
		resp.Totals[i] = m.Float()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, err := s.owner.OwnerID(r); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cats := s.ledgers.Categories()
	out := make([]string, 0, len(cats)+1)
	out = append(out, core.CategoryAll)
	for _, c := range cats {
		out = append(out, string(c))
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": out})
}
