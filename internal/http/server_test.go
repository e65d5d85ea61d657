package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger/internal/auth"
	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/store/memory"
)

const testOwner = "owner-1"

func newTestServer(t *testing.T, seed ...core.Record) *Server {
	t.Helper()
	st := memory.New()
	st.Seed(seed...)
	mgr := services.NewManager(st, nil, nil, core.DefaultPageSize)
	return NewServer(":0", mgr, auth.Static{ID: testOwner})
}

func doJSON(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return out
}

func seedRecords(n int) []core.Record {
	out := make([]core.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, core.Record{
			OwnerID:     testOwner,
			Date:        core.NewDate(2025, 3, i+1),
			Description: fmt.Sprintf("Purchase %d", i+1),
			Amount:      core.Money{Cents: 10000},
			Category:    core.CategoryExpense,
		})
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := doJSON(t, s, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Errorf("%s returned %d", path, rec.Code)
		}
	}
}

func TestListRecordsPaged(t *testing.T) {
	s := newTestServer(t, seedRecords(12)...)

	rec := doJSON(t, s, http.MethodGet, "/api/records", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[listResponse](t, rec)
	if resp.CurrentPage != 1 || resp.TotalPages != 3 {
		t.Fatalf("page info = %d/%d, want 1/3", resp.CurrentPage, resp.TotalPages)
	}
	if len(resp.Records) != 5 {
		t.Fatalf("got %d records on the first page, want 5", len(resp.Records))
	}

	// Third page holds the remaining two records.
	rec = doJSON(t, s, http.MethodGet, "/api/records?page=3", "")
	resp = decode[listResponse](t, rec)
	if resp.CurrentPage != 3 || len(resp.Records) != 2 {
		t.Fatalf("page 3 returned %d records on page %d", len(resp.Records), resp.CurrentPage)
	}

	// Pages out of range clamp instead of failing.
	rec = doJSON(t, s, http.MethodGet, "/api/records?page=99", "")
	resp = decode[listResponse](t, rec)
	if resp.CurrentPage != 3 {
		t.Fatalf("page 99 clamped to %d, want 3", resp.CurrentPage)
	}
}

func TestFilterShrinksAndResetsPage(t *testing.T) {
	s := newTestServer(t, seedRecords(12)...)

	// Move to the last page, then apply a filter matching nothing: the view
	// must clamp back to page 1 of 1 rather than pointing past the end.
	doJSON(t, s, http.MethodGet, "/api/records?page=3", "")
	rec := doJSON(t, s, http.MethodGet, "/api/records?category=Income", "")
	resp := decode[listResponse](t, rec)
	if resp.CurrentPage != 1 || resp.TotalPages != 1 {
		t.Fatalf("page info = %d/%d, want 1/1", resp.CurrentPage, resp.TotalPages)
	}
	if len(resp.Records) != 0 {
		t.Fatalf("expected no Income records, got %d", len(resp.Records))
	}
}

func TestListFilterByDescriptionAndAmount(t *testing.T) {
	s := newTestServer(t,
		core.Record{OwnerID: testOwner, Date: core.NewDate(2025, 1, 10), Description: "Groceries", Amount: core.Money{Cents: 7550}, Category: core.CategoryExpense},
		core.Record{OwnerID: testOwner, Date: core.NewDate(2025, 1, 11), Description: "Rent", Amount: core.Money{Cents: 100000}, Category: core.CategoryExpense},
	)

	rec := doJSON(t, s, http.MethodGet, "/api/records?description=groc", "")
	resp := decode[listResponse](t, rec)
	if len(resp.Records) != 1 || resp.Records[0].Description != "Groceries" {
		t.Fatalf("description filter returned %+v", resp.Records)
	}

	// The amount filter matches against the decimal text of the amount.
	rec = doJSON(t, s, http.MethodGet, "/api/records?amount=75.5", "")
	resp = decode[listResponse](t, rec)
	if len(resp.Records) != 1 || resp.Records[0].Amount != 75.5 {
		t.Fatalf("amount filter returned %+v", resp.Records)
	}
}

func TestListRejectsMalformedDateBound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/records?from=10-03-2025", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateRecord(t *testing.T) {
	s := newTestServer(t)

	body := `{"date":"2025-03-02","description":"Coffee","amount":4.5,"category":"Expense"}`
	rec := doJSON(t, s, http.MethodPost, "/api/records", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	list := decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
	if len(list.Records) != 1 || list.Records[0].Description != "Coffee" || list.Records[0].Amount != 4.5 {
		t.Fatalf("list after create = %+v", list.Records)
	}
	if list.Records[0].ID == "" {
		t.Fatal("created record has no ID")
	}
}

func TestCreateAcceptsStringAmount(t *testing.T) {
	s := newTestServer(t)
	body := `{"date":"2025-03-02","description":"Coffee","amount":"12,50","category":"Expense"}`
	if rec := doJSON(t, s, http.MethodPost, "/api/records", body); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateValidationFailures(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing date", `{"description":"Coffee","amount":4.5,"category":"Expense"}`, "missing date"},
		{"empty description", `{"date":"2025-03-02","description":"  ","amount":4.5,"category":"Expense"}`, "empty description"},
		{"zero amount", `{"date":"2025-03-02","description":"Coffee","amount":0,"category":"Expense"}`, "amount"},
		{"unknown category", `{"date":"2025-03-02","description":"Coffee","amount":4.5,"category":"Gambling"}`, "category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/records", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}
			resp := decode[map[string]string](t, rec)
			if !strings.Contains(resp["error"], tc.want) {
				t.Fatalf("error = %q, want it to mention %q", resp["error"], tc.want)
			}
			// A rejected draft must not create anything.
			list := decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
			if len(list.Records) != 0 {
				t.Fatalf("invalid draft reached the store: %+v", list.Records)
			}
		})
	}
}

func TestUpdateRecord(t *testing.T) {
	s := newTestServer(t, seedRecords(1)...)

	list := decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
	id := list.Records[0].ID

	body := `{"date":"2025-03-02","description":"Corrected","amount":99.99,"category":"Income"}`
	rec := doJSON(t, s, http.MethodPut, "/api/records/"+id, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	list = decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
	if len(list.Records) != 1 {
		t.Fatalf("update changed record count: %d", len(list.Records))
	}
	got := list.Records[0]
	if got.ID != id || got.Description != "Corrected" || got.Amount != 99.99 || got.Category != "Income" {
		t.Fatalf("updated record = %+v", got)
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	s := newTestServer(t)
	body := `{"date":"2025-03-02","description":"x","amount":1,"category":"Expense"}`
	if rec := doJSON(t, s, http.MethodPut, "/api/records/nope", body); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteRecord(t *testing.T) {
	s := newTestServer(t, seedRecords(2)...)

	list := decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
	id := list.Records[0].ID

	if rec := doJSON(t, s, http.MethodDelete, "/api/records/"+id, ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	list = decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
	if len(list.Records) != 1 {
		t.Fatalf("got %d records after delete, want 1", len(list.Records))
	}

	if rec := doJSON(t, s, http.MethodDelete, "/api/records/"+id, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete returned %d, want 404", rec.Code)
	}
}

func TestDraftLifecycle(t *testing.T) {
	s := newTestServer(t, seedRecords(1)...)

	list := decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
	id := list.Records[0].ID

	resp := decode[draftResponse](t, doJSON(t, s, http.MethodGet, "/api/draft", ""))
	if resp.Open {
		t.Fatal("draft open before any interaction")
	}

	// Opening an edit prefills the draft from the stored record.
	rec := doJSON(t, s, http.MethodPost, "/api/draft", `{"id":"`+id+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp = decode[draftResponse](t, rec)
	if !resp.Open || resp.EditingID != id {
		t.Fatalf("draft state = %+v, want open edit of %s", resp, id)
	}
	if resp.Draft == nil || resp.Draft.Description != "Purchase 1" || resp.Draft.Amount != "100" {
		t.Fatalf("prefilled draft = %+v", resp.Draft)
	}

	// Discarding closes the interaction without touching the record.
	resp = decode[draftResponse](t, doJSON(t, s, http.MethodDelete, "/api/draft", ""))
	if resp.Open {
		t.Fatalf("draft still open after discard: %+v", resp)
	}
	list = decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
	if len(list.Records) != 1 || list.Records[0].Description != "Purchase 1" {
		t.Fatalf("discard changed records: %+v", list.Records)
	}
}

func TestDraftEditMissingRecord(t *testing.T) {
	s := newTestServer(t)
	if rec := doJSON(t, s, http.MethodPost, "/api/draft", `{"id":"nope"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDraftStaysOpenAfterRejectedSubmit(t *testing.T) {
	s := newTestServer(t)

	body := `{"date":"2025-03-02","description":"","amount":4.5,"category":"Expense"}`
	if rec := doJSON(t, s, http.MethodPost, "/api/records", body); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	resp := decode[draftResponse](t, doJSON(t, s, http.MethodGet, "/api/draft", ""))
	if !resp.Open {
		t.Fatal("draft closed after a rejected submit")
	}
	if resp.Draft == nil || resp.Draft.Amount != "4.5" {
		t.Fatalf("rejected draft not kept: %+v", resp.Draft)
	}
}

func TestSummary(t *testing.T) {
	s := newTestServer(t,
		core.Record{OwnerID: testOwner, Date: core.NewDate(2025, 3, 5), Description: "a", Amount: core.Money{Cents: 7500}, Category: core.CategoryExpense},
		core.Record{OwnerID: testOwner, Date: core.NewDate(2024, 3, 6), Description: "b", Amount: core.Money{Cents: 2500}, Category: core.CategoryExpense},
		core.Record{OwnerID: testOwner, Date: core.NewDate(2025, 6, 1), Description: "c", Amount: core.Money{Cents: 1000}, Category: core.CategoryIncome},
	)

	rec := doJSON(t, s, http.MethodGet, "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[summaryResponse](t, rec)
	if len(resp.Labels) != 12 || len(resp.Totals) != 12 {
		t.Fatalf("summary has %d labels, %d totals", len(resp.Labels), len(resp.Totals))
	}
	// March collapses both years into one bucket.
	if resp.Totals[2] != 100.0 {
		t.Errorf("March total = %v, want 100", resp.Totals[2])
	}
	if resp.Totals[5] != 10.0 {
		t.Errorf("June total = %v, want 10", resp.Totals[5])
	}
}

func TestSummaryIgnoresFilters(t *testing.T) {
	s := newTestServer(t, seedRecords(3)...)

	// Narrow the list view, then confirm the summary still covers everything.
	doJSON(t, s, http.MethodGet, "/api/records?description=nomatch", "")
	resp := decode[summaryResponse](t, doJSON(t, s, http.MethodGet, "/api/summary", ""))
	if resp.Totals[2] != 300.0 {
		t.Fatalf("March total = %v, want 300", resp.Totals[2])
	}
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)
	resp := decode[map[string][]string](t, doJSON(t, s, http.MethodGet, "/api/categories", ""))
	want := []string{"All", "Expense", "Income", "Savings"}
	got := resp["categories"]
	if len(got) != len(want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("categories = %v, want %v", got, want)
		}
	}
}

func TestJWTUnauthorized(t *testing.T) {
	st := memory.New()
	mgr := services.NewManager(st, nil, nil, core.DefaultPageSize)
	s := NewServer(":0", mgr, auth.NewJWT("secret"))

	if rec := doJSON(t, s, http.MethodGet, "/api/records", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	st := memory.New()
	st.Seed(core.Record{OwnerID: "someone-else", Date: core.NewDate(2025, 1, 1), Description: "Hidden", Amount: core.Money{Cents: 100}, Category: core.CategoryExpense})
	mgr := services.NewManager(st, nil, nil, core.DefaultPageSize)
	s := NewServer(":0", mgr, auth.Static{ID: testOwner})

	list := decode[listResponse](t, doJSON(t, s, http.MethodGet, "/api/records", ""))
	if len(list.Records) != 0 {
		t.Fatalf("leaked another owner's records: %+v", list.Records)
	}
}

func TestMutationsCannotCrossOwners(t *testing.T) {
	// Another owner's record ID behaves exactly like a missing one for
	// update and delete, and the record itself stays intact.
	st := memory.New()
	st.Seed(core.Record{ID: "victim-1", OwnerID: "someone-else", Date: core.NewDate(2025, 1, 1), Description: "Hidden", Amount: core.Money{Cents: 100}, Category: core.CategoryExpense})
	mgr := services.NewManager(st, nil, nil, core.DefaultPageSize)
	s := NewServer(":0", mgr, auth.Static{ID: testOwner})

	body := `{"date":"2025-02-02","description":"Tampered","amount":1,"category":"Expense"}`
	if rec := doJSON(t, s, http.MethodPut, "/api/records/victim-1", body); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner update returned %d, want 404", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodDelete, "/api/records/victim-1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner delete returned %d, want 404", rec.Code)
	}

	kept, err := st.List(context.Background(), "someone-else")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(kept) != 1 || kept[0].Description != "Hidden" || kept[0].Amount.Cents != 100 {
		t.Fatalf("record changed by another owner: %+v", kept)
	}
}
