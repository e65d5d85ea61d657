// Package memory is the in-process record store. It is the default backend
// for development and the double the service tests run against.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/store"
)

type Store struct {
	mu      sync.Mutex
	records map[string]core.Record
	order   []string // insertion order, stable tie-break for equal dates
}

func New() *Store {
	return &Store{records: make(map[string]core.Record)}
}

// Seed inserts records directly, assigning IDs where missing. Test helper.
func (s *Store) Seed(records ...core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.records[r.ID] = r
		s.order = append(s.order, r.ID)
	}
}

func (s *Store) List(_ context.Context, ownerID string) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := make(map[string]int, len(s.order))
	for i, id := range s.order {
		pos[id] = i
	}

	var out []core.Record
	for _, id := range s.order {
		r, ok := s.records[id]
		if !ok || r.OwnerID != ownerID {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return pos[out[i].ID] < pos[out[j].ID]
	})
	return out, nil
}

func (s *Store) Create(_ context.Context, rec core.Record) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec, nil
}

func (s *Store) Update(_ context.Context, ownerID, id string, rec core.Record) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok || current.OwnerID != ownerID {
		// Another owner's record looks exactly like a missing one.
		return core.Record{}, store.NotFound(id)
	}
	// Full replace of the mutable fields; ID and owner stay untouched.
	current.Date = rec.Date
	current.Description = rec.Description
	current.Amount = rec.Amount
	current.Category = rec.Category
	s.records[id] = current
	return current, nil
}

func (s *Store) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.records[id]; !ok || r.OwnerID != ownerID {
		return store.NotFound(id)
	}
	delete(s.records, id)
	return nil
}
