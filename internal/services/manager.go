package services

import (
	"sync"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/store"
)

// Manager hands out one Ledger per owner, created lazily on first use.
type Manager struct {
	store      store.Store
	publisher  *amqp.Client
	categories []core.Category
	pageSize   int

	mu      sync.Mutex
	ledgers map[string]*Ledger
}

// NewManager wires the shared collaborators. publisher may be nil, in
// which case change events stay in-process only.
func NewManager(st store.Store, publisher *amqp.Client, categories []core.Category, pageSize int) *Manager {
	if len(categories) == 0 {
		categories = core.DefaultCategories()
	}
	if pageSize <= 0 {
		pageSize = core.DefaultPageSize
	}
	return &Manager{
		store:      st,
		publisher:  publisher,
		categories: categories,
		pageSize:   pageSize,
		ledgers:    make(map[string]*Ledger),
	}
}

// Ledger returns the owner's ledger, creating it on first access. The
// caller is responsible for the initial Refresh.
func (m *Manager) Ledger(ownerID string) *Ledger {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.ledgers[ownerID]
	if !ok {
		l = newLedger(ownerID, m.store, m.publisher, m.categories, m.pageSize)
		m.ledgers[ownerID] = l
	}
	return l
}

// Categories returns the configured closed category set.
func (m *Manager) Categories() []core.Category {
	return m.categories
}
