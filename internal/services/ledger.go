// Package services coordinates ledger mutations against the record store
// and maintains each owner's view state: the record snapshot, the active
// filter criteria, the page position and the in-progress draft.
package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/store"
)

// ChangeEvent is emitted to subscribers after a confirmed mutation and the
// refetch that follows it.
type ChangeEvent struct {
	OwnerID  string
	RecordID string
	Op       string
}

// Subscriber receives change events synchronously after the snapshot has
// been replaced, so it always observes store-consistent data.
type Subscriber func(ChangeEvent)

// PageInfo is the pagination metadata shown next to the current page.
type PageInfo struct {
	CurrentPage int
	TotalPages  int
}

// Ledger is one owner's view of the record store. All mutations go through
// it; the visible record set is only ever replaced wholesale by a refetch
// after a confirmed store success, never patched locally.
type Ledger struct {
	ownerID    string
	store      store.Store
	publisher  *amqp.Client
	categories []core.Category
	pageSize   int

	mu       sync.Mutex
	records  []core.Record
	criteria core.Criteria
	page     int
	draft    core.Draft
	editing  string // record ID being edited, empty when creating
	open     bool   // a draft interaction is in progress

	// Refetch sequencing: responses older than the last applied one are
	// discarded so a slow refetch cannot overwrite a newer snapshot.
	issuedSeq  atomic.Uint64
	appliedSeq uint64

	subscribers []Subscriber
}

func newLedger(ownerID string, st store.Store, publisher *amqp.Client, categories []core.Category, pageSize int) *Ledger {
	return &Ledger{
		ownerID:    ownerID,
		store:      st,
		publisher:  publisher,
		categories: categories,
		pageSize:   pageSize,
		page:       1,
	}
}

// Refresh refetches the owner's full record list and replaces the snapshot
// wholesale. Stale responses are dropped by sequence number.
func (l *Ledger) Refresh(ctx context.Context) error {
	seq := l.issuedSeq.Add(1)

	records, err := l.store.List(ctx, l.ownerID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq < l.appliedSeq {
		slog.DebugContext(ctx, "Discarding stale refetch",
			log.FieldComponent, log.ComponentLedger,
			log.FieldOwnerID, l.ownerID, "seq", seq, "applied", l.appliedSeq)
		return nil
	}
	l.appliedSeq = seq
	l.records = records
	l.clampPageLocked()
	return nil
}

// Load performs the initial fetch if no snapshot has been applied yet.
// Subsequent calls are no-ops: after the first load the snapshot only
// changes through mutation-triggered refetches.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	loaded := l.appliedSeq > 0
	l.mu.Unlock()
	if loaded {
		return nil
	}
	return l.Refresh(ctx)
}

// Submit validates the draft and either updates the record named by
// editingID or creates a new one for this owner. On store success the
// interaction closes, the list is refetched and subscribers are notified.
// On any failure the draft stays open so the user can retry.
func (l *Ledger) Submit(ctx context.Context, draft core.Draft, editingID string) error {
	l.mu.Lock()
	l.draft = draft
	l.editing = editingID
	l.open = true
	l.mu.Unlock()

	if err := draft.Validate(l.categories); err != nil {
		return err
	}

	var (
		saved core.Record
		err   error
		op    string
	)
	if editingID != "" {
		op = amqp.OpUpdate
		saved, err = l.store.Update(ctx, l.ownerID, editingID, draft.Record(l.ownerID))
	} else {
		op = amqp.OpCreate
		saved, err = l.store.Create(ctx, draft.Record(l.ownerID))
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to save record",
			log.FieldComponent, log.ComponentLedger,
			log.FieldError, err,
			log.FieldOwnerID, l.ownerID,
			log.FieldRecordID, editingID,
			log.FieldOperation, op)
		return err
	}

	l.mu.Lock()
	l.draft = core.Draft{}
	l.editing = ""
	l.open = false
	l.mu.Unlock()

	slog.InfoContext(ctx, "Record saved",
		log.FieldComponent, log.ComponentLedger,
		log.FieldOwnerID, l.ownerID,
		log.FieldRecordID, saved.ID,
		log.FieldAmountCents, saved.Amount.Cents,
		log.FieldCategory, saved.Category,
		log.FieldOperation, op)

	l.afterMutation(ctx, ChangeEvent{OwnerID: l.ownerID, RecordID: saved.ID, Op: op})
	return nil
}

// Remove deletes one of this owner's records. Confirmation happens before
// this call, at the presentation layer. The list is refetched only on
// store success.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	if err := l.store.Delete(ctx, l.ownerID, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete record",
			log.FieldComponent, log.ComponentLedger,
			log.FieldError, err,
			log.FieldOwnerID, l.ownerID,
			log.FieldRecordID, id)
		return err
	}

	slog.InfoContext(ctx, "Record deleted",
		log.FieldComponent, log.ComponentLedger,
		log.FieldOwnerID, l.ownerID, log.FieldRecordID, id)
	l.afterMutation(ctx, ChangeEvent{OwnerID: l.ownerID, RecordID: id, Op: amqp.OpDelete})
	return nil
}

// afterMutation refetches and then fans the event out: in-process
// subscribers synchronously, AMQP best-effort.
func (l *Ledger) afterMutation(ctx context.Context, ev ChangeEvent) {
	if err := l.Refresh(ctx); err != nil {
		// The mutation is already confirmed; a failed refetch just leaves
		// the previous snapshot in place until the next successful one.
		slog.WarnContext(ctx, "Refetch after mutation failed",
			log.FieldComponent, log.ComponentLedger,
			log.FieldError, err, log.FieldOwnerID, l.ownerID)
	}

	l.mu.Lock()
	subs := append([]Subscriber(nil), l.subscribers...)
	l.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}

	if l.publisher != nil {
		msg := amqp.NewRecordChangedMessage(ev.OwnerID, ev.RecordID, ev.Op)
		if err := l.publisher.PublishRecordChanged(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish change event",
				log.FieldComponent, log.ComponentLedger,
				log.FieldError, err, log.FieldOwnerID, ev.OwnerID, log.FieldRecordID, ev.RecordID)
		}
	}
}

// Subscribe registers a callback for confirmed mutations.
func (l *Ledger) Subscribe(fn Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

// SetCriteria replaces the filter criteria and re-clamps the page against
// the new filtered size, so the view never points past the end.
func (l *Ledger) SetCriteria(c core.Criteria) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.criteria = c
	l.clampPageLocked()
}

// SetPage moves to the requested page, clamped into the valid range.
func (l *Ledger) SetPage(page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.page = page
	l.clampPageLocked()
}

func (l *Ledger) clampPageLocked() {
	filtered := core.Filter(l.records, l.criteria)
	total := core.TotalPages(len(filtered), l.pageSize)
	l.page = core.ClampPage(l.page, total)
}

// View returns the current page of filtered records plus page metadata.
// Filtering and pagination are recomputed from scratch on every call.
func (l *Ledger) View() ([]core.Record, PageInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	filtered := core.Filter(l.records, l.criteria)
	total := core.TotalPages(len(filtered), l.pageSize)
	page := core.ClampPage(l.page, total)
	return core.Page(filtered, page, l.pageSize), PageInfo{CurrentPage: page, TotalPages: total}
}

// Summary aggregates the full unfiltered snapshot into the twelve monthly
// buckets.
func (l *Ledger) Summary() [12]core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.MonthlyTotals(l.records)
}

// Criteria returns the active filter constraints.
func (l *Ledger) Criteria() core.Criteria {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.criteria
}

// Draft returns the in-progress draft, its editing target and whether an
// interaction is open. The draft survives a failed submit.
func (l *Ledger) Draft() (core.Draft, string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draft, l.editing, l.open
}

// StartEdit opens a draft prefilled from the named record.
func (l *Ledger) StartEdit(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.ID == id {
			l.draft = core.DraftFrom(r)
			l.editing = id
			l.open = true
			return nil
		}
	}
	return store.NotFound(id)
}

// CloseDraft discards the in-progress interaction.
func (l *Ledger) CloseDraft() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.draft = core.Draft{}
	l.editing = ""
	l.open = false
}
