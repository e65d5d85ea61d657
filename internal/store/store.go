// Package store defines the record store port the ledger engine talks to.
// Concrete backends live in the subpackages.
package store

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/core"
)

// Store is the contract for the remote record store. Every operation is
// scoped to one owner: List returns that owner's records sorted by date
// descending, and Update/Delete refuse to touch records held by anyone
// else, reporting them as not found. Update replaces every mutable field
// at once — there is no partial update. The engine holds no write-through
// cache on top of this.
type Store interface {
	List(ctx context.Context, ownerID string) ([]core.Record, error)
	Create(ctx context.Context, rec core.Record) (core.Record, error)
	Update(ctx context.Context, ownerID, id string, rec core.Record) (core.Record, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// StoreError is the uniform failure for any store call: transport, auth
// and not-found all surface here, message shown to the user verbatim.
type StoreError struct {
	Message string

	notFound bool
}

func (e *StoreError) Error() string {
	return e.Message
}

// Errorf builds a StoreError from a format string.
func Errorf(format string, args ...any) *StoreError {
	return &StoreError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether the error is a missing-record StoreError.
// Backends create these via NotFound so the message stays consistent.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.notFound
}

// NotFound builds the StoreError for a missing record ID.
func NotFound(id string) *StoreError {
	return &StoreError{Message: fmt.Sprintf("record %s not found", id), notFound: true}
}
