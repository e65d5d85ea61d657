// Package backend selects and builds the configured record store.
package backend

import (
	"fmt"
	"log/slog"

	"ledger/internal/store"
	"ledger/internal/store/memory"
	"ledger/internal/store/postgres"
	"ledger/internal/store/sqlite"
)

type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
)

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Postgres:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// Config holds what the backends need. Only the fields for the selected
// type are consulted.
type Config struct {
	Type Type

	SQLiteDBPath string
	PostgresDSN  string
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result pairs the store with its cleanup, which may be nil.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Open builds the record store for the configured type.
func Open(cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLite:
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite store", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	case Postgres:
		repo, err := postgres.New(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres store: %w", err)
		}
		logger.Info("Initialized Postgres store")
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	default:
		logger.Info("Initialized memory store")
		return &Result{Store: memory.New(), Cleanup: nil}, nil
	}
}
