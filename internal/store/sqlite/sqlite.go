// Package sqlite persists ledger records in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/store"
)

type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, date, description, amount_cents, category
		FROM records
		WHERE owner_id = ?
		ORDER BY date DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, store.Errorf("list records: %v", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			rec     core.Record
			dateStr string
			cat     string
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &dateStr, &rec.Description, &rec.Amount.Cents, &cat); err != nil {
			return nil, store.Errorf("scan record: %v", err)
		}
		rec.Category = core.Category(cat)
		if d, err := core.ParseDate(dateStr); err == nil {
			rec.Date = d
		}
		// An unparseable stored date is kept zero; the summary skips it.
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Errorf("list records: %v", err)
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, rec core.Record) (core.Record, error) {
	rec.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (id, owner_id, date, description, amount_cents, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.Date.String(), rec.Description, rec.Amount.Cents, string(rec.Category))
	if err != nil {
		return core.Record{}, store.Errorf("create record: %v", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		log.FieldComponent, log.ComponentStore,
		log.FieldRecordID, rec.ID,
		log.FieldOwnerID, rec.OwnerID,
		log.FieldAmountCents, rec.Amount.Cents,
		log.FieldCategory, rec.Category)

	return rec, nil
}

func (r *Repository) Update(ctx context.Context, ownerID, id string, rec core.Record) (core.Record, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET date = ?, description = ?, amount_cents = ?, category = ?
		WHERE id = ? AND owner_id = ?`,
		rec.Date.String(), rec.Description, rec.Amount.Cents, string(rec.Category), id, ownerID)
	if err != nil {
		return core.Record{}, store.Errorf("update record: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Record{}, store.NotFound(id)
	}
	return r.get(ctx, ownerID, id)
}

func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return store.Errorf("delete record: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound(id)
	}
	return nil
}

func (r *Repository) get(ctx context.Context, ownerID, id string) (core.Record, error) {
	var (
		rec     core.Record
		dateStr string
		cat     string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, date, description, amount_cents, category
		FROM records WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&rec.ID, &rec.OwnerID, &dateStr, &rec.Description, &rec.Amount.Cents, &cat)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, store.NotFound(id)
	}
	if err != nil {
		return core.Record{}, store.Errorf("get record: %v", err)
	}
	rec.Category = core.Category(cat)
	if d, err := core.ParseDate(dateStr); err == nil {
		rec.Date = d
	}
	return rec, nil
}
