// Package postgres persists ledger records in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"ledger/internal/core"
	"ledger/internal/store"
)

type Repository struct {
	db *sql.DB
}

func New(dsn string) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			date DATE NOT NULL,
			description TEXT NOT NULL,
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			category TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_records_owner_date ON records (owner_id, date DESC)`)
	return err
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, to_char(date, 'YYYY-MM-DD'), description, amount_cents, category
		FROM records
		WHERE owner_id = $1
		ORDER BY date DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, store.Errorf("list records: %v", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, store.Errorf("scan record: %v", err)
		}
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
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.OwnerID, rec.Date.String(), rec.Description, rec.Amount.Cents, string(rec.Category))
	if err != nil {
		return core.Record{}, store.Errorf("create record: %v", err)
	}
	return rec, nil
}

func (r *Repository) Update(ctx context.Context, ownerID, id string, rec core.Record) (core.Record, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET date = $1, description = $2, amount_cents = $3, category = $4
		WHERE id = $5 AND owner_id = $6`,
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return store.Errorf("delete record: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound(id)
	}
	return nil
}

func (r *Repository) get(ctx context.Context, ownerID, id string) (core.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, to_char(date, 'YYYY-MM-DD'), description, amount_cents, category
		FROM records WHERE id = $1 AND owner_id = $2`, id, ownerID)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, store.NotFound(id)
	}
	if err != nil {
		return core.Record{}, store.Errorf("get record: %v", err)
	}
	return rec, nil
}

func scanRecord(scan func(dest ...any) error) (core.Record, error) {
	var (
		rec     core.Record
		dateStr string
		cat     string
	)
	if err := scan(&rec.ID, &rec.OwnerID, &dateStr, &rec.Description, &rec.Amount.Cents, &cat); err != nil {
		return core.Record{}, err
	}
	rec.Category = core.Category(cat)
	if d, err := core.ParseDate(dateStr); err == nil {
		rec.Date = d
	}
	return rec, nil
}
