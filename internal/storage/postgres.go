// Package storage persists extracted apartments.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/apartsfinder/afind/pkg/models"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore upserts apartments keyed by listing URL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to dsn and creates the schema if needed
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	schemaCtx, schemaCancel := context.WithTimeout(ctx, 10*time.Second)
	defer schemaCancel()
	if err := store.ensureSchema(schemaCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// row is one apartment as stored; nullable columns follow absent fields
type row struct {
	site    string
	url     string
	name    sql.NullString
	price   sql.NullString
	address sql.NullString
}

// toRows drops records without a URL, which cannot be keyed
func toRows(site string, records []models.Apartment) []row {
	rows := make([]row, 0, len(records))
	for _, a := range records {
		if a.URL == nil || *a.URL == "" {
			continue
		}
		rows = append(rows, row{
			site:    site,
			url:     *a.URL,
			name:    nullable(a.Name),
			price:   nullable(a.Price),
			address: nullable(a.Address),
		})
	}
	return rows
}

func nullable(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// SaveApartments upserts records for site and returns how many were written
func (s *PostgresStore) SaveApartments(ctx context.Context, site string, records []models.Apartment) (int, error) {
	rows := toRows(site, records)
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO apartments (site, url, name, price, address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO UPDATE
		SET
			site = EXCLUDED.site,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			address = EXCLUDED.address,
			updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err = stmt.ExecContext(ctx, r.site, r.url, r.name, r.price, r.address); err != nil {
			return 0, fmt.Errorf("insert apartment %q: %w", r.url, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(rows), nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS apartments (
			id BIGSERIAL PRIMARY KEY,
			site TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			name TEXT,
			price TEXT,
			address TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_apartments_site ON apartments(site);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
