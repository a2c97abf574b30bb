// Package store archives upstream payloads and normalized catalog documents,
// and records contact enquiries. Postgres (pgx) is the production backend;
// a SQLite file works for local runs and tests.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("archived item not found")

type dialect int

const (
	postgres dialect = iota
	sqlite
)

type Store struct {
	DB      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open picks the driver from the DSN: "sqlite:<path>" or a path ending in
// .db opens SQLite, anything else is handed to pgx.
func Open(dsn string) (*Store, error) {
	driver, source, d := "pgx", dsn, postgres
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		driver, source, d = "sqlite", strings.TrimPrefix(dsn, "sqlite:"), sqlite
	case strings.HasSuffix(dsn, ".db"):
		driver, d = "sqlite", sqlite
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if d == sqlite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	return &Store{DB: db, dialect: d, now: time.Now}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Close() error { return s.DB.Close() }

// rebind turns ? placeholders into $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Migrate(ctx context.Context) error {
	idType, jsonType, tsType := "UUID", "JSONB", "TIMESTAMPTZ"
	if s.dialect == sqlite {
		idType, jsonType, tsType = "TEXT", "TEXT", "TEXT"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS upstream_snapshots (
            id             ` + idType + ` PRIMARY KEY,
            source         TEXT NOT NULL,
            endpoint       TEXT NOT NULL,
            external_id    TEXT,
            payload        ` + jsonType + ` NOT NULL,
            payload_sha256 TEXT NOT NULL,
            fetched_at     ` + tsType + ` NOT NULL,
            fetched_unix   BIGINT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_source ON upstream_snapshots(source, endpoint, fetched_unix DESC);`,
		`CREATE TABLE IF NOT EXISTS catalog_items (
            id             ` + idType + ` PRIMARY KEY,
            source         TEXT NOT NULL,
            kind           TEXT NOT NULL,
            external_id    BIGINT NOT NULL,
            slug           TEXT,
            title          TEXT,
            position       INTEGER NOT NULL DEFAULT 0,
            document       ` + jsonType + ` NOT NULL,
            document_sha256 TEXT NOT NULL,
            snapshot_id    ` + idType + `,
            fetched_at     ` + tsType + ` NOT NULL,
            fetched_unix   BIGINT NOT NULL
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_catalog_items_ids ON catalog_items(source, kind, external_id);`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_items_position ON catalog_items(source, kind, position);`,
		`CREATE TABLE IF NOT EXISTS enquiries (
            id          ` + idType + ` PRIMARY KEY,
            name        TEXT NOT NULL,
            email       TEXT NOT NULL,
            phone       TEXT,
            subject     TEXT NOT NULL,
            message     TEXT NOT NULL,
            remote_addr TEXT,
            created_at  ` + tsType + ` NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_enquiries_created ON enquiries(created_at);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
