package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Item is one normalized document to archive.
type Item struct {
	Kind       string
	ExternalID int64
	Slug       string
	Title      string
	Position   int
	Document   json.RawMessage
}

// DetachedPosition sorts items known only from a detail fetch after every
// listed item.
const DetachedPosition = 1 << 30

type SnapshotInput struct {
	Source     string
	Endpoint   string
	ExternalID string
	Payload    []byte
	Items      []Item

	// KeepPosition leaves the stored list position of existing items alone.
	KeepPosition bool
}

type UpsertResult struct {
	SnapshotID string
	Items      int
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// WriteSnapshotAndUpsert stores the raw payload and upserts every item in one
// transaction.
func (s *Store) WriteSnapshotAndUpsert(ctx context.Context, in SnapshotInput) (res UpsertResult, err error) {
	if s.DB == nil {
		return res, errors.New("nil db")
	}
	if len(in.Payload) == 0 {
		in.Payload = []byte("null")
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now().UTC()
	res.SnapshotID = uuid.NewString()
	if _, err = tx.ExecContext(ctx, s.rebind(`
        INSERT INTO upstream_snapshots (id, source, endpoint, external_id, payload, payload_sha256, fetched_at, fetched_unix)
        VALUES (?,?,?,?,?,?,?,?)`),
		res.SnapshotID, in.Source, in.Endpoint, in.ExternalID, string(in.Payload), digest(in.Payload), now, now.UnixNano(),
	); err != nil {
		return res, fmt.Errorf("insert snapshot: %w", err)
	}

	setPosition := "position=excluded.position, "
	if in.KeepPosition {
		setPosition = ""
	}
	upsert := s.rebind(`
        INSERT INTO catalog_items (id, source, kind, external_id, slug, title, position, document, document_sha256, snapshot_id, fetched_at, fetched_unix)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT (source, kind, external_id)
        DO UPDATE SET slug=excluded.slug, title=excluded.title, ` + setPosition + `document=excluded.document,
            document_sha256=excluded.document_sha256, snapshot_id=excluded.snapshot_id, fetched_at=excluded.fetched_at, fetched_unix=excluded.fetched_unix`)
	for _, it := range in.Items {
		if it.ExternalID <= 0 || len(it.Document) == 0 {
			continue
		}
		if _, err = tx.ExecContext(ctx, upsert,
			uuid.NewString(), in.Source, it.Kind, it.ExternalID, it.Slug, it.Title, it.Position,
			string(it.Document), digest(it.Document), res.SnapshotID, now, now.UnixNano(),
		); err != nil {
			return res, fmt.Errorf("upsert %s %d: %w", it.Kind, it.ExternalID, err)
		}
		res.Items++
	}

	err = tx.Commit()
	return res, err
}

// ArchivedItems pages through archived documents in upstream order.
func (s *Store) ArchivedItems(ctx context.Context, source, kind string, offset, limit int) ([]json.RawMessage, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	var total int
	if err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM catalog_items WHERE source=? AND kind=?`), source, kind).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.QueryContext(ctx, s.rebind(`
        SELECT document FROM catalog_items
        WHERE source=? AND kind=?
        ORDER BY position ASC, fetched_unix DESC, external_id DESC
        LIMIT ? OFFSET ?`), source, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]json.RawMessage, 0, limit)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, json.RawMessage(doc))
	}
	return out, total, rows.Err()
}

func (s *Store) ArchivedItem(ctx context.Context, source, kind string, id int64) (json.RawMessage, error) {
	var doc string
	err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT document FROM catalog_items WHERE source=? AND kind=? AND external_id=?`), source, kind, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(doc), nil
}

// DeleteItem removes an archived document, e.g. after an upstream delete.
func (s *Store) DeleteItem(ctx context.Context, source, kind string, id int64) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM catalog_items WHERE source=? AND kind=? AND external_id=?`), source, kind, id)
	return err
}
