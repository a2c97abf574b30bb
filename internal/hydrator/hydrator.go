// Package hydrator writes upstream pages into the archive and reads them back
// when the upstream is unavailable.
package hydrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/yourorg/listings-api/internal/store"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

const (
	KindProperty = "property"
	KindProject  = "project"

	SourceWordPress   = "wordpress"
	SourceWooCommerce = "woocommerce"
)

var ErrNotArchived = store.ErrNotFound

// Archive is the part of store.Store the hydrator uses.
type Archive interface {
	WriteSnapshotAndUpsert(ctx context.Context, in store.SnapshotInput) (store.UpsertResult, error)
	ArchivedItems(ctx context.Context, source, kind string, offset, limit int) ([]json.RawMessage, int, error)
	ArchivedItem(ctx context.Context, source, kind string, id int64) (json.RawMessage, error)
	DeleteItem(ctx context.Context, source, kind string, id int64) error
}

type Hydrator struct {
	Store Archive
}

func (h *Hydrator) Enabled() bool { return h != nil && h.Store != nil }

// WriteProperties archives a page of properties. offset is the index of the
// first property in the upstream ordering.
func (h *Hydrator) WriteProperties(ctx context.Context, endpoint string, raw []byte, props []wordpress.Property, offset int) error {
	if !h.Enabled() {
		return nil
	}
	items := make([]store.Item, 0, len(props))
	for i, p := range props {
		it, err := propertyItem(p, offset+i)
		if err != nil {
			return err
		}
		items = append(items, it)
	}
	_, err := h.Store.WriteSnapshotAndUpsert(ctx, store.SnapshotInput{
		Source: SourceWordPress, Endpoint: endpoint, Payload: raw, Items: items,
	})
	return err
}

// WriteProperty archives a single property fetch without moving it in the
// list ordering.
func (h *Hydrator) WriteProperty(ctx context.Context, endpoint string, raw []byte, p wordpress.Property) error {
	if !h.Enabled() {
		return nil
	}
	it, err := propertyItem(p, store.DetachedPosition)
	if err != nil {
		return err
	}
	_, err = h.Store.WriteSnapshotAndUpsert(ctx, store.SnapshotInput{
		Source: SourceWordPress, Endpoint: endpoint, ExternalID: strconv.FormatInt(p.ID, 10),
		Payload: raw, Items: []store.Item{it}, KeepPosition: true,
	})
	return err
}

func propertyItem(p wordpress.Property, pos int) (store.Item, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return store.Item{}, fmt.Errorf("encode property %d: %w", p.ID, err)
	}
	return store.Item{Kind: KindProperty, ExternalID: p.ID, Slug: p.Slug, Title: p.Title, Position: pos, Document: doc}, nil
}

// WriteProjects archives a page of projects.
func (h *Hydrator) WriteProjects(ctx context.Context, endpoint string, raw []byte, projects []woocommerce.Project, offset int) error {
	if !h.Enabled() {
		return nil
	}
	items := make([]store.Item, 0, len(projects))
	for i, p := range projects {
		it, err := projectItem(p, offset+i)
		if err != nil {
			return err
		}
		items = append(items, it)
	}
	_, err := h.Store.WriteSnapshotAndUpsert(ctx, store.SnapshotInput{
		Source: SourceWooCommerce, Endpoint: endpoint, Payload: raw, Items: items,
	})
	return err
}

func (h *Hydrator) WriteProject(ctx context.Context, endpoint string, raw []byte, p woocommerce.Project) error {
	if !h.Enabled() {
		return nil
	}
	it, err := projectItem(p, store.DetachedPosition)
	if err != nil {
		return err
	}
	_, err = h.Store.WriteSnapshotAndUpsert(ctx, store.SnapshotInput{
		Source: SourceWooCommerce, Endpoint: endpoint, ExternalID: strconv.FormatInt(p.ID, 10),
		Payload: raw, Items: []store.Item{it}, KeepPosition: true,
	})
	return err
}

func projectItem(p woocommerce.Project, pos int) (store.Item, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return store.Item{}, fmt.Errorf("encode project %d: %w", p.ID, err)
	}
	return store.Item{Kind: KindProject, ExternalID: p.ID, Slug: p.Slug, Title: p.Name, Position: pos, Document: doc}, nil
}

func (h *Hydrator) ArchivedProperties(ctx context.Context, offset, limit int) ([]wordpress.Property, int, error) {
	return readAll[wordpress.Property](ctx, h, SourceWordPress, KindProperty, offset, limit)
}

func (h *Hydrator) ArchivedProperty(ctx context.Context, id int64) (*wordpress.Property, error) {
	return readOne[wordpress.Property](ctx, h, SourceWordPress, KindProperty, id)
}

func (h *Hydrator) ArchivedProjects(ctx context.Context, offset, limit int) ([]woocommerce.Project, int, error) {
	return readAll[woocommerce.Project](ctx, h, SourceWooCommerce, KindProject, offset, limit)
}

func (h *Hydrator) ArchivedProject(ctx context.Context, id int64) (*woocommerce.Project, error) {
	return readOne[woocommerce.Project](ctx, h, SourceWooCommerce, KindProject, id)
}

// Forget removes an archived document after an upstream delete.
func (h *Hydrator) Forget(ctx context.Context, source, kind string, id int64) error {
	if !h.Enabled() {
		return nil
	}
	return h.Store.DeleteItem(ctx, source, kind, id)
}

func readAll[T any](ctx context.Context, h *Hydrator, source, kind string, offset, limit int) ([]T, int, error) {
	if !h.Enabled() {
		return nil, 0, ErrNotArchived
	}
	docs, total, err := h.Store.ArchivedItems(ctx, source, kind, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 && total == 0 {
		return nil, 0, ErrNotArchived
	}
	return out, total, nil
}

func readOne[T any](ctx context.Context, h *Hydrator, source, kind string, id int64) (*T, error) {
	if !h.Enabled() {
		return nil, ErrNotArchived
	}
	doc, err := h.Store.ArchivedItem(ctx, source, kind, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, errors.Join(ErrNotArchived, err)
	}
	return &v, nil
}
