package repository

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

// CollectionName is the inventory collection; Code is its indexed field so
// barcode lookups avoid a full scan.
const (
	CollectionName = "inventory"
	IndexField     = "code"
)

type DocRepository struct {
	col *docstore.Collection
}

func NewDocRepository(store *docstore.Store) *DocRepository {
	return &DocRepository{col: store.Collection(CollectionName, IndexField)}
}

// Collection exposes the underlying collection for change-feed
// subscriptions and backup.
func (r *DocRepository) Collection() *docstore.Collection { return r.col }

func (r *DocRepository) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	doc, err := r.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeItem(doc)
}

func (r *DocRepository) FindByCode(ctx context.Context, code string) ([]model.InventoryItem, error) {
	docs, err := r.col.QueryIndexed(ctx, code)
	if err != nil {
		return nil, err
	}
	items := make([]model.InventoryItem, 0, len(docs))
	for _, doc := range docs {
		item, err := decodeItem(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (r *DocRepository) FindAll(ctx context.Context, order docstore.Order) ([]model.InventoryItem, error) {
	docs, err := r.col.ListAll(ctx, order)
	if err != nil {
		return nil, err
	}
	items := make([]model.InventoryItem, 0, len(docs))
	for _, doc := range docs {
		item, err := decodeItem(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (r *DocRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return r.put(ctx, item, "")
}

func (r *DocRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	return r.put(ctx, item, item.Revision)
}

func (r *DocRepository) Delete(ctx context.Context, item *model.InventoryItem) error {
	return r.col.Remove(ctx, item.ID, item.Revision)
}

func (r *DocRepository) put(ctx context.Context, item *model.InventoryItem, expected model.Revision) error {
	fields, err := model.FieldsOf(item)
	if err != nil {
		return err
	}
	rev, err := r.col.Put(ctx, item.ID, fields, expected)
	if err != nil {
		return err
	}
	item.Revision = rev
	return nil
}

func decodeItem(doc model.Document) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := model.DecodeFields(doc.Fields, &item); err != nil {
		return nil, err
	}
	item.ID = doc.ID
	item.Revision = doc.Revision
	return &item, nil
}
