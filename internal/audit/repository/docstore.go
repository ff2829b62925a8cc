package repository

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

const CollectionName = "audit"

type DocRepository struct {
	col *docstore.Collection
}

func NewDocRepository(store *docstore.Store) *DocRepository {
	return &DocRepository{col: store.Collection(CollectionName, "")}
}

func (r *DocRepository) Collection() *docstore.Collection { return r.col }

func (r *DocRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	fields, err := model.FieldsOf(entry)
	if err != nil {
		return err
	}
	rev, err := r.col.Put(ctx, entry.ID, fields, "")
	if err != nil {
		return err
	}
	entry.Revision = rev
	return nil
}

func (r *DocRepository) FindAll(ctx context.Context, order docstore.Order) ([]model.AuditEntry, error) {
	docs, err := r.col.ListAll(ctx, order)
	if err != nil {
		return nil, err
	}
	entries := make([]model.AuditEntry, 0, len(docs))
	for _, doc := range docs {
		var entry model.AuditEntry
		if err := model.DecodeFields(doc.Fields, &entry); err != nil {
			return nil, err
		}
		entry.ID = doc.ID
		entry.Revision = doc.Revision
		entries = append(entries, entry)
	}
	return entries, nil
}
