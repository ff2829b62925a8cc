package repository

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

const CollectionName = "invoices"

type DocRepository struct {
	col *docstore.Collection
}

func NewDocRepository(store *docstore.Store) *DocRepository {
	return &DocRepository{col: store.Collection(CollectionName, "")}
}

func (r *DocRepository) Collection() *docstore.Collection { return r.col }

func (r *DocRepository) GetByID(ctx context.Context, id string) (*model.Invoice, error) {
	doc, err := r.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeInvoice(doc)
}

func (r *DocRepository) FindAll(ctx context.Context, order docstore.Order) ([]model.Invoice, error) {
	docs, err := r.col.ListAll(ctx, order)
	if err != nil {
		return nil, err
	}
	invoices := make([]model.Invoice, 0, len(docs))
	for _, doc := range docs {
		inv, err := decodeInvoice(doc)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, nil
}

func (r *DocRepository) Create(ctx context.Context, inv *model.Invoice) error {
	return r.put(ctx, inv, "")
}

func (r *DocRepository) Update(ctx context.Context, inv *model.Invoice) error {
	return r.put(ctx, inv, inv.Revision)
}

func (r *DocRepository) put(ctx context.Context, inv *model.Invoice, expected model.Revision) error {
	fields, err := model.FieldsOf(inv)
	if err != nil {
		return err
	}
	rev, err := r.col.Put(ctx, inv.ID, fields, expected)
	if err != nil {
		return err
	}
	inv.Revision = rev
	return nil
}

func decodeInvoice(doc model.Document) (*model.Invoice, error) {
	var inv model.Invoice
	if err := model.DecodeFields(doc.Fields, &inv); err != nil {
		return nil, err
	}
	inv.ID = doc.ID
	inv.Revision = doc.Revision
	return &inv, nil
}
