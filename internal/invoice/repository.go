package invoice

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*model.Invoice, error)
	FindAll(ctx context.Context, order docstore.Order) ([]model.Invoice, error)

	// Create puts a brand-new document; Update is compare-and-swap on the
	// invoice's Revision. Invoices are never deleted.
	Create(ctx context.Context, inv *model.Invoice) error
	Update(ctx context.Context, inv *model.Invoice) error
}
