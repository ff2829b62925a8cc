package inventory

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*model.InventoryItem, error)
	FindByCode(ctx context.Context, code string) ([]model.InventoryItem, error)
	FindAll(ctx context.Context, order docstore.Order) ([]model.InventoryItem, error)

	// Create puts a brand-new document; Update and Delete are
	// compare-and-swap on the item's Revision.
	Create(ctx context.Context, item *model.InventoryItem) error
	Update(ctx context.Context, item *model.InventoryItem) error
	Delete(ctx context.Context, item *model.InventoryItem) error
}
