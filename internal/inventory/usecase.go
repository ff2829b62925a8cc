package inventory

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type UseCase interface {
	AddItem(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, item *model.InventoryItem) error

	// AdjustStock is a single-attempt read-modify-write; a racing writer
	// surfaces as apperrors.ErrConflict and the caller decides whether to
	// retry.
	AdjustStock(ctx context.Context, productID string, delta int) (*model.InventoryItem, error)

	List(ctx context.Context, order docstore.Order) ([]model.InventoryItem, error)
	FindByCode(ctx context.Context, code string) (*model.InventoryItem, error)
}
