package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"
	"github.com/fekuna/omnipos-datastore/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/inventory"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *inventoryUseCase) AddItem(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error) {
	if item.Name == "" {
		return nil, fmt.Errorf("item name is required: %w", apperrors.ErrValidation)
	}
	if item.Price < 0 {
		return nil, fmt.Errorf("item price must not be negative: %w", apperrors.ErrValidation)
	}

	now := time.Now()
	if item.ID == "" {
		item.ID = "item_" + uuid.New().String()
	}
	item.Revision = ""
	item.Active = true
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	uc.logger.Debug("inventory item added", zap.String("item_id", item.ID), zap.String("name", item.Name))
	return item, nil
}

func (uc *inventoryUseCase) UpdateItem(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error) {
	if item.Name == "" {
		return nil, fmt.Errorf("item name is required: %w", apperrors.ErrValidation)
	}
	if item.Price < 0 {
		return nil, fmt.Errorf("item price must not be negative: %w", apperrors.ErrValidation)
	}

	item.UpdatedAt = time.Now()
	// Conflicts surface to the caller unchanged; there is no auto-merge.
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *inventoryUseCase) DeleteItem(ctx context.Context, item *model.InventoryItem) error {
	return uc.repo.Delete(ctx, item)
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, productID string, delta int) (*model.InventoryItem, error) {
	// Read-modify-write with the revision just read: a writer that raced
	// us between read and write turns into ErrConflict. One attempt only.
	item, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	item.Stock += delta // stock may go negative, no floor enforced
	item.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	uc.logger.Debug("stock adjusted",
		zap.String("item_id", item.ID),
		zap.Int("delta", delta),
		zap.Int("stock", item.Stock),
	)
	return item, nil
}

func (uc *inventoryUseCase) List(ctx context.Context, order docstore.Order) ([]model.InventoryItem, error) {
	return uc.repo.FindAll(ctx, order)
}

func (uc *inventoryUseCase) FindByCode(ctx context.Context, code string) (*model.InventoryItem, error) {
	if code == "" {
		return nil, fmt.Errorf("lookup code is required: %w", apperrors.ErrValidation)
	}
	items, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no item with code %s: %w", code, apperrors.ErrNotFound)
	}
	return &items[0], nil
}
