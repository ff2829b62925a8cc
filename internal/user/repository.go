package user

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/model"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) ([]model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)

	Create(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, u *model.User) error
}
