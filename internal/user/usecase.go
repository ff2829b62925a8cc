package user

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/invoice"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type UseCase interface {
	AddUser(ctx context.Context, u *model.User) (*model.User, error)

	// DeleteUser refuses to remove the reserved owner account.
	DeleteUser(ctx context.Context, u *model.User) error

	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)

	// Authenticate checks the PIN and records a LOGIN audit entry.
	Authenticate(ctx context.Context, username, pin string) (*model.User, error)
	Logout(ctx context.Context, userID string) error
	CloseShift(ctx context.Context, userID string, summary *invoice.ShiftSummary) error

	// Bootstrap seeds the owner account when it does not exist yet. It is
	// the only document the core ever creates unprompted and must be
	// called explicitly at startup.
	Bootstrap(ctx context.Context, defaultPIN, ownerName string) error
}
