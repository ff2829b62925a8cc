package audit

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

// Repository is append-only: entries are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	FindAll(ctx context.Context, order docstore.Order) ([]model.AuditEntry, error)
}
