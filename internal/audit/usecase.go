package audit

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type UseCase interface {
	Append(ctx context.Context, action, userID string, payload map[string]any) (*model.AuditEntry, error)
	List(ctx context.Context, order docstore.Order) ([]model.AuditEntry, error)
}
