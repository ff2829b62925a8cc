package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"
	"github.com/fekuna/omnipos-datastore/pkg/logger"
	"github.com/google/uuid"

	"github.com/fekuna/omnipos-datastore/internal/audit"
	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type auditUseCase struct {
	repo   audit.Repository
	logger logger.ZapLogger
}

func NewAuditUseCase(repo audit.Repository, log logger.ZapLogger) audit.UseCase {
	return &auditUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *auditUseCase) Append(ctx context.Context, action, userID string, payload map[string]any) (*model.AuditEntry, error) {
	if action == "" {
		return nil, fmt.Errorf("audit action is required: %w", apperrors.ErrValidation)
	}

	entry := &model.AuditEntry{
		ID:        "audit_" + uuid.New().String(),
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := uc.repo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (uc *auditUseCase) List(ctx context.Context, order docstore.Order) ([]model.AuditEntry, error) {
	return uc.repo.FindAll(ctx, order)
}
