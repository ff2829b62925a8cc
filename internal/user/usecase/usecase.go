package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"
	"github.com/fekuna/omnipos-datastore/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-datastore/internal/audit"
	"github.com/fekuna/omnipos-datastore/internal/invoice"
	"github.com/fekuna/omnipos-datastore/internal/model"
	"github.com/fekuna/omnipos-datastore/internal/user"
)

type userUseCase struct {
	repo   user.Repository
	audit  audit.UseCase
	logger logger.ZapLogger
}

func NewUserUseCase(repo user.Repository, auditUC audit.UseCase, log logger.ZapLogger) user.UseCase {
	return &userUseCase{
		repo:   repo,
		audit:  auditUC,
		logger: log,
	}
}

func (uc *userUseCase) AddUser(ctx context.Context, u *model.User) (*model.User, error) {
	if u.Username == "" || u.PIN == "" || u.Role == "" || u.Name == "" {
		return nil, fmt.Errorf("username, pin, role and name are required: %w", apperrors.ErrValidation)
	}
	if u.Role != model.RoleOwner && u.Role != model.RoleWorker {
		return nil, fmt.Errorf("unknown role %q: %w", u.Role, apperrors.ErrValidation)
	}

	existing, err := uc.repo.FindByUsername(ctx, u.Username)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("username %s already exists: %w", u.Username, apperrors.ErrValidation)
	}

	if u.ID == "" {
		u.ID = "user_" + uuid.New().String()
	}
	u.Revision = ""
	u.CreatedAt = time.Now()

	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.logger.Info("user added", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, u *model.User) error {
	if u.Username == model.OwnerUsername {
		return fmt.Errorf("cannot delete the default owner: %w", apperrors.ErrValidation)
	}
	return uc.repo.Delete(ctx, u)
}

func (uc *userUseCase) Get(ctx context.Context, id string) (*model.User, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *userUseCase) List(ctx context.Context) ([]model.User, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *userUseCase) Authenticate(ctx context.Context, username, pin string) (*model.User, error) {
	matches, err := uc.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("user %s: %w", username, apperrors.ErrNotFound)
	}

	u := matches[0]
	if u.PIN != pin {
		return nil, fmt.Errorf("invalid PIN: %w", apperrors.ErrValidation)
	}

	if _, err := uc.audit.Append(ctx, model.ActionLogin, u.ID, nil); err != nil {
		// Login itself succeeded; the missing audit entry is only logged.
		uc.logger.Error("failed to record login audit entry", zap.String("user_id", u.ID), zap.Error(err))
	}
	return &u, nil
}

func (uc *userUseCase) Logout(ctx context.Context, userID string) error {
	_, err := uc.audit.Append(ctx, model.ActionLogout, userID, nil)
	return err
}

func (uc *userUseCase) CloseShift(ctx context.Context, userID string, summary *invoice.ShiftSummary) error {
	payload := map[string]any{}
	if summary != nil {
		payload["summary"] = summary
	}
	_, err := uc.audit.Append(ctx, model.ActionShiftClose, userID, payload)
	return err
}

// Bootstrap seeds the reserved owner account on first startup. Calling it
// again is a no-op.
func (uc *userUseCase) Bootstrap(ctx context.Context, defaultPIN, ownerName string) error {
	if _, err := uc.repo.GetByID(ctx, model.OwnerUserID); err == nil {
		return nil
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	owner := &model.User{
		ID:        model.OwnerUserID,
		Username:  model.OwnerUsername,
		PIN:       defaultPIN,
		Role:      model.RoleOwner,
		Name:      ownerName,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, owner); err != nil {
		return err
	}

	uc.logger.Info("seeded owner user", zap.String("user_id", owner.ID))
	return nil
}
