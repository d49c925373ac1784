package services

import (
	"context"
	"errors"
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

type userStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}

type userService struct {
	store       userStore
	defaultRole access.Role
	clockNow    func() time.Time
}

func NewUserService(store userStore, defaultRole access.Role) *userService {
	if !defaultRole.Valid() {
		defaultRole = access.RoleEditor
	}
	return &userService{
		store:       store,
		defaultRole: defaultRole,
		clockNow:    time.Now,
	}
}

// Role returns the caller's role label. Users without a profile get the
// configured default.
func (s *userService) Role(ctx context.Context, uid string) (access.Role, error) {
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		var notFound *errs.NotFoundError
		if errors.As(err, &notFound) {
			return s.defaultRole, nil
		}
		return "", err
	}
	return access.ParseRole(user.Role, s.defaultRole), nil
}

// SetRole switches the caller's role label. Any role may do this.
func (s *userService) SetRole(ctx context.Context, uid, label string) (access.Role, error) {
	role := access.Role(label)
	if !role.Valid() {
		return "", errs.NewValidationError("invalid role: " + label)
	}

	now := s.clockNow()
	user := &models.User{UID: uid, Role: string(role), CreatedAt: now, UpdatedAt: now}
	if existing, err := s.store.GetUser(ctx, uid); err == nil {
		user.CreatedAt = existing.CreatedAt
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		logger.FromContext(ctx).Error("failed to save user role", "error", err)
		return "", err
	}
	logger.FromContext(ctx).Info("user role changed", "role", role)
	return role, nil
}
