package services

import (
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/internal/store"
	"github.com/GregMSThompson/riskbi-backend/pkg/helpers"
)

func TestUserRoleDefaults(t *testing.T) {
	svc := NewUserService(store.NewMemorySet().Users, access.RoleViewer)
	role, err := svc.Role(helpers.TestCtx(), "u1")
	if err != nil || role != access.RoleViewer {
		t.Fatalf("expected viewer default, got %s (%v)", role, err)
	}

	svc = NewUserService(store.NewMemorySet().Users, "root")
	if role, _ := svc.Role(helpers.TestCtx(), "u1"); role != access.RoleEditor {
		t.Fatalf("expected invalid default to fall back to editor, got %s", role)
	}
}

func TestUserSetRole(t *testing.T) {
	users := store.NewMemorySet().Users
	svc := NewUserService(users, access.RoleEditor)
	ctx := helpers.TestCtx()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = users.SaveUser(ctx, &models.User{UID: "u1", Role: "viewer", CreatedAt: created})

	var validation *errs.ValidationError
	if _, err := svc.SetRole(ctx, "u1", "owner"); !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	role, err := svc.SetRole(ctx, "u1", "admin")
	if err != nil || role != access.RoleAdmin {
		t.Fatalf("unexpected result: %s (%v)", role, err)
	}
	u, _ := users.GetUser(ctx, "u1")
	if u.Role != "admin" || !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected stored user: %+v", u)
	}
	if role, _ := svc.Role(ctx, "u1"); role != access.RoleAdmin {
		t.Fatalf("expected admin, got %s", role)
	}
}
