package access

import (
	"context"
	"strings"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseRole maps a stored label to a Role. Unknown labels fall back to def.
func ParseRole(label string, def Role) Role {
	switch Role(strings.ToLower(strings.TrimSpace(label))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEditor:
		return RoleEditor
	case RoleViewer:
		return RoleViewer
	default:
		return def
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// Capabilities is the permission view of a role. It is resolved once per
// request and passed to every mutating service call.
type Capabilities struct {
	role Role
}

func For(role Role) Capabilities {
	return Capabilities{role: role}
}

func (c Capabilities) Role() Role { return c.role }

func (c Capabilities) CanEdit() bool { return c.role == RoleAdmin || c.role == RoleEditor }

func (c Capabilities) CanSave() bool { return c.CanEdit() }

func (c Capabilities) CanReset() bool { return c.role == RoleAdmin }

func (c Capabilities) CanAddCatalog() bool { return c.CanEdit() }

func (c Capabilities) CanDeleteCatalog() bool { return c.role == RoleAdmin }

type contextKey string

const capabilitiesKey contextKey = "capabilities"

func ToContext(ctx context.Context, caps Capabilities) context.Context {
	return context.WithValue(ctx, capabilitiesKey, caps)
}

// FromContext returns the request's capabilities, or viewer rights if none
// were resolved.
func FromContext(ctx context.Context) Capabilities {
	if caps, ok := ctx.Value(capabilitiesKey).(Capabilities); ok {
		return caps
	}
	return For(RoleViewer)
}
