package middleware

import (
	"context"
	"net/http"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

type roleResolver interface {
	Role(ctx context.Context, uid string) (access.Role, error)
}

// Capabilities resolves the caller's role once per request and stores the
// matching access.Capabilities in the context. It must run after auth.
func Capabilities(roles roleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role, err := roles.Role(ctx, UID(ctx))
			if err != nil {
				logger.FromContext(ctx).Error("failed to resolve role", "error", err)
				http.Error(w, "failed to resolve role", http.StatusInternalServerError)
				return
			}
			ctx = access.ToContext(ctx, access.For(role))
			_, ctx = logger.With(ctx, "role", role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
