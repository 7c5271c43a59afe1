package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/auth"
)

type contextKey string

const ctxActorKey contextKey = "actor"

// Actor is the authenticated principal carried in request context.
type Actor struct {
	AccountID uuid.UUID
	Role      string
}

// JWTAuth authenticates requests by validating the Bearer token and setting
// the actor into request context.
func JWTAuth(svc auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}
			accountID, role, err := svc.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := WithActor(r.Context(), &Actor{AccountID: accountID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose actor has a different role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromCtx(r.Context())
			if actor == nil || actor.Role != role {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromCtx returns the authenticated actor or nil.
func ActorFromCtx(ctx context.Context) *Actor {
	a, _ := ctx.Value(ctxActorKey).(*Actor)
	return a
}

// WithActor returns a context carrying the given actor.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey, a)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
