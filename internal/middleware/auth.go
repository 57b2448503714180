package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/doimih/mini-crm/internal/contextx"
	"github.com/doimih/mini-crm/internal/httpx"
	"github.com/doimih/mini-crm/internal/modules/user"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// UserStore is the subset of the user repository the access gate needs for
// its per-request freshness re-check.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// AccessGate validates the session token on every protected request and
// re-reads role and status from the credential store. The token is treated
// purely as proof of identity: a role change takes effect on the user's
// next request, and suspending or deleting a user makes outstanding tokens
// ineffective even though they remain cryptographically valid.
type AccessGate struct {
	secret string
	store  UserStore
	logger *slog.Logger
}

// NewAccessGate creates the per-request authentication enforcement point.
func NewAccessGate(secret string, store UserStore, logger *slog.Logger) *AccessGate {
	return &AccessGate{secret: secret, store: store, logger: logger}
}

// Authenticate is the gate for regular protected routes: session validation,
// freshness re-check, suspension check, and the verified-email requirement.
func (g *AccessGate) Authenticate() func(huma.Context, func(huma.Context)) {
	return g.middleware(true)
}

// AuthenticateUnverified is the explicit carve-out for logout and
// resend-verification, so an unverified user can still reach those two
// operations.
func (g *AccessGate) AuthenticateUnverified() func(huma.Context, func(huma.Context)) {
	return g.middleware(false)
}

func (g *AccessGate) middleware(requireVerified bool) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, _ := humachi.Unwrap(ctx)

		// Step 1: cryptographic validation of the bearer token.
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeProblem(ctx, r, user.ErrUnauthenticated)
			return
		}
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			writeProblem(ctx, r, user.ErrUnauthenticated)
			return
		}

		claims, err := user.ParseSessionToken(tokenString, g.secret)
		if err != nil {
			g.logger.Warn("invalid session token", "error", err)
			writeProblem(ctx, r, user.ErrUnauthenticated)
			return
		}

		// Step 2: freshness re-check. A deleted user's outstanding tokens
		// are inert.
		u, err := g.store.FindByID(r.Context(), claims.Subject)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				g.logger.Error("failed to load user for access gate", "error", err)
			}
			writeProblem(ctx, r, user.ErrUnauthenticated)
			return
		}

		// Step 3: suspension overrides whatever the token claims.
		if u.Suspended() {
			writeProblem(ctx, r, user.ErrSuspended)
			return
		}

		// Step 4: verification gate, unless this route is carved out.
		if requireVerified && !u.Verified() {
			writeProblem(ctx, r, user.ErrEmailNotVerified)
			return
		}

		// Downstream authorization always sees the fresh role.
		ctx = huma.WithValue(ctx, contextx.UserIDKey, u.ID)
		ctx = huma.WithValue(ctx, contextx.UserEmailKey, u.Email)
		ctx = huma.WithValue(ctx, contextx.UserRoleKey, u.Role)
		next(ctx)
	}
}

// RequireRoles authorizes the resolved role against a static allow-list.
// It composes after the access gate on role-gated routes.
func RequireRoles(roles ...user.Role) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, _ := humachi.Unwrap(ctx)

		role, ok := ctx.Context().Value(contextx.UserRoleKey).(user.Role)
		if !ok {
			writeProblem(ctx, r, user.ErrUnauthenticated)
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				next(ctx)
				return
			}
		}
		writeProblem(ctx, r, user.ErrForbidden)
	}
}

// writeProblem terminates the request with an RFC7807 response for a domain
// error. Gate failures never say which sub-check failed beyond the coarse
// category.
func writeProblem(ctx huma.Context, r *http.Request, derr *user.DomainError) {
	_, w := humachi.Unwrap(ctx)

	p := &httpx.Problem{
		Type:      derr.ProblemTypeURI(),
		Title:     derr.ProblemTitle(),
		Status:    derr.ProblemStatus(),
		Detail:    derr.ProblemDetail(),
		Code:      derr.ProblemCode(),
		RequestID: chimw.GetReqID(r.Context()),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.GetStatus())
	_ = json.NewEncoder(w).Encode(p)
}
