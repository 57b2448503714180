package user

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/doimih/mini-crm/internal/contextx"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHandlerRouter mounts the user routes over the in-memory service. The
// gate middlewares are replaced by an identity injector: gate behavior has
// its own tests, these cover the HTTP surface of the handlers.
func newHandlerRouter(env *testEnv, actorID string, role Role) chi.Router {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("handler test", "0.0.1"))

	inject := func(ctx huma.Context, next func(huma.Context)) {
		if actorID != "" {
			ctx = huma.WithValue(ctx, contextx.UserIDKey, actorID)
			ctx = huma.WithValue(ctx, contextx.UserRoleKey, role)
		}
		next(ctx)
	}
	noLimit := func(string) func(huma.Context, func(huma.Context)) {
		return func(ctx huma.Context, next func(huma.Context)) { next(ctx) }
	}

	handler := NewHandler(env.svc, slog.New(slog.DiscardHandler))
	handler.RegisterRoutes(api, RouteMiddlewares{
		Authenticated: huma.Middlewares{inject},
		SessionOnly:   huma.Middlewares{inject},
		Superadmin:    huma.Middlewares{inject},
		Limit:         noLimit,
	})
	return router
}

func doJSON(router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("returns 201 and a generic message", func(t *testing.T) {
		env := newTestEnv()
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodPost, "/auth/register", map[string]string{
			"email":    "jane@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "Verification email sent")
	})

	t.Run("rejects an invalid body with a fields map", func(t *testing.T) {
		env := newTestEnv()
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodPost, "/auth/register", map[string]string{
			"email":    "not-an-email",
			"password": "abc",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ErrValidation")
		assert.Contains(t, rec.Body.String(), "must be a valid email")
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("u1", "jane@example.com", "whatever")
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodPost, "/auth/register", map[string]string{
			"email":    "jane@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ErrEmailExists")
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("returns a token and the user projection", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("u1", "jane@example.com", "s3cret-pass")
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodPost, "/auth/login", map[string]string{
			"email":    "jane@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Token string   `json:"token"`
			User  UserInfo `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, "u1", body.User.ID)
		assert.True(t, body.User.EmailVerified)
		assert.NotContains(t, rec.Body.String(), "password",
			"the projection must not carry credential material")
	})

	t.Run("rejects bad credentials with 401", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("u1", "jane@example.com", "s3cret-pass")
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodPost, "/auth/login", map[string]string{
			"email":    "jane@example.com",
			"password": "wrong-pass",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "ErrInvalidCredentials")
	})
}

func TestVerifyEmailEndpoint(t *testing.T) {
	t.Run("verifies with the emailed token", func(t *testing.T) {
		env := newTestEnv()
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodPost, "/auth/register", map[string]string{
			"email":    "jane@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		token := env.mailer.lastSent().Token

		rec = doJSON(router, http.MethodGet, "/auth/verify?token="+token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email verified successfully")
	})

	t.Run("rejects an unknown token with 400", func(t *testing.T) {
		env := newTestEnv()
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodGet, "/auth/verify?token=deadbeef", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ErrInvalidOrExpiredToken")
	})

	t.Run("treats a missing token like an invalid one", func(t *testing.T) {
		env := newTestEnv()
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodGet, "/auth/verify", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ErrInvalidOrExpiredToken")
	})
}

func TestForgotPasswordEndpoint(t *testing.T) {
	t.Run("returns the same message whether or not the email exists", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("u1", "jane@example.com", "s3cret-pass")
		router := newHandlerRouter(env, "", "")

		known := doJSON(router, http.MethodPost, "/auth/forgot-password", map[string]string{
			"email": "jane@example.com",
		})
		unknown := doJSON(router, http.MethodPost, "/auth/forgot-password", map[string]string{
			"email": "nobody@example.com",
		})
		require.Equal(t, http.StatusOK, known.Code)
		require.Equal(t, http.StatusOK, unknown.Code)
		assert.Equal(t, known.Body.String(), unknown.Body.String())
	})
}

func TestResetPasswordEndpoint(t *testing.T) {
	t.Run("rejects a too-short password before touching the token", func(t *testing.T) {
		env := newTestEnv()
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodPost, "/auth/reset-password", map[string]string{
			"token":    "deadbeef",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "must be at least 8 characters")
	})

	t.Run("completes a reset end to end", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("u1", "jane@example.com", "old-pass")
		router := newHandlerRouter(env, "", "")

		rec := doJSON(router, http.MethodPost, "/auth/forgot-password", map[string]string{
			"email": "jane@example.com",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		token := env.mailer.lastSent().Token

		rec = doJSON(router, http.MethodPost, "/auth/reset-password", map[string]string{
			"token":    token,
			"password": "brand-new-pass",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Password reset successfully")
	})
}

func TestLogoutEndpoint(t *testing.T) {
	t.Run("returns 204 for an authenticated session", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("u1", "jane@example.com", "s3cret-pass")
		router := newHandlerRouter(env, "u1", RoleUser)

		rec := doJSON(router, http.MethodPost, "/auth/logout", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NotNil(t, env.repo.get("u1").LastLogoutAt)
	})
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("lists users", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("admin", "admin@example.com", "s3cret-pass", func(u *User) {
			u.Role = RoleSuperadmin
		})
		env.seedUser("u1", "jane@example.com", "s3cret-pass")
		router := newHandlerRouter(env, "admin", RoleSuperadmin)

		rec := doJSON(router, http.MethodGet, "/users", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "jane@example.com")
		assert.Contains(t, rec.Body.String(), "admin@example.com")
	})

	t.Run("suspends a user via the status route", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("admin", "admin@example.com", "s3cret-pass", func(u *User) {
			u.Role = RoleSuperadmin
		})
		env.seedUser("u1", "jane@example.com", "s3cret-pass")
		router := newHandlerRouter(env, "admin", RoleSuperadmin)

		rec := doJSON(router, http.MethodPatch, "/users/u1/status", map[string]string{
			"status": "SUSPENDED",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.repo.get("u1").Suspended())
	})

	t.Run("refuses self status changes", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("admin", "admin@example.com", "s3cret-pass", func(u *User) {
			u.Role = RoleSuperadmin
		})
		router := newHandlerRouter(env, "admin", RoleSuperadmin)

		rec := doJSON(router, http.MethodPatch, "/users/admin/status", map[string]string{
			"status": "SUSPENDED",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("deletes a user", func(t *testing.T) {
		env := newTestEnv()
		env.seedUser("admin", "admin@example.com", "s3cret-pass", func(u *User) {
			u.Role = RoleSuperadmin
		})
		env.seedUser("u1", "jane@example.com", "s3cret-pass")
		router := newHandlerRouter(env, "admin", RoleSuperadmin)

		rec := doJSON(router, http.MethodDelete, "/users/u1", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Nil(t, env.repo.get("u1"))
	})
}
