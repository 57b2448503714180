package user

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Handler holds the dependencies for the user module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the user module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RouteMiddlewares bundles the access-gate variants wired by the server.
// Authenticated is the full gate; SessionOnly is the carve-out that lets an
// unverified user reach logout and resend-verification; Superadmin composes
// the full gate with the SUPERADMIN role check.
type RouteMiddlewares struct {
	Authenticated huma.Middlewares
	SessionOnly   huma.Middlewares
	Superadmin    huma.Middlewares
	Limit         func(op string) func(huma.Context, func(huma.Context))
}

// RegisterRoutes sets up the routing for the user module.
func (h *Handler) RegisterRoutes(api huma.API, mw RouteMiddlewares) {
	// --- Authentication Routes ---
	huma.Register(api, huma.Operation{
		OperationID:   "auth-register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register a new user",
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{mw.Limit("register")},
	}, h.RegisterHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in a user",
		Middlewares: huma.Middlewares{mw.Limit("login")},
	}, h.LoginHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-verify-email",
		Method:      http.MethodGet,
		Path:        "/auth/verify",
		Summary:     "Verify an email address with a token",
	}, h.VerifyEmailHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-resend-verification",
		Method:      http.MethodPost,
		Path:        "/auth/resend-verification",
		Summary:     "Resend the verification email",
		Middlewares: mw.SessionOnly,
	}, h.ResendVerificationHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-forgot-password",
		Method:      http.MethodPost,
		Path:        "/auth/forgot-password",
		Summary:     "Initiate a password reset",
		Middlewares: huma.Middlewares{mw.Limit("forgot-password")},
	}, h.ForgotPasswordHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-reset-password",
		Method:      http.MethodPost,
		Path:        "/auth/reset-password",
		Summary:     "Reset password with a token",
	}, h.ResetPasswordHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "auth-logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Summary:       "Log out the current user",
		DefaultStatus: http.StatusNoContent,
		Middlewares:   mw.SessionOnly,
	}, h.LogoutHandler)

	// --- User Administration Routes (SUPERADMIN only) ---
	huma.Register(api, huma.Operation{
		OperationID: "users-list",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List all users",
		Middlewares: mw.Superadmin,
	}, h.ListUsersHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "users-create",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Create a user",
		DefaultStatus: http.StatusCreated,
		Middlewares:   mw.Superadmin,
	}, h.CreateUserHandler)

	huma.Register(api, huma.Operation{
		OperationID: "users-update",
		Method:      http.MethodPut,
		Path:        "/users/{id}",
		Summary:     "Update a user",
		Middlewares: mw.Superadmin,
	}, h.UpdateUserHandler)

	huma.Register(api, huma.Operation{
		OperationID: "users-update-status",
		Method:      http.MethodPatch,
		Path:        "/users/{id}/status",
		Summary:     "Suspend or reactivate a user",
		Middlewares: mw.Superadmin,
	}, h.UpdateUserStatusHandler)

	huma.Register(api, huma.Operation{
		OperationID: "users-update-verification",
		Method:      http.MethodPatch,
		Path:        "/users/{id}/verification",
		Summary:     "Set a user's verification state",
		Middlewares: mw.Superadmin,
	}, h.UpdateUserVerificationHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "users-delete",
		Method:        http.MethodDelete,
		Path:          "/users/{id}",
		Summary:       "Delete a user",
		DefaultStatus: http.StatusNoContent,
		Middlewares:   mw.Superadmin,
	}, h.DeleteUserHandler)
}
