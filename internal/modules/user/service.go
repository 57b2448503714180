package user

import (
	"context"
	"log/slog"

	"github.com/doimih/mini-crm/internal/audit"
	"github.com/doimih/mini-crm/internal/config"
	"github.com/doimih/mini-crm/internal/notification"
)

// Service defines the business logic of the authentication core: session
// issuance, one-shot token flows, and administrative user management.
type Service interface {
	// Session issuer flows
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, *User, error)
	Logout(ctx context.Context, userID string) error

	// Verification flows
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID string) error

	// Password reset flows
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	// Admin user management (SUPERADMIN routes)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, actorID string, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, actorID, id string, in UpdateUserInput) (*User, error)
	SetUserStatus(ctx context.Context, actorID, id string, status Status) (*User, error)
	SetUserVerification(ctx context.Context, actorID, id string, verified bool) (*User, error)
	DeleteUser(ctx context.Context, actorID, id string) error

	// EnsureSuperadmin runs at startup; see bootstrap.go.
	EnsureSuperadmin(ctx context.Context) error
}

// service implements the Service interface.
type service struct {
	repo   Repository
	logger *slog.Logger
	config *config.Config
	mailer notification.Mailer
	audit  audit.Recorder
}

// Config holds the dependencies for the user service.
type Config struct {
	Repo   Repository
	Logger *slog.Logger
	Config *config.Config
	Mailer notification.Mailer
	Audit  audit.Recorder
}

// NewService creates a new user service with the given dependencies.
func NewService(cfg *Config) Service {
	return &service{
		repo:   cfg.Repo,
		logger: cfg.Logger,
		config: cfg.Config,
		mailer: cfg.Mailer,
		audit:  cfg.Audit,
	}
}
