package user

import (
	"context"
	"errors"
	"time"

	"github.com/doimih/mini-crm/internal/audit"
	"github.com/google/uuid"
)

// Register creates a new user in the pending-verification state and sends
// the verification email. Registration requires a working mail setup: there
// is no verified-by-default path when mail is unreachable.
func (s *service) Register(ctx context.Context, email, password string) error {
	// Existence pre-check. This is an optimization only; the unique
	// constraint on email remains the source of truth under concurrency.
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to check existing user", "error", err)
		return ErrInternal.WithCause(err)
	}

	if !s.mailer.IsConfigured(ctx) {
		return ErrEmailDeliveryUnavailable
	}

	hashed, err := hashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return ErrInternal.WithCause(err)
	}

	tok, err := NewVerificationToken()
	if err != nil {
		s.logger.Error("failed to generate verification token", "error", err)
		return ErrInternal.WithCause(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return ErrInternal.WithCause(err)
	}

	newUser := &User{
		ID:                            id.String(),
		Email:                         email,
		PasswordHash:                  hashed,
		Role:                          RoleUser,
		Status:                        StatusActive,
		EmailVerificationToken:        &tok.Hash,
		EmailVerificationTokenExpires: &tok.ExpiresAt,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, ErrEmailExists) {
			// Lost the race to a concurrent registration.
			return ErrEmailExists
		}
		s.logger.Error("failed to create user", "error", err)
		return ErrInternal.WithCause(err)
	}

	// The token is persisted either way; a failed send is recorded so the
	// operator can relay the link, and the user can request a resend.
	if err := s.mailer.SendVerificationEmail(ctx, email, tok.Token, newUser.ID); err != nil {
		s.logger.Error("failed to send verification email", "user_id", newUser.ID, "error", err)
	}

	s.logger.Info("user registered", "user_id", newUser.ID)
	return nil
}

// Login authenticates credentials and issues a signed session token.
//
// The password is verified before the suspension check so an attacker
// cannot probe suspension state without a valid password. The error for
// unknown email and wrong password is identical.
func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to find user by email", "error", err)
		return "", nil, ErrInternal.WithCause(err)
	}

	if !checkPasswordHash(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	if u.Suspended() {
		return "", nil, ErrSuspended
	}

	if err := s.repo.SetLastLogin(ctx, u.ID, time.Now()); err != nil {
		s.logger.Error("failed to record last login", "user_id", u.ID, "error", err)
	}

	s.audit.Record(ctx, audit.Entry{UserID: u.ID, Action: audit.ActionLogin})

	token, err := NewSessionToken(u, s.config.JWTSecret)
	if err != nil {
		s.logger.Error("failed to sign session token", "user_id", u.ID, "error", err)
		return "", nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return token, u, nil
}

// Logout records the last-logout timestamp. The session token itself is
// stateless and stays cryptographically valid; the client discards it.
func (s *service) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetLastLogout(ctx, userID, time.Now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("failed to record last logout", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.audit.Record(ctx, audit.Entry{UserID: userID, Action: audit.ActionLogout})
	return nil
}
