package user

import (
	"context"
	"errors"
	"time"

	"github.com/doimih/mini-crm/internal/audit"
)

// ForgotPassword initiates a password reset. The caller always gets the same
// generic success, whether or not the email exists or the account is
// suspended, so the endpoint cannot be used to enumerate accounts. Only an
// existing, active user gets a token persisted and an email dispatched.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		s.logger.Error("failed to find user for password reset", "error", err)
		return ErrInternal.WithCause(err)
	}

	if u.Suspended() {
		return nil
	}

	tok, err := NewResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.repo.SetResetToken(ctx, u.ID, tok.Hash, tok.ExpiresAt); err != nil {
		s.logger.Error("failed to store reset token", "user_id", u.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, u.Email, tok.Token, u.ID); err != nil {
		s.logger.Error("failed to send reset email", "user_id", u.ID, "error", err)
	}

	s.audit.Record(ctx, audit.Entry{UserID: u.ID, Action: audit.ActionPasswordResetRequested})
	return nil
}

// ResetPassword consumes a reset token and sets a new password. Clearing the
// token fields happens in the same update as the password change, so a token
// resets at most once and the previous hash stops authenticating.
func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidOrExpiredToken
	}

	u, err := s.repo.FindByResetToken(ctx, HashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to look up reset token", "error", err)
		return ErrInternal.WithCause(err)
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, hashed); err != nil {
		s.logger.Error("failed to update password", "user_id", u.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.audit.Record(ctx, audit.Entry{UserID: u.ID, Action: audit.ActionPasswordResetCompleted})
	s.logger.Info("password reset completed", "user_id", u.ID)
	return nil
}
