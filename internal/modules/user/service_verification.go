package user

import (
	"context"
	"errors"
	"time"
)

// VerifyEmail consumes a verification token. The lookup requires both the
// token hash and a still-future expiry, so a wrong, expired, or already-used
// token all fail the same way. Success sets the verification timestamp and
// clears the token fields in one row update: a token verifies at most once.
func (s *service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidOrExpiredToken
	}

	u, err := s.repo.FindByVerificationToken(ctx, HashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to look up verification token", "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.repo.MarkEmailVerified(ctx, u.ID, time.Now()); err != nil {
		s.logger.Error("failed to mark email verified", "user_id", u.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("email verified", "user_id", u.ID)
	return nil
}

// ResendVerification issues a fresh verification token for an authenticated,
// still-unverified user. The new token overwrites the old row content, so
// any previously mailed link stops working.
func (s *service) ResendVerification(ctx context.Context, userID string) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("failed to find user for resend", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}

	if u.Verified() {
		return ErrAlreadyVerified
	}

	tok, err := NewVerificationToken()
	if err != nil {
		s.logger.Error("failed to generate verification token", "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.repo.SetVerificationToken(ctx, u.ID, tok.Hash, tok.ExpiresAt); err != nil {
		s.logger.Error("failed to store verification token", "user_id", u.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, u.Email, tok.Token, u.ID); err != nil {
		s.logger.Error("failed to send verification email", "user_id", u.ID, "error", err)
	}

	return nil
}
