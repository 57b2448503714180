package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EnsureSuperadmin guarantees at least one SUPERADMIN exists. It is an
// idempotent check-then-create-or-promote routine, safe to re-run on every
// process start: an existing account is promoted if needed, and a new one
// is created only when a bootstrap password is configured.
func (s *service) EnsureSuperadmin(ctx context.Context) error {
	email := s.config.Superadmin.Email

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != RoleSuperadmin {
			if _, err := s.repo.UpdateFields(ctx, existing.ID, map[string]any{"role": RoleSuperadmin}); err != nil {
				return err
			}
			s.logger.Info("promoted existing account to superadmin", "user_id", existing.ID)
		}
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	if s.config.Superadmin.Password == "" {
		s.logger.Warn("SUPERADMIN_PASSWORD not set, skipping superadmin creation")
		return nil
	}

	hashed, err := hashPassword(s.config.Superadmin.Password)
	if err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	now := time.Now()
	u := &User{
		ID:              id.String(),
		Email:           email,
		PasswordHash:    hashed,
		Role:            RoleSuperadmin,
		Status:          StatusActive,
		EmailVerifiedAt: &now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		// Another instance may have created it between check and insert.
		if errors.Is(err, ErrEmailExists) {
			return nil
		}
		return err
	}

	s.logger.Info("created superadmin account", "user_id", u.ID)
	return nil
}
