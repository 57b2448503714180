package user

import (
	"context"
	"errors"
	"time"

	"github.com/doimih/mini-crm/internal/audit"
	"github.com/google/uuid"
)

// CreateUserInput carries the fields a superadmin may set when creating an
// account directly.
type CreateUserInput struct {
	Email    string
	Password string
	Role     Role
	Status   Status
}

// UpdateUserInput carries optional fields for an administrative update.
// Nil fields are left untouched.
type UpdateUserInput struct {
	Email    *string
	Password *string
	Role     *Role
	Status   *Status
}

// ListUsers returns all users for the admin panel.
func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return users, nil
}

// CreateUser creates an account on behalf of a superadmin. When outbound
// mail is configured the account starts pending verification like a
// self-registration; otherwise it is verified immediately so admin-created
// accounts are not stranded with no way to verify.
func (s *service) CreateUser(ctx context.Context, actorID string, in CreateUserInput) (*User, error) {
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to check existing user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	u := &User{
		ID:           id.String(),
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         RoleUser,
		Status:       StatusActive,
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if in.Status != "" {
		u.Status = in.Status
	}

	var plaintext string
	if s.mailer.IsConfigured(ctx) {
		tok, err := NewVerificationToken()
		if err != nil {
			s.logger.Error("failed to generate verification token", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		plaintext = tok.Token
		u.EmailVerificationToken = &tok.Hash
		u.EmailVerificationTokenExpires = &tok.ExpiresAt
	} else {
		now := time.Now()
		u.EmailVerifiedAt = &now
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if plaintext != "" {
		if err := s.mailer.SendVerificationEmail(ctx, u.Email, plaintext, u.ID); err != nil {
			s.logger.Error("failed to send verification email", "user_id", u.ID, "error", err)
		}
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:   actorID,
		Action:   audit.ActionUserCreate,
		Entity:   "User",
		EntityID: u.ID,
		Details:  map[string]any{"email": u.Email, "role": u.Role},
	})
	return u, nil
}

// UpdateUser applies an administrative update. Identity- and
// authorization-bearing fields (email, role, status) are ignored when the
// target is the acting superadmin, so admins cannot lock themselves out.
func (s *service) UpdateUser(ctx context.Context, actorID, id string, in UpdateUserInput) (*User, error) {
	isSelf := actorID == id

	fields := map[string]any{}
	if in.Email != nil && !isSelf {
		fields["email"] = *in.Email
	}
	if in.Role != nil && !isSelf {
		fields["role"] = *in.Role
	}
	if in.Status != nil && !isSelf {
		fields["status"] = *in.Status
	}
	if in.Password != nil {
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		fields["password_hash"] = hashed
	}

	u, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:   actorID,
		Action:   audit.ActionUserUpdate,
		Entity:   "User",
		EntityID: u.ID,
		Details:  map[string]any{"email": u.Email, "role": u.Role, "status": u.Status},
	})
	return u, nil
}

// SetUserStatus suspends or reactivates an account. Suspension takes effect
// on the target's very next request via the access gate's freshness re-check.
func (s *service) SetUserStatus(ctx context.Context, actorID, id string, status Status) (*User, error) {
	if actorID == id {
		return nil, ErrForbidden
	}

	u, err := s.repo.UpdateFields(ctx, id, map[string]any{"status": status})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to update user status", "user_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:   actorID,
		Action:   audit.ActionUserStatusChange,
		Entity:   "User",
		EntityID: u.ID,
		Details:  map[string]any{"status": u.Status},
	})
	return u, nil
}

// SetUserVerification manually flips the verification state. Marking a user
// verified clears any outstanding verification token.
func (s *service) SetUserVerification(ctx context.Context, actorID, id string, verified bool) (*User, error) {
	fields := map[string]any{
		"email_verification_token":         nil,
		"email_verification_token_expires": nil,
	}
	if verified {
		fields["email_verified_at"] = time.Now()
	} else {
		fields["email_verified_at"] = nil
	}

	u, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to update user verification", "user_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:   actorID,
		Action:   audit.ActionUserVerificationChange,
		Entity:   "User",
		EntityID: u.ID,
		Details:  map[string]any{"verified": verified},
	})
	return u, nil
}

// DeleteUser removes an account. Self-deletion is refused. Outstanding
// session tokens of the deleted user become inert on their next use.
func (s *service) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrSelfDelete
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:   actorID,
		Action:   audit.ActionUserDelete,
		Entity:   "User",
		EntityID: id,
	})
	return nil
}
