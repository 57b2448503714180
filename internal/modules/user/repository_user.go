package user

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var userColumns = []string{
	"id", "email", "password_hash", "role", "status",
	"email_verified_at", "email_verification_token", "email_verification_token_expires",
	"password_reset_token", "password_reset_token_expires",
	"last_login_at", "last_logout_at", "created_at", "updated_at",
}

// Create inserts a new user record. The unique constraint on email is the
// source of truth for uniqueness: a violation surfaces as ErrEmailExists
// even when a pre-check raced with a concurrent insert.
func (r *repository) Create(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	query, args, err := r.psql.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Email, u.PasswordHash, u.Role, u.Status,
			u.EmailVerifiedAt, u.EmailVerificationToken, u.EmailVerificationTokenExpires,
			u.PasswordResetToken, u.PasswordResetTokenExpires,
			u.LastLoginAt, u.LastLogoutAt, u.CreatedAt, u.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailExists.WithCause(err)
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

// FindByID retrieves a user by their unique ID.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// List returns all users, newest first.
func (r *repository) List(ctx context.Context) ([]User, error) {
	query, args, err := r.psql.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []User
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByVerificationToken matches a hashed verification token with an
// unexpired TTL.
func (r *repository) FindByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	return r.findOne(ctx, squirrel.And{
		squirrel.Eq{"email_verification_token": tokenHash},
		squirrel.Gt{"email_verification_token_expires": now},
	})
}

// FindByResetToken matches a hashed password-reset token with an unexpired TTL.
func (r *repository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	return r.findOne(ctx, squirrel.And{
		squirrel.Eq{"password_reset_token": tokenHash},
		squirrel.Gt{"password_reset_token_expires": now},
	})
}

// SetVerificationToken overwrites the outstanding verification token fields,
// invalidating any previously issued token.
func (r *repository) SetVerificationToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return r.updateRow(ctx, id, map[string]any{
		"email_verification_token":         tokenHash,
		"email_verification_token_expires": expires,
	})
}

// MarkEmailVerified sets the verification timestamp and clears both
// verification-token fields in a single row update, so a token can verify
// at most once.
func (r *repository) MarkEmailVerified(ctx context.Context, id string, at time.Time) error {
	return r.updateRow(ctx, id, map[string]any{
		"email_verified_at":                at,
		"email_verification_token":         nil,
		"email_verification_token_expires": nil,
	})
}

// SetResetToken overwrites the outstanding reset token fields, invalidating
// any previously issued token.
func (r *repository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return r.updateRow(ctx, id, map[string]any{
		"password_reset_token":         tokenHash,
		"password_reset_token_expires": expires,
	})
}

// UpdatePassword sets a new password hash and clears the reset-token fields
// in the same update.
func (r *repository) UpdatePassword(ctx context.Context, id, newPasswordHash string) error {
	return r.updateRow(ctx, id, map[string]any{
		"password_hash":                newPasswordHash,
		"password_reset_token":         nil,
		"password_reset_token_expires": nil,
	})
}

// SetLastLogin records the last successful login time.
func (r *repository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateRow(ctx, id, map[string]any{"last_login_at": at})
}

// SetLastLogout records the last logout time.
func (r *repository) SetLastLogout(ctx context.Context, id string, at time.Time) error {
	return r.updateRow(ctx, id, map[string]any{"last_logout_at": at})
}

// UpdateFields applies a targeted mutation and returns the updated row.
// Fields the caller omits are not altered.
func (r *repository) UpdateFields(ctx context.Context, id string, fields map[string]any) (*User, error) {
	if len(fields) > 0 {
		if err := r.updateRow(ctx, id, fields); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return nil, ErrEmailExists.WithCause(err)
			}
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a user row. It returns ErrNotFound when no row matches.
func (r *repository) Delete(ctx context.Context, id string) error {
	query, args, err := r.psql.Delete("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// updateRow is a helper applying a SetMap to a single user row.
func (r *repository) updateRow(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()

	query, args, err := r.psql.Update("users").
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// findOne is a helper method to find a single user by a given condition.
func (r *repository) findOne(ctx context.Context, condition squirrel.Sqlizer) (*User, error) {
	query, args, err := r.psql.Select(userColumns...).
		From("users").
		Where(condition).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u User
	if err := pgxscan.Get(ctx, r.db, &u, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &u, nil
}
