package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/doimih/mini-crm/internal/database"
)

// Repository is the credential store: authoritative storage and lookup of
// User records. Targeted mutations only touch the fields they name.
// Uniqueness of email and row-level atomicity are the store's responsibility.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)

	// One-shot token lookups: a match requires both the hash and a
	// still-future expiry, so "wrong" and "expired" are indistinguishable.
	FindByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	SetVerificationToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id string, at time.Time) error
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, newPasswordHash string) error

	SetLastLogin(ctx context.Context, id string, at time.Time) error
	SetLastLogout(ctx context.Context, id string, at time.Time) error

	UpdateFields(ctx context.Context, id string, fields map[string]any) (*User, error)
	Delete(ctx context.Context, id string) error
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new user repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}
