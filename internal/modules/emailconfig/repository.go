package emailconfig

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/doimih/mini-crm/internal/database"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// Repository reads and writes the single email_config row (id = 1).
type Repository interface {
	Get(ctx context.Context) (*Config, error)
	Upsert(ctx context.Context, cfg *Config) (*Config, error)
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new email config repository.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the stored configuration, or ErrNotFound when unset.
func (r *repository) Get(ctx context.Context) (*Config, error) {
	query, args, err := r.psql.Select("id", "host", "port", "secure", "username", "password", "from_address", "updated_at").
		From("email_config").
		Where(squirrel.Eq{"id": 1}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := pgxscan.Get(ctx, r.db, &cfg, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// Upsert writes the configuration row, creating it on first use.
func (r *repository) Upsert(ctx context.Context, cfg *Config) (*Config, error) {
	now := time.Now()
	query, args, err := r.psql.Insert("email_config").
		Columns("id", "host", "port", "secure", "username", "password", "from_address", "updated_at").
		Values(1, cfg.Host, cfg.Port, cfg.Secure, cfg.Username, cfg.Password, cfg.From, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			host = EXCLUDED.host,
			port = EXCLUDED.port,
			secure = EXCLUDED.secure,
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			from_address = EXCLUDED.from_address,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return r.Get(ctx)
}
