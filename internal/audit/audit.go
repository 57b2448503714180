package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/doimih/mini-crm/internal/database"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// Auth-core actions written through to the audit log.
const (
	ActionLogin                  = "LOGIN"
	ActionLogout                 = "LOGOUT"
	ActionPasswordResetRequested = "PASSWORD_RESET_REQUESTED"
	ActionPasswordResetCompleted = "PASSWORD_RESET_COMPLETED"
	ActionUserCreate             = "USER_CREATE"
	ActionUserUpdate             = "USER_UPDATE"
	ActionUserDelete             = "USER_DELETE"
	ActionUserStatusChange       = "USER_STATUS_CHANGE"
	ActionUserVerificationChange = "USER_VERIFICATION_CHANGE"
)

// Entry is a single audit event. UserID is the acting user; Entity/EntityID
// identify the affected record when it differs from the actor.
type Entry struct {
	UserID   string
	Action   string
	Entity   string
	EntityID string
	Details  any
}

// Log is a persisted audit row as read back by the admin API.
type Log struct {
	ID        int64     `db:"id"`
	UserID    *string   `db:"user_id"`
	Action    string    `db:"action"`
	Entity    *string   `db:"entity"`
	EntityID  *string   `db:"entity_id"`
	Details   []byte    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
}

// ListFilter narrows and pages the audit trail. Action matches as a
// case-insensitive substring; UserID matches exactly.
type ListFilter struct {
	UserID string
	Action string
	Page   int
	Limit  int
}

// Recorder persists audit entries. Recording is best-effort bookkeeping:
// a failed write never fails the request that produced it.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Repository records audit entries and reads them back for the admin trail.
type Repository interface {
	Recorder
	List(ctx context.Context, f ListFilter) ([]Log, int64, error)
}

type repository struct {
	db     database.DBTX
	psql   squirrel.StatementBuilderType
	logger *slog.Logger
}

// NewRepository creates a Postgres-backed audit repository.
func NewRepository(db database.DBTX, logger *slog.Logger) Repository {
	return &repository{
		db:     db,
		psql:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger,
	}
}

// Record writes one row to audit_logs. Entries without an acting user are
// dropped, matching the write-through contract.
func (r *repository) Record(ctx context.Context, e Entry) {
	if e.UserID == "" {
		return
	}

	var details []byte
	if e.Details != nil {
		var err error
		details, err = json.Marshal(e.Details)
		if err != nil {
			r.logger.Error("failed to marshal audit details", "action", e.Action, "error", err)
			details = nil
		}
	}

	query, args, err := r.psql.Insert("audit_logs").
		Columns("user_id", "action", "entity", "entity_id", "details").
		Values(e.UserID, e.Action, nullable(e.Entity), nullable(e.EntityID), details).
		ToSql()
	if err != nil {
		r.logger.Error("failed to build audit insert", "action", e.Action, "error", err)
		return
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.logger.Error("failed to write audit log", "action", e.Action, "error", err)
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns one page of the audit trail, newest first, with the total
// count of matching rows.
func (r *repository) List(ctx context.Context, f ListFilter) ([]Log, int64, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}

	where := squirrel.And{}
	if f.UserID != "" {
		where = append(where, squirrel.Eq{"user_id": f.UserID})
	}
	if f.Action != "" {
		where = append(where, squirrel.ILike{"action": "%" + f.Action + "%"})
	}

	countQ := r.psql.Select("COUNT(*)").From("audit_logs")
	listQ := r.psql.Select("id", "user_id", "action", "entity", "entity_id", "details", "created_at").
		From("audit_logs").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))
	if len(where) > 0 {
		countQ = countQ.Where(where)
		listQ = listQ.Where(where)
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := pgxscan.Get(ctx, r.db, &total, query, args...); err != nil {
		return nil, 0, err
	}

	query, args, err = listQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var logs []Log
	if err := pgxscan.Select(ctx, r.db, &logs, query, args...); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
