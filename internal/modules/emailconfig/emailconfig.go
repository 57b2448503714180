package emailconfig

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no email configuration row exists.
var ErrNotFound = errors.New("email config not found")

// Config is the single-row SMTP configuration stored in the database.
// Environment variables, when set, take precedence over this row.
type Config struct {
	ID        int        `db:"id"`
	Host      string     `db:"host"`
	Port      int        `db:"port"`
	Secure    bool       `db:"secure"`
	Username  *string    `db:"username"`
	Password  *string    `db:"password"`
	From      *string    `db:"from_address"`
	UpdatedAt *time.Time `db:"updated_at"`
}
