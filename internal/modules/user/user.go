package user

import (
	"time"
)

// Role determines authorization, not identity. The set is fixed and ordered.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperadmin Role = "SUPERADMIN"
)

// ValidRole reports whether r is a member of the fixed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// Status gates authentication. SUSPENDED blocks login and makes every
// outstanding session token ineffective on its next use.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// User is the authentication principal.
//
// The verification-token pair and the reset-token pair are independent
// one-shot credentials: each is cleared on successful use and overwritten,
// never appended, when a newer request of the same kind is issued.
type User struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         Role   `db:"role"`
	Status       Status `db:"status"`

	EmailVerifiedAt               *time.Time `db:"email_verified_at"`
	EmailVerificationToken        *string    `db:"email_verification_token"`
	EmailVerificationTokenExpires *time.Time `db:"email_verification_token_expires"`

	PasswordResetToken        *string    `db:"password_reset_token"`
	PasswordResetTokenExpires *time.Time `db:"password_reset_token_expires"`

	LastLoginAt  *time.Time `db:"last_login_at"`
	LastLogoutAt *time.Time `db:"last_logout_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// Verified reports whether the user's email has been verified.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// Suspended reports whether the user is administratively suspended.
func (u *User) Suspended() bool {
	return u.Status == StatusSuspended
}
