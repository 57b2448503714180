package user

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Token TTLs. Verification links live for a day; reset links are tighter
// because a successful use also changes the password.
const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
)

// TokenPair is the result of issuing a one-shot token. Token is the only
// plaintext copy in existence and is sent to the user out-of-band; only
// Hash and ExpiresAt are persisted.
type TokenPair struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
}

// newToken produces a 256-bit random token encoded as hex, plus its SHA-256
// hash. Tokens are already high-entropy, so a fast digest is the right
// verifier here; bcrypt is reserved for passwords.
func newToken(ttl time.Duration) (TokenPair, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return TokenPair{}, err
	}
	token := hex.EncodeToString(b)
	return TokenPair{
		Token:     token,
		Hash:      HashToken(token),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// NewVerificationToken issues a fresh email-verification token (24h TTL).
func NewVerificationToken() (TokenPair, error) {
	return newToken(VerificationTokenTTL)
}

// NewResetToken issues a fresh password-reset token (1h TTL).
func NewResetToken() (TokenPair, error) {
	return newToken(ResetTokenTTL)
}

// HashToken returns the hex-encoded SHA-256 digest of a plaintext token.
// Pure function; the plaintext is never stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// hashPassword uses bcrypt to generate a hash from a plaintext password.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// checkPasswordHash compares a plaintext password with a bcrypt hash.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
