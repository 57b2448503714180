package contextx

// Key is a private type to avoid collisions in request context keys.
type Key string

// UserIDKey holds the authenticated user's ID (string).
const UserIDKey Key = "userID"

// UserEmailKey holds the authenticated user's email (string).
const UserEmailKey Key = "userEmail"

// UserRoleKey holds the authenticated user's role as re-read from the
// credential store, never the role claimed by the session token.
const UserRoleKey Key = "userRole"
