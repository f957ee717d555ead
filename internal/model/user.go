package model

import "time"

// User represents an application account as stored in the `users` table.
// Email doubles as the login name and is unique.  Inactive accounts are
// denied every workflow action.  json tags are omitted on purpose: these
// structs stay inside the repository layer and handlers define separate
// response types with appropriate tags.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	DisplayName  string     // users.display_name
	PasswordHash string     // users.password_hash
	Role         GlobalRole // users.role
	IsActive     bool       // users.is_active
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each token
// belongs to one user and carries expiry and revocation metadata.  The
// plain token value is never stored, only its SHA-256 hex digest.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
