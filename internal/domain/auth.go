package domain

import "time"

// SessionToken is a registry entry for one issued bearer token.
// Only the SHA-256 digest of the raw token is kept.
type SessionToken struct {
	UserID    string
	TokenID   string
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}
