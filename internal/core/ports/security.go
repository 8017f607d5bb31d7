package ports

import (
	"context"
	"time"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenClaims is the identity embedded in a bearer token.
type TokenClaims struct {
	AccountID string
	Email     string
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(accountID, email string) (string, error)
	// Validate checks signature and expiry only; it knows nothing about
	// store-side revocation.
	Validate(token string) (*TokenClaims, error)
}

// TokenRevocations remembers tokens that were superseded or logged out.
// It is an optimisation: the account store stays the source of truth.
type TokenRevocations interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
