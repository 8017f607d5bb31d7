package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

// RevocationCache remembers tokens that were superseded or logged out so the
// auth gate can reject them without a database round trip.
// Key format: revoked:<sha256(token)>
type RevocationCache struct {
	client redis.Cmdable
}

func NewRevocationCache(client redis.Cmdable) *RevocationCache {
	return &RevocationCache{client: client}
}

// Revoke records token until ttl elapses; after that the token is expired anyway.
func (c *RevocationCache) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (c *RevocationCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// key hashes the token so raw credentials never land in Redis.
func (c *RevocationCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedPrefix + hex.EncodeToString(sum[:])
}
