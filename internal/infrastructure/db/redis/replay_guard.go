package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard records rotated-out refresh tokens so a replayed token is
// rejected without a user lookup. Entries expire with the token lifetime;
// after that the signature check alone rejects the token.
// Key format: rotated:<sha256 of token>
type ReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayGuard creates a ReplayGuard wrapping the given Redis client.
// ttl should match the refresh token lifetime.
func NewReplayGuard(client *redis.Client, ttl time.Duration) *ReplayGuard {
	return &ReplayGuard{client: client, ttl: ttl}
}

// IsRotated reports whether the token was already rotated out.
func (g *ReplayGuard) IsRotated(ctx context.Context, token string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("replay check: %w", err)
	}
	return n > 0, nil
}

// MarkRotated records that the token has been rotated out.
func (g *ReplayGuard) MarkRotated(ctx context.Context, token string) error {
	return g.client.Set(ctx, g.key(token), "1", g.ttl).Err()
}

// key hashes the token so raw credentials never land in Redis.
func (g *ReplayGuard) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "rotated:" + hex.EncodeToString(sum[:])
}
