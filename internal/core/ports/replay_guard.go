package ports

import "context"

// ReplayGuard records refresh tokens that were rotated out so a replayed
// token can be rejected without a user lookup. Backed by Redis.
type ReplayGuard interface {
	// IsRotated reports whether the token has already been used and rotated.
	IsRotated(ctx context.Context, token string) (bool, error)

	// MarkRotated records that the token has been rotated out. The entry
	// needs to live only as long as the token could still verify.
	MarkRotated(ctx context.Context, token string) error
}
