package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRepo tracks revoked session tokens in Redis. Logout places the
// token's hash on the denylist with a TTL matching the token's remaining
// lifetime, which makes invalidation immediate while keeping the denylist
// self-pruning. With no Redis client configured, revocation degrades to
// cookie expiry only.
type SessionRepo struct{ rdb *redis.Client }

func NewSessionRepo(rdb *redis.Client) *SessionRepo { return &SessionRepo{rdb: rdb} }

const denylistPrefix = "session:revoked:"

// Revoke denylists a token hash until the token would have expired anyway.
func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if r.rdb == nil || ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, denylistPrefix+tokenHash, 1, ttl).Err()
}

// IsRevoked reports whether a token hash sits on the denylist. Redis
// errors count as not revoked so an outage does not lock everyone out.
func (r *SessionRepo) IsRevoked(ctx context.Context, tokenHash string) bool {
	if r.rdb == nil {
		return false
	}
	n, err := r.rdb.Exists(ctx, denylistPrefix+tokenHash).Result()
	return err == nil && n > 0
}
