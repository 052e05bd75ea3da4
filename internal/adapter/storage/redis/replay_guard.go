package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReplayGuard implements ports.ReplayGuard using Redis SET NX. It is the
// fast path of confirmation replay protection; the durable layer lives in
// the consumed_confirmations table.
type ReplayGuard struct {
	client *goredis.Client
	prefix string
}

// NewReplayGuard creates a new Redis-backed replay guard.
func NewReplayGuard(client *goredis.Client) *ReplayGuard {
	return &ReplayGuard{
		client: client,
		prefix: "confirmation:",
	}
}

// CheckAndSet atomically checks if a confirmation key exists, sets it if not.
// Returns true if the key is new, false if the confirmation was already seen.
func (g *ReplayGuard) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	redisKey := g.prefix + key
	result, err := g.client.SetArgs(ctx, redisKey, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists, confirmation was already consumed
			return false, nil
		}
		return false, fmt.Errorf("redis replay check: %w", err)
	}
	return result == "OK", nil
}

// Release deletes a reserved confirmation key. Called when the ledger credit
// behind a reservation failed, so the same confirmation can be retried.
func (g *ReplayGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis replay release: %w", err)
	}
	return nil
}
