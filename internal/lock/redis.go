package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only when this locker still owns it, so an
// expired-and-reacquired lease is never released by a previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with Redis SET NX leases, giving mutual
// exclusion across multiple API or worker instances.
type RedisLocker struct {
	client *redis.Client
	token  string
}

// NewRedisLocker connects to Redis at addr and verifies the connection.
func NewRedisLocker(ctx context.Context, addr string) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLocker{client: client, token: uuid.New().String()}, nil
}

// Acquire takes the lease via SET NX with a TTL.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, leaseKey(key), l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lease %q: %w", key, err)
	}
	return ok, nil
}

// Release drops the lease if this locker still holds it.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.client, []string{leaseKey(key)}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lease %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func leaseKey(key string) string {
	return "moneta:lease:" + key
}
