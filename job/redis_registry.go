package job

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/google/uuid"
)

// leaseTTL bounds how long a crashed instance can hold a source lease.
// It must exceed the worst-case job duration (download + every quality
// at the encode timeout + uploads).
const leaseTTL = 2 * time.Hour

const leasePrefix = "vidserve:job:"

// releaseScript deletes the lease only if this instance still owns it,
// so a lease that expired and was re-acquired elsewhere is not stolen.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisRegistry coordinates the single-job invariant across process
// instances with a SetNX lease per source.
type RedisRegistry struct {
	client   *redis.Client
	instance string // lease owner value
}

// NewRedisRegistry connects to Redis at addr.
func NewRedisRegistry(addr, password string) *RedisRegistry {
	return &RedisRegistry{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		instance: uuid.NewString(),
	}
}

func (r *RedisRegistry) Acquire(ctx context.Context, sourceID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, leasePrefix+sourceID, r.instance, leaseTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis acquire %s: %w", sourceID, err)
	}
	return ok, nil
}

func (r *RedisRegistry) Release(ctx context.Context, sourceID string) error {
	if err := releaseScript.Run(ctx, r.client, []string{leasePrefix + sourceID}, r.instance).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", sourceID, err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
