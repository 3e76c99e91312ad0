package leaderlock

import (
	"context"
	"fmt"
	"time"

	"github.com/area-engine/core/logging"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only if it still holds this instance's token, so one
// replica can never release a lock another replica has since acquired after expiry.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end`

// RedisLock is an alternate leader-lock backend to PostgresLock, for deployments whose Store
// isn't Postgres. It adapts the redis.Client connection pattern from
// evalgo-org-eve/queue/redis/queue.go (ParseURL, NewClient, Ping-on-construct) to a
// SET NX PX / token-checked DEL mutual-exclusion lock instead of that file's job-queue
// semantics (BLPop/ZAdd), which do not apply to leader election.
type RedisLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
	log    *logging.ContextLogger
}

// NewRedisLock connects to redisURL and returns a lock over the given name. ttl bounds how
// long a crashed leader's lock survives before another replica may claim it; the scheduler
// is expected to renew by calling TryAcquire again on its own tick cadence if it wants to
// extend that window — it only actually needs to hold the lock, not renew it, when ttl is
// longer than the process lifetime the operator expects between restarts.
func NewRedisLock(ctx context.Context, redisURL, name string, ttl time.Duration) (*RedisLock, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("leaderlock: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("leaderlock: connect to redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLock{
		client: client,
		key:    "leaderlock:" + name,
		token:  uuid.NewString(),
		ttl:    ttl,
		log:    logging.Named("leaderlock.redis"),
	}, nil
}

func (l *RedisLock) Name() string { return l.key }

func (l *RedisLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("leaderlock: SETNX: %w", err)
	}
	if ok {
		l.log.WithField("lock", l.key).Info("leader lock acquired")
		return true, nil
	}
	// The key exists: if it still holds this instance's token, extend the ttl and stay leader.
	const renewScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
  return 0
end`
	renewed, err := l.client.Eval(ctx, renewScript, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("leaderlock: renew: %w", err)
	}
	return renewed == 1, nil
}

func (l *RedisLock) Release(ctx context.Context) error {
	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("leaderlock: release: %w", err)
	}
	l.log.WithField("lock", l.key).Info("leader lock released")
	return nil
}

var _ Lock = (*RedisLock)(nil)
