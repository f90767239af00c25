package lock

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

var ErrLockLost = errs.New("lock expired before release")

// Deletes the key only while it still holds our owner token.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker implements the single-key SET NX PX lock. The TTL bounds how long a
// crashed holder can block others.
type RedisLocker struct {
	rdb           redis.UniversalClient
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
	logger        *slog.Logger
}

type RedisOption func(*RedisLocker)

func WithKeyPrefix(prefix string) RedisOption {
	return func(l *RedisLocker) { l.prefix = strings.Trim(prefix, ":") }
}

func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) { l.ttl = ttl }
}

func WithRetryInterval(d time.Duration) RedisOption {
	return func(l *RedisLocker) { l.retryInterval = d }
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(l *RedisLocker) { l.logger = logger }
}

func NewRedisLocker(rdb redis.UniversalClient, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		rdb:           rdb,
		prefix:        "concert",
		ttl:           10 * time.Second,
		retryInterval: 50 * time.Millisecond,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, wait time.Duration) (commands.LockHandle, error) {
	redisKey := l.keyFor(key)
	owner := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	limiter := rate.NewLimiter(rate.Every(l.retryInterval), 1)

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, owner, l.ttl).Result()
		if err != nil {
			return nil, errs.Mark(errs.Wrapf(err, "acquire lock %q", key), errs.ErrTransientFailure)
		}
		if ok {
			return &redisHandle{locker: l, key: redisKey, owner: owner}, nil
		}

		if err := limiter.Wait(waitCtx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, lockTimeout(key, wait)
		}
	}
}

type redisHandle struct {
	locker *RedisLocker
	key    string
	owner  string
}

func (h *redisHandle) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, h.locker.rdb, []string{h.key}, h.owner).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errs.Wrapf(err, "release lock %q", h.key)
	}
	if n == 0 {
		h.locker.logger.Warn("lock was not held at release", "key", h.key)
		return ErrLockLost
	}
	return nil
}

// keyFor lays keys out as <prefix>:lock:<key>.
func (l *RedisLocker) keyFor(key string) string {
	return l.prefix + ":lock:" + key
}

func lockTimeout(key string, wait time.Duration) error {
	return errs.Mark(errs.Newf("lock %q not acquired within %s", key, wait), errs.ErrLockTimeout)
}
