package bootstrap

import (
	"context"
	"log/slog"

	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedis,
	),
)

// NewRedis pings only when some backend is configured to use Redis.
func NewRedis(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (redis.UniversalClient, error) {
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Redis.Addr},
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if usesRedis(cfg) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.PingTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, errs.Wrapf(err, "failed to ping redis at %s", cfg.Redis.Addr)
		}
		logger.Info("redis connected", "addr", cfg.Redis.Addr)
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})
	return rdb, nil
}

func usesRedis(cfg config.Config) bool {
	return cfg.Queue.Backend == "redis" ||
		cfg.Reservation.LockBackend == "redis" ||
		cfg.Events.Transport == "redis"
}
