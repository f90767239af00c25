package components

import (
	"context"
	"log/slog"

	"concert-reservation/internal/infra/eventbus"
	"concert-reservation/internal/infra/ledger"
	"concert-reservation/internal/infra/lock"
	"concert-reservation/internal/infra/queuestore"
	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"
	"concert-reservation/internal/usecase/compensation"
	"concert-reservation/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// BackendModule picks the implementation of each swappable port from configuration.
var BackendModule = fx.Module("backend",
	fx.Provide(
		NewTokenStore,
		NewLocker,
		NewPointLedger,
		NewEventBus,
		func(bus eventbus.Bus) compensation.RecoverPublisher { return bus },
	),
)

var errUnknownBackend = errs.New("unknown backend")

func NewTokenStore(cfg config.Config, rdb redis.UniversalClient, logger *slog.Logger) (commands.TokenStore, error) {
	switch cfg.Queue.Backend {
	case "redis":
		return queuestore.NewRedisStore(rdb,
			queuestore.WithKeyPrefix(cfg.Redis.KeyPrefix),
			queuestore.WithLogger(logger),
		), nil
	case "memory":
		return queuestore.NewMemoryStore(logger), nil
	default:
		return nil, errs.Wrapf(errUnknownBackend, "QUEUE_BACKEND=%q", cfg.Queue.Backend)
	}
}

func NewLocker(cfg config.Config, rdb redis.UniversalClient, logger *slog.Logger) (commands.Locker, error) {
	switch cfg.Reservation.LockBackend {
	case "redis":
		return lock.NewRedisLocker(rdb,
			lock.WithKeyPrefix(cfg.Redis.KeyPrefix),
			lock.WithTTL(cfg.Reservation.LockTTL),
			lock.WithRetryInterval(cfg.Reservation.LockRetryInterval),
			lock.WithLogger(logger),
		), nil
	case "memory":
		return lock.NewMemoryLocker(), nil
	default:
		return nil, errs.Wrapf(errUnknownBackend, "RESERVATION_LOCK_BACKEND=%q", cfg.Reservation.LockBackend)
	}
}

func NewPointLedger(lc fx.Lifecycle, cfg config.Config, uow shared.UnitOfWork, logger *slog.Logger) (commands.PointLedger, error) {
	switch cfg.Points.Ledger {
	case "postgres":
		return ledger.NewPostgresLedger(uow, logger), nil
	case "tigerbeetle":
		client, err := ledger.NewTigerBeetleClient(cfg.Points)
		if err != nil {
			return nil, err
		}
		l := ledger.NewTigerBeetleLedger(client, cfg.Points, logger)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				l.Close()
				return nil
			},
		})
		return l, nil
	default:
		return nil, errs.Wrapf(errUnknownBackend, "POINTS_LEDGER=%q", cfg.Points.Ledger)
	}
}

func NewEventBus(cfg config.Config, rdb redis.UniversalClient, logger *slog.Logger) (eventbus.Bus, error) {
	switch cfg.Events.Transport {
	case "redis":
		return eventbus.NewRedisStreamBus(rdb, cfg.Events.RecoverStream,
			eventbus.WithGroup(cfg.Events.ConsumerGroup, cfg.Events.ConsumerName),
			eventbus.WithBlock(cfg.Events.BlockTimeout),
			eventbus.WithBatchSize(cfg.Events.BatchSize),
			eventbus.WithStreamLogger(logger),
		), nil
	case "memory":
		return eventbus.NewMemoryBus(logger), nil
	default:
		return nil, errs.Wrapf(errUnknownBackend, "EVENTS_TRANSPORT=%q", cfg.Events.Transport)
	}
}
