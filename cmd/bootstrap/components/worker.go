package components

import (
	"context"
	"log/slog"

	"concert-reservation/internal/infra/eventbus"
	"concert-reservation/internal/usecase/compensation"
	"concert-reservation/internal/usecase/scheduler"

	"go.uber.org/fx"
)

// WorkerModule runs the background sweeps and the recovery consumer alongside the HTTP server.
var WorkerModule = fx.Module("worker",
	fx.Invoke(
		startRecoveryConsumer,
		startScheduler,
	),
)

func startRecoveryConsumer(lc fx.Lifecycle, bus eventbus.Bus, recovery *compensation.Recovery, logger *slog.Logger) {
	bus.Subscribe(recovery.HandlePaymentRecover)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("recovery consumer starting")
			return bus.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("recovery consumer stopping")
			return bus.Stop(ctx)
		},
	})
}

func startScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}
