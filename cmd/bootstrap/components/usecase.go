package components

import (
	"log/slog"

	"concert-reservation/internal/pkg/clock"
	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/usecase/commands"
	"concert-reservation/internal/usecase/compensation"
	"concert-reservation/internal/usecase/queries"
	"concert-reservation/internal/usecase/scheduler"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCompensationModule,
	usecaseCommandsModule,
	usecaseSchedulerModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) config.QueueConfig { return cfg.Queue },
	func(cfg config.Config) config.ReservationConfig { return cfg.Reservation },
)

var usecaseCompensationModule = fx.Module("usecase/compensation",
	fx.Provide(
		fx.Annotate(
			compensation.NewCoordinator,
			fx.As(new(commands.ReservationCommittedHandler)),
		),
		compensation.NewRecovery,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAdmissionQueue,
		commands.NewReservationCommands,
		commands.NewBookingCommands,
		commands.NewPointCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
	),
)

var usecaseSchedulerModule = fx.Module("usecase/scheduler",
	fx.Provide(
		NewScheduler,
	),
)

func NewScheduler(
	cfg config.Config,
	guard commands.Locker,
	queue commands.AdmissionQueue,
	reservations commands.ReservationCommands,
	logger *slog.Logger,
) *scheduler.Scheduler {
	return scheduler.New(guard, logger,
		scheduler.QueueSweepJob(queue, cfg.Queue.SweepInterval),
		scheduler.ReservationExpiryJob(reservations, cfg.Reservation.SweepInterval),
	)
}
