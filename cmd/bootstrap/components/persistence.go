package components

import (
	"log/slog"

	"concert-reservation/internal/infra/db"
	"concert-reservation/internal/infra/readstore"
	"concert-reservation/internal/infra/repository"
	"concert-reservation/internal/infra/uow"
	"concert-reservation/internal/usecase/commands"
	"concert-reservation/internal/usecase/queries"
	"concert-reservation/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationViewRepo)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Accounts read outside a transaction by the admission queue
		fx.Annotate(
			NewAccountFinder,
			fx.As(new(commands.AccountFinder)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewAccountFinder(dbtx db.DBTX, logger *slog.Logger) *repository.AccountRepository {
	return repository.NewAccountRepository(dbtx, logger)
}
