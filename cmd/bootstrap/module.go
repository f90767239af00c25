package bootstrap

import (
	"concert-reservation/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	JWTModule,
	components.PersistenceModule,
	components.BackendModule,
	components.UseCaseModule,
	components.HandlerModule,
	components.WorkerModule,
)
