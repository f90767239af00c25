package components

import (
	"concert-reservation/internal/handler"
	"concert-reservation/internal/handler/api"
	"concert-reservation/internal/handler/middleware"
	"concert-reservation/internal/pkg/jwt"
	"concert-reservation/internal/usecase/scheduler"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewQueueHandler,
		api.NewReservationHandler,
		api.NewPointHandler,
		func(s *scheduler.Scheduler) api.JobRunner { return s },
		api.NewAdminHandler,
		func(s *jwt.Service) middleware.TokenValidator { return s },
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	queue *api.QueueHandler,
	reservation *api.ReservationHandler,
	point *api.PointHandler,
	admin *api.AdminHandler,
) handler.Handlers {
	return handler.Handlers{
		Queue:       queue,
		Reservation: reservation,
		Point:       point,
		Admin:       admin,
	}
}
