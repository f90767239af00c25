package eventbus

import (
	"context"

	"concert-reservation/internal/domain/event"
)

// RecoverHandler consumes PaymentRecover events. Deliveries are at-least-once,
// so handlers must be idempotent.
type RecoverHandler func(ctx context.Context, evt event.PaymentRecover) error

type Bus interface {
	PublishRecover(ctx context.Context, evt event.PaymentRecover) error
	Subscribe(handler RecoverHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
