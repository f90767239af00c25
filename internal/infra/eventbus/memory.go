package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"concert-reservation/internal/domain/event"
)

// MemoryBus delivers events synchronously to in-process subscribers.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers []RecoverHandler
	logger   *slog.Logger
}

func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{logger: logger}
}

func (b *MemoryBus) Subscribe(handler RecoverHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *MemoryBus) PublishRecover(ctx context.Context, evt event.PaymentRecover) error {
	b.mu.RLock()
	handlers := append([]RecoverHandler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			b.logger.Error("recover handler failed",
				"reservation_id", evt.ReservationID,
				"payment_id", evt.PaymentID,
				"error", err.Error())
		}
	}
	return nil
}

func (b *MemoryBus) Start(context.Context) error { return nil }
func (b *MemoryBus) Stop(context.Context) error  { return nil }
