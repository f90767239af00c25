package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"concert-reservation/internal/domain/event"
	"concert-reservation/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	fieldType    = "type"
	fieldPayload = "payload"
	typeRecover  = "PaymentRecover"
)

// RedisStreamBus carries PaymentRecover events on a Redis stream read through a
// consumer group. A message is acked only after every handler succeeded; failed
// messages stay pending and are reclaimed once idle for claimIdle.
type RedisStreamBus struct {
	rdb       redis.UniversalClient
	stream    string
	group     string
	consumer  string
	block     time.Duration
	batch     int64
	claimIdle time.Duration
	logger    *slog.Logger

	mu       sync.RWMutex
	handlers []RecoverHandler

	cancel context.CancelFunc
	done   chan struct{}
}

type StreamOption func(*RedisStreamBus)

func WithGroup(group, consumer string) StreamOption {
	return func(b *RedisStreamBus) {
		b.group = group
		if consumer != "" {
			b.consumer = consumer
		}
	}
}

func WithBlock(d time.Duration) StreamOption {
	return func(b *RedisStreamBus) { b.block = d }
}

func WithBatchSize(n int64) StreamOption {
	return func(b *RedisStreamBus) { b.batch = n }
}

func WithClaimIdle(d time.Duration) StreamOption {
	return func(b *RedisStreamBus) { b.claimIdle = d }
}

func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(b *RedisStreamBus) { b.logger = logger }
}

func NewRedisStreamBus(rdb redis.UniversalClient, stream string, opts ...StreamOption) *RedisStreamBus {
	b := &RedisStreamBus{
		rdb:       rdb,
		stream:    strings.TrimSpace(stream),
		group:     "reservation-recovery",
		consumer:  defaultConsumerName(),
		block:     2 * time.Second,
		batch:     16,
		claimIdle: 30 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisStreamBus) PublishRecover(ctx context.Context, evt event.PaymentRecover) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return errs.Wrap(err, "encode PaymentRecover")
	}
	if err := b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{
			fieldType:    typeRecover,
			fieldPayload: string(payload),
		},
	}).Err(); err != nil {
		return errs.Mark(errs.Wrap(err, "publish PaymentRecover"), errs.ErrTransientFailure)
	}
	return nil
}

func (b *RedisStreamBus) Subscribe(handler RecoverHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Start creates the consumer group when missing and begins consuming in the background.
func (b *RedisStreamBus) Start(ctx context.Context) error {
	err := b.rdb.XGroupCreateMkStream(ctx, b.stream, b.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return errs.Wrapf(err, "create consumer group %s", b.group)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.run(runCtx)

	b.logger.Info("recover stream consumer started",
		"stream", b.stream, "group", b.group, "consumer", b.consumer)
	return nil
}

func (b *RedisStreamBus) Stop(ctx context.Context) error {
	if b.cancel == nil {
		return nil
	}
	b.cancel()
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *RedisStreamBus) run(ctx context.Context) {
	defer close(b.done)

	for ctx.Err() == nil {
		b.reclaim(ctx)

		streams, err := b.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: b.consumer,
			Streams:  []string{b.stream, ">"},
			Count:    b.batch,
			Block:    b.block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("read recover stream failed", "error", err.Error())
			sleep(ctx, b.block)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				b.process(ctx, msg)
			}
		}
	}
}

// reclaim takes over messages another consumer read but never acked.
func (b *RedisStreamBus) reclaim(ctx context.Context) {
	msgs, _, err := b.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   b.stream,
		Group:    b.group,
		Consumer: b.consumer,
		MinIdle:  b.claimIdle,
		Start:    "0-0",
		Count:    b.batch,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			b.logger.Warn("reclaim pending recover events failed", "error", err.Error())
		}
		return
	}
	for _, msg := range msgs {
		b.process(ctx, msg)
	}
}

func (b *RedisStreamBus) process(ctx context.Context, msg redis.XMessage) {
	evt, err := decodeRecover(msg)
	if err != nil {
		// undecodable messages would be reclaimed forever
		b.logger.Error("dropping malformed recover event", "message_id", msg.ID, "error", err.Error())
		b.ack(ctx, msg.ID)
		return
	}

	b.mu.RLock()
	handlers := append([]RecoverHandler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			b.logger.Warn("recover handler failed, leaving message pending",
				"message_id", msg.ID,
				"reservation_id", evt.ReservationID,
				"error", err.Error())
			return
		}
	}
	b.ack(ctx, msg.ID)
}

func (b *RedisStreamBus) ack(ctx context.Context, id string) {
	if err := b.rdb.XAck(ctx, b.stream, b.group, id).Err(); err != nil {
		b.logger.Warn("ack recover event failed", "message_id", id, "error", err.Error())
	}
}

func decodeRecover(msg redis.XMessage) (event.PaymentRecover, error) {
	var evt event.PaymentRecover
	if t, _ := msg.Values[fieldType].(string); t != typeRecover {
		return evt, errs.Newf("unexpected event type %q", t)
	}
	raw, ok := msg.Values[fieldPayload].(string)
	if !ok {
		return evt, errs.New("missing payload")
	}
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		return evt, errs.Wrap(err, "decode payload")
	}
	return evt, nil
}

func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "consumer-" + uuid.NewString()[:8]
	}
	return host
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
