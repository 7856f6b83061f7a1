package notify

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/racemates/racemates-go/log"
)

// BroadcastServer fans out overlay events from a single source channel to
// any number of subscribers. A slow subscriber skips messages instead of
// stalling the others.
type BroadcastServer[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Close()
}

type broadcastServer[T any] struct {
	name           string
	source         <-chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
	sendTimeout    time.Duration
	numRcv         int
	numSnd         int
	numSkip        int
	l              *log.Logger
}

type BroadcastOption[T any] func(*broadcastServer[T])

// WithSendTimeout bounds how long a single subscriber may block a delivery
// before the message is skipped for it.
func WithSendTimeout[T any](d time.Duration) BroadcastOption[T] {
	return func(b *broadcastServer[T]) {
		if d > 0 {
			b.sendTimeout = d
		}
	}
}

func WithBroadcastLogger[T any](arg *log.Logger) BroadcastOption[T] {
	return func(b *broadcastServer[T]) {
		b.l = arg
	}
}

//nolint:whitespace // false positive
func NewBroadcastServer[T any](
	name string,
	source <-chan T,
	opts ...BroadcastOption[T],
) BroadcastServer[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &broadcastServer[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		sendTimeout:    50 * time.Millisecond,
		l:              log.Default().Named("broadcast"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.setupMetrics()
	go b.serve()
	return b
}

func (b *broadcastServer[T]) Subscribe() <-chan T {
	ch := make(chan T)
	b.addListener <- ch
	return ch
}

func (b *broadcastServer[T]) CancelSubscription(ch <-chan T) {
	b.removeListener <- ch
}

func (b *broadcastServer[T]) Close() {
	b.l.Info("closing broadcast server",
		log.String("name", b.name),
		log.Int("rcv", b.numRcv), log.Int("snd", b.numSnd), log.Int("skip", b.numSkip))
	b.cancel()
}

func (b *broadcastServer[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter(
		fmt.Sprintf("racemates.broadcast.%s", b.name))
	register := func(metricName, desc string, valueProvider func() int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(
				func(_ context.Context, o metric.Int64Observer) error {
					o.Observe(valueProvider(),
						metric.WithAttributes(attribute.String("name", b.name)))
					return nil
				})); err != nil {
			b.l.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	register("racemates.broadcast.rcv", "Number of received messages",
		func() int64 { return int64(b.numRcv) })
	register("racemates.broadcast.snd", "Number of sent messages",
		func() int64 { return int64(b.numSnd) })
	register("racemates.broadcast.skip", "Number of skipped messages",
		func() int64 { return int64(b.numSkip) })
	register("racemates.broadcast.listener", "Number of listeners",
		func() int64 { return int64(len(b.listeners)) })
}

func (b *broadcastServer[T]) serve() {
	defer func() {
		for _, listener := range b.listeners {
			if listener != nil {
				close(listener)
			}
		}
	}()
	for {
		select {
		case <-b.ctx.Done():
			return
		case ch := <-b.addListener:
			b.listeners = append(b.listeners, ch)
		case ch := <-b.removeListener:
			for i, listener := range b.listeners {
				if listener == ch {
					b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
					close(listener)
					break
				}
			}
		case msg := <-b.source:
			b.numRcv++
			for _, listener := range b.listeners {
				select {
				case listener <- msg:
					b.numSnd++
				case <-time.After(b.sendTimeout):
					b.numSkip++
				}
			}
		}
	}
}
