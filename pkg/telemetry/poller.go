package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/racemates/racemates-go/log"
	"github.com/racemates/racemates-go/pkg/match"
	"github.com/racemates/racemates-go/pkg/model"
)

// ListProvider supplies the current pro driver list. Get must not block.
type ListProvider interface {
	Get() *model.ProList
}

// Sink receives the per-tick result. Implemented by notify.Notifier.
type Sink interface {
	Publish(racing bool, matches []model.Match)
}

// DefaultPollInterval balances overlay responsiveness against load on the
// telemetry source. State flips only on a full tick, which keeps boundary
// frame flicker away; one second stays below perceptible overlay lag.
const DefaultPollInterval = time.Second

// DefaultProbeTimeout bounds a single probe so a stalled source cannot wedge
// the loop.
const DefaultProbeTimeout = 500 * time.Millisecond

// Poller drives the tick loop: update the state machine, extract the roster
// while racing, compute matches against the current pro list and forward the
// result to the sink.
type Poller struct {
	source       Source
	lists        ListProvider
	sink         Sink
	sm           *StateMachine
	interval     time.Duration
	probeTimeout time.Duration
	l            *log.Logger
}

type PollerOption func(*Poller)

func WithSource(src Source) PollerOption {
	return func(p *Poller) {
		p.source = src
	}
}

func WithListProvider(lp ListProvider) PollerOption {
	return func(p *Poller) {
		p.lists = lp
	}
}

func WithSink(sink Sink) PollerOption {
	return func(p *Poller) {
		p.sink = sink
	}
}

func WithStateMachine(sm *StateMachine) PollerOption {
	return func(p *Poller) {
		p.sm = sm
	}
}

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithProbeTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.probeTimeout = d
		}
	}
}

func WithPollerLogger(arg *log.Logger) PollerOption {
	return func(p *Poller) {
		p.l = arg
	}
}

var ErrPollerNotConfigured = errors.New("poller needs source, list provider and sink")

func NewPoller(opts ...PollerOption) (*Poller, error) {
	ret := &Poller{
		sm:           NewStateMachine(),
		interval:     DefaultPollInterval,
		probeTimeout: DefaultProbeTimeout,
		l:            log.Default().Named("poller"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.source == nil || ret.lists == nil || ret.sink == nil {
		return nil, ErrPollerNotConfigured
	}
	return ret, nil
}

// Run blocks and executes the tick loop until ctx is canceled. Ticks are
// strictly sequential; results reach the sink in tick order.
func (p *Poller) Run(ctx context.Context) {
	p.l.Info("poll loop started", log.Duration("interval", p.interval))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.l.Info("poll loop stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	sample, err := p.source.Probe(probeCtx)
	if err != nil {
		// source vanished mid-session or timed out; treated as disconnect
		p.l.Debug("probe failed", log.ErrorField(err))
		sample = Sample{}
	}
	state, changed := p.sm.Update(sample)
	if changed {
		p.l.Info("session state changed", log.String("state", state.String()))
	}
	if state != Racing {
		p.sink.Publish(false, nil)
		return
	}
	roster := ExtractRoster(sample.Drivers)
	p.sink.Publish(true, match.Compute(roster, p.lists.Get()))
}
