package notify

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/racemates/racemates-go/log"
	"github.com/racemates/racemates-go/pkg/model"
)

// DefaultNatsSubject is where overlay events are published when no subject
// is configured.
const DefaultNatsSubject = "racemates.overlay"

// NatsSink publishes overlay events as JSON to a NATS subject so an
// out-of-process presentation layer can subscribe.
type NatsSink struct {
	conn    *nats.Conn
	subject string
	l       *log.Logger
}

type NatsOption func(*NatsSink)

func WithSubject(subject string) NatsOption {
	return func(s *NatsSink) {
		if subject != "" {
			s.subject = subject
		}
	}
}

func WithNatsLogger(arg *log.Logger) NatsOption {
	return func(s *NatsSink) {
		s.l = arg
	}
}

func NewNatsSink(conn *nats.Conn, opts ...NatsOption) *NatsSink {
	ret := &NatsSink{
		conn:    conn,
		subject: DefaultNatsSubject,
		l:       log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run consumes events until ctx is canceled or the channel closes. Publish
// errors are logged and do not stop the sink.
func (s *NatsSink) Run(ctx context.Context, events <-chan model.OverlayEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				s.l.Error("could not marshal overlay event", log.ErrorField(err))
				continue
			}
			if err := s.conn.Publish(s.subject, data); err != nil {
				s.l.Warn("could not publish overlay event",
					log.String("subject", s.subject),
					log.ErrorField(err))
			}
		}
	}
}
