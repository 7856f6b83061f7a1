package notify

import (
	"github.com/racemates/racemates-go/log"
	"github.com/racemates/racemates-go/pkg/model"
)

// Notifier turns per-tick results into change events. Equal consecutive
// results are suppressed so the consumer is not flooded with redundant
// updates. "Racing with zero matches" emits Visible with an empty match
// list, which is distinct from the Hidden event sent when not racing.
//
// Publish is called from the poll loop only; the notifier is not safe for
// concurrent producers.
type Notifier struct {
	out  chan<- model.OverlayEvent
	last *model.OverlayEvent
	l    *log.Logger
}

type NotifierOption func(*Notifier)

func WithNotifierLogger(arg *log.Logger) NotifierOption {
	return func(n *Notifier) {
		n.l = arg
	}
}

func NewNotifier(out chan<- model.OverlayEvent, opts ...NotifierOption) *Notifier {
	ret := &Notifier{
		out: out,
		l:   log.Default().Named("notify"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Publish forwards the tick result, emitting an event only on change.
func (n *Notifier) Publish(racing bool, matches []model.Match) {
	event := model.OverlayEvent{Kind: model.EventHidden}
	if racing {
		event = model.OverlayEvent{Kind: model.EventVisible, Matches: matches}
	}
	if n.last != nil && sameEvent(*n.last, event) {
		return
	}
	n.last = &event
	n.l.Debug("emitting overlay event",
		log.String("kind", event.Kind.String()),
		log.Int("matches", len(event.Matches)))
	n.out <- event
}

func sameEvent(a, b model.OverlayEvent) bool {
	if a.Kind != b.Kind || len(a.Matches) != len(b.Matches) {
		return false
	}
	for i := range a.Matches {
		if a.Matches[i] != b.Matches[i] {
			return false
		}
	}
	return true
}
