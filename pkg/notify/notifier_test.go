package notify

import (
	"reflect"
	"testing"

	"github.com/racemates/racemates-go/pkg/model"
)

func collectEvents(publish func(n *Notifier)) []model.OverlayEvent {
	out := make(chan model.OverlayEvent, 16)
	n := NewNotifier(out)
	publish(n)
	close(out)
	events := make([]model.OverlayEvent, 0, len(out))
	for event := range out {
		events = append(events, event)
	}
	return events
}

func sampleMatches() []model.Match {
	return []model.Match{
		{
			Participant: model.Participant{ID: 2, Name: "B", CarNumber: "5", CarClass: "GT"},
			Description: "F1",
		},
	}
}

func TestNotifier_suppressesUnchangedResults(t *testing.T) {
	events := collectEvents(func(n *Notifier) {
		n.Publish(true, sampleMatches())
		n.Publish(true, sampleMatches())
		n.Publish(true, sampleMatches())
	})
	want := []model.OverlayEvent{
		{Kind: model.EventVisible, Matches: sampleMatches()},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestNotifier_racingWithoutMatchesIsVisible(t *testing.T) {
	events := collectEvents(func(n *Notifier) {
		n.Publish(false, nil)
		n.Publish(true, []model.Match{})
	})
	want := []model.OverlayEvent{
		{Kind: model.EventHidden},
		{Kind: model.EventVisible, Matches: []model.Match{}},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestNotifier_leavingRaceEmitsSingleHidden(t *testing.T) {
	events := collectEvents(func(n *Notifier) {
		n.Publish(true, sampleMatches())
		n.Publish(false, nil)
		n.Publish(false, nil)
		n.Publish(false, nil)
	})
	want := []model.OverlayEvent{
		{Kind: model.EventVisible, Matches: sampleMatches()},
		{Kind: model.EventHidden},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestNotifier_changedDescriptionEmits(t *testing.T) {
	changed := sampleMatches()
	changed[0].Description = "F1 champion"
	events := collectEvents(func(n *Notifier) {
		n.Publish(true, sampleMatches())
		n.Publish(true, changed)
	})
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}
