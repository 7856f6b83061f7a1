package notify

import (
	"testing"
	"time"

	"github.com/racemates/racemates-go/pkg/model"
)

func TestBroadcastServer_fanOut(t *testing.T) {
	source := make(chan model.OverlayEvent)
	bcst := NewBroadcastServer("test", source)
	defer bcst.Close()

	first := bcst.Subscribe()
	second := bcst.Subscribe()

	event := model.OverlayEvent{Kind: model.EventVisible}
	go func() { source <- event }()

	for _, sub := range []<-chan model.OverlayEvent{first, second} {
		select {
		case got := <-sub:
			if got.Kind != event.Kind {
				t.Errorf("got %v, want %v", got.Kind, event.Kind)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for broadcast")
		}
	}
}

func TestBroadcastServer_cancelSubscription(t *testing.T) {
	source := make(chan model.OverlayEvent)
	bcst := NewBroadcastServer("test", source)
	defer bcst.Close()

	sub := bcst.Subscribe()
	bcst.CancelSubscription(sub)

	select {
	case _, open := <-sub:
		if open {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}
