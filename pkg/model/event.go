package model

import "encoding/json"

// EventKind describes what the presentation layer should do with the overlay.
type EventKind int

const (
	// EventHidden is sent when the local participant is not racing.
	EventHidden EventKind = iota
	// EventVisible is sent while racing; Matches may be empty, which is the
	// distinct "racing, no pro drivers" case.
	EventVisible
)

var eventKindNames = map[EventKind]string{
	EventHidden:  "hidden",
	EventVisible: "visible",
}

var eventKindFromName = map[string]EventKind{
	"hidden":  EventHidden,
	"visible": EventVisible,
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

func (k EventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *EventKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, ok := eventKindFromName[s]; ok {
		*k = v
	}
	return nil
}

// OverlayEvent is one change notification for the presentation boundary.
type OverlayEvent struct {
	Kind    EventKind `json:"kind"`
	Matches []Match   `json:"matches,omitempty"`
}
