package telemetry

import "encoding/json"

// SessionState is the discrete state derived from the polled telemetry flags.
type SessionState int

const (
	// Disconnected means the telemetry source is unreachable.
	Disconnected SessionState = iota
	// Idle means connected but not in an active race stint.
	Idle
	// Racing means connected, the session is a race and the local
	// participant is on track.
	Racing
)

var sessionStateNames = map[SessionState]string{
	Disconnected: "disconnected",
	Idle:         "idle",
	Racing:       "racing",
}

var sessionStateFromName = map[string]SessionState{
	"disconnected": Disconnected,
	"idle":         Idle,
	"racing":       Racing,
}

func (s SessionState) String() string {
	if n, ok := sessionStateNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s SessionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SessionState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if v, ok := sessionStateFromName[name]; ok {
		*s = v
	}
	return nil
}

// DefaultRaceSessionState is the SessionState value the iRacing SDK reports
// during the race phase.
const DefaultRaceSessionState = 4

// StateMachine derives the session state from raw polled flags. No debounce
// beyond one-tick granularity is applied; the polling interval itself is the
// debounce.
type StateMachine struct {
	current          SessionState
	raceSessionState int
}

type StateMachineOption func(*StateMachine)

// WithRaceSessionState overrides the session-type value that denotes a race.
func WithRaceSessionState(v int) StateMachineOption {
	return func(m *StateMachine) {
		m.raceSessionState = v
	}
}

func NewStateMachine(opts ...StateMachineOption) *StateMachine {
	ret := &StateMachine{
		current:          Disconnected,
		raceSessionState: DefaultRaceSessionState,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Update feeds one sample into the machine and returns the new state and
// whether this update changed it. Racing requires all three conditions;
// any reachable combination that is not a race stint yields Idle.
func (m *StateMachine) Update(s Sample) (state SessionState, changed bool) {
	next := Disconnected
	if s.Connected {
		if s.SessionState == m.raceSessionState && s.IsOnTrack {
			next = Racing
		} else {
			next = Idle
		}
	}
	changed = next != m.current
	m.current = next
	return next, changed
}

func (m *StateMachine) Current() SessionState {
	return m.current
}
