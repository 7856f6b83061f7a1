package telemetry

import "context"

// RawDriver is one per-slot entry of the telemetry driver array. Empty car
// slots carry a non-positive UserID or an empty UserName.
type RawDriver struct {
	UserID            int
	UserName          string
	CarNumber         string
	CarClassShortName string
}

// Sample is the result of one telemetry probe.
type Sample struct {
	// Connected reports whether the telemetry source was reachable. When
	// false the remaining fields carry no meaning.
	Connected    bool
	SessionState int
	IsOnTrack    bool
	Drivers      []RawDriver
}

// Source is the boundary to the telemetry feed. The poller calls Probe once
// per tick with a bounded context so a stalled source cannot wedge the loop.
//
// Implementations are called from a single goroutine (the poll loop) and do
// not need to be safe for concurrent use. A probe error is treated the same
// as Connected=false; the loop keeps running.
type Source interface {
	Probe(ctx context.Context) (Sample, error)
}
