package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/racemates/racemates-go/pkg/telemetry"
)

const sampleScript = `
ticks:
  - connected: false
  - connected: true
    sessionState: 4
    onTrack: true
    repeat: 2
    drivers:
      - userId: 1
        userName: Alice
        carNumber: "12"
        carClass: GT3
  - connected: true
    sessionState: 2
`

func TestFromScript(t *testing.T) {
	src, err := FromScript([]byte(sampleScript))
	if err != nil {
		t.Fatalf("FromScript() error = %v", err)
	}
	ctx := context.Background()

	sample, _ := src.Probe(ctx)
	assert.False(t, sample.Connected)

	for i := 0; i < 2; i++ {
		sample, _ = src.Probe(ctx)
		assert.True(t, sample.Connected)
		assert.Equal(t, 4, sample.SessionState)
		assert.True(t, sample.IsOnTrack)
		assert.Equal(t, []telemetry.RawDriver{
			{UserID: 1, UserName: "Alice", CarNumber: "12", CarClassShortName: "GT3"},
		}, sample.Drivers)
	}

	// script exhausted: the final tick repeats
	for i := 0; i < 3; i++ {
		sample, _ = src.Probe(ctx)
		assert.True(t, sample.Connected)
		assert.Equal(t, 2, sample.SessionState)
	}
}

func TestFromScript_empty(t *testing.T) {
	if _, err := FromScript([]byte("ticks: []")); !errors.Is(err, ErrEmptyScript) {
		t.Errorf("FromScript() error = %v, want %v", err, ErrEmptyScript)
	}
}

func TestFromScript_invalidYaml(t *testing.T) {
	if _, err := FromScript([]byte("ticks: {")); err == nil {
		t.Error("FromScript() expected error for invalid yaml")
	}
}
