// Package sim provides a scripted telemetry source. It replays a yaml
// script tick by tick, which is how the overlay runs outside a live iRacing
// session (development, tests, demos). Hosts embedding the core supply the
// live SDK-backed source instead.
package sim

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/racemates/racemates-go/pkg/telemetry"
)

type scriptDriver struct {
	UserID    int    `yaml:"userId"`
	UserName  string `yaml:"userName"`
	CarNumber string `yaml:"carNumber"`
	CarClass  string `yaml:"carClass"`
}

type scriptTick struct {
	Connected    bool           `yaml:"connected"`
	SessionState int            `yaml:"sessionState"`
	OnTrack      bool           `yaml:"onTrack"`
	Drivers      []scriptDriver `yaml:"drivers"`
	// Repeat replays this tick n times in total (default 1)
	Repeat int `yaml:"repeat"`
}

type script struct {
	Ticks []scriptTick `yaml:"ticks"`
}

var ErrEmptyScript = errors.New("script contains no ticks")

// Source replays the scripted samples in order. Once the script is
// exhausted the final sample is repeated, so a script can end in a steady
// state (e.g. disconnected).
type Source struct {
	samples []telemetry.Sample
	pos     int
}

func FromFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromScript(data)
}

func FromScript(data []byte) (*Source, error) {
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing sim script: %w", err)
	}
	if len(s.Ticks) == 0 {
		return nil, ErrEmptyScript
	}
	samples := make([]telemetry.Sample, 0, len(s.Ticks))
	for i := range s.Ticks {
		tick := &s.Ticks[i]
		repeat := tick.Repeat
		if repeat < 1 {
			repeat = 1
		}
		for n := 0; n < repeat; n++ {
			samples = append(samples, toSample(tick))
		}
	}
	return &Source{samples: samples}, nil
}

func toSample(tick *scriptTick) telemetry.Sample {
	drivers := make([]telemetry.RawDriver, 0, len(tick.Drivers))
	for _, d := range tick.Drivers {
		drivers = append(drivers, telemetry.RawDriver{
			UserID:            d.UserID,
			UserName:          d.UserName,
			CarNumber:         d.CarNumber,
			CarClassShortName: d.CarClass,
		})
	}
	return telemetry.Sample{
		Connected:    tick.Connected,
		SessionState: tick.SessionState,
		IsOnTrack:    tick.OnTrack,
		Drivers:      drivers,
	}
}

func (s *Source) Probe(_ context.Context) (telemetry.Sample, error) {
	sample := s.samples[s.pos]
	if s.pos < len(s.samples)-1 {
		s.pos++
	}
	return sample, nil
}
