package telemetry

import (
	"github.com/racemates/racemates-go/pkg/model"
)

// ExtractRoster converts the raw per-slot driver array into a validated
// roster. Empty slots (non-positive id or empty name) are dropped and
// duplicate ids keep their first occurrence. A nil slice yields an empty
// roster; a bad telemetry frame must not crash the poll loop.
func ExtractRoster(drivers []RawDriver) []model.Participant {
	ret := make([]model.Participant, 0, len(drivers))
	seen := make(map[int]struct{}, len(drivers))
	for i := range drivers {
		d := &drivers[i]
		if d.UserID <= 0 || d.UserName == "" {
			continue
		}
		if _, dup := seen[d.UserID]; dup {
			continue
		}
		seen[d.UserID] = struct{}{}
		ret = append(ret, model.Participant{
			ID:        d.UserID,
			Name:      d.UserName,
			CarNumber: d.CarNumber,
			CarClass:  d.CarClassShortName,
		})
	}
	return ret
}
