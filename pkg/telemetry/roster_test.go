package telemetry

import (
	"reflect"
	"testing"

	"github.com/racemates/racemates-go/pkg/model"
)

func TestExtractRoster(t *testing.T) {
	tests := []struct {
		name    string
		drivers []RawDriver
		want    []model.Participant
	}{
		{
			name:    "nil frame",
			drivers: nil,
			want:    []model.Participant{},
		},
		{
			name: "empty slots excluded",
			drivers: []RawDriver{
				{UserID: 0, UserName: "", CarNumber: "", CarClassShortName: ""},
				{UserID: 1, UserName: "Alice", CarNumber: "12", CarClassShortName: "GT3"},
				{UserID: -1, UserName: "Ghost", CarNumber: "99"},
				{UserID: 2, UserName: "", CarNumber: "5"},
			},
			want: []model.Participant{
				{ID: 1, Name: "Alice", CarNumber: "12", CarClass: "GT3"},
			},
		},
		{
			name: "duplicate ids keep first occurrence",
			drivers: []RawDriver{
				{UserID: 1, UserName: "Alice", CarNumber: "12", CarClassShortName: "GT3"},
				{UserID: 1, UserName: "Alice again", CarNumber: "13", CarClassShortName: "GT3"},
				{UserID: 2, UserName: "Bob", CarNumber: "5", CarClassShortName: "GT4"},
			},
			want: []model.Participant{
				{ID: 1, Name: "Alice", CarNumber: "12", CarClass: "GT3"},
				{ID: 2, Name: "Bob", CarNumber: "5", CarClass: "GT4"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRoster(tt.drivers); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractRoster() = %v, want %v", got, tt.want)
			}
		})
	}
}
