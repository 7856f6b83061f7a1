package model

import "time"

// NotableRecord is one entry of the remote pro driver list.
// The json tags match the published list format.
type NotableRecord struct {
	ID          int    `json:"UserID"`
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
}

type ProListSource string

const (
	// ProListSourceRemote marks a list obtained from a successful fetch.
	ProListSourceRemote ProListSource = "remote"
	// ProListSourceFallback marks a list restored from the persisted snapshot.
	ProListSourceFallback ProListSource = "stale-fallback"
)

// ProList is the active pro driver list. Instances are immutable once
// published; a refresh replaces the whole list instead of mutating it.
type ProList struct {
	Records   map[int]NotableRecord
	FetchedAt time.Time
	Source    ProListSource
}

// EmptyProList returns a list with no records, used before any fetch or
// persisted snapshot is available.
func EmptyProList() *ProList {
	return &ProList{Records: map[int]NotableRecord{}}
}
