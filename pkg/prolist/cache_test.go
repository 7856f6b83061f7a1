package prolist

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/racemates/racemates-go/pkg/model"
)

type fakeFetcher struct {
	payload []byte
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

const samplePayload = `[
  {"UserID": 123, "Name": "Alice", "Description": "F1"},
  {"UserID": 456, "Name": "Bob"},
  {"UserID": 0, "Name": "empty slot"},
  {"Name": "no id"},
  {"UserID": "not-a-number", "Name": "bad id"},
  {"UserID": 789, "Name": ""}
]`

func cacheFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "prolist_cache.json")
}

func TestCache_Refresh_validatesEntries(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(samplePayload)}
	c := New(WithFetcher(fetcher))

	if err := c.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	want := map[int]model.NotableRecord{
		123: {ID: 123, Name: "Alice", Description: "F1"},
		456: {ID: 456, Name: "Bob"},
	}
	got := c.Get()
	if !reflect.DeepEqual(got.Records, want) {
		t.Errorf("Records = %v, want %v", got.Records, want)
	}
	assert.Equal(t, model.ProListSourceRemote, got.Source)
}

func TestCache_Refresh_rejectsNonArrayPayload(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(`{"UserID": 1, "Name": "A"}`)}
	c := New(WithFetcher(fetcher))

	err := c.Refresh(context.Background(), true)
	if err == nil {
		t.Fatal("Refresh() expected error for non-array payload")
	}
	assert.Empty(t, c.Get().Records)
}

func TestCache_Refresh_ttlGate(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(samplePayload)}
	c := New(WithFetcher(fetcher))

	// first call fetches, second within the staleness window is a no-op
	if err := c.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if err := c.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	assert.Equal(t, 1, fetcher.calls)

	// force bypasses the window
	if err := c.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	assert.Equal(t, 2, fetcher.calls)
}

func TestCache_Refresh_keepsListOnFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(samplePayload)}
	c := New(WithFetcher(fetcher))
	if err := c.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	before := c.Get()

	fetcher.err = errors.New("network down")
	err := c.Refresh(context.Background(), true)
	if err == nil {
		t.Fatal("Refresh() expected error on fetch failure")
	}
	if c.Get() != before {
		t.Errorf("Get() after failed refresh must return the pre-call list")
	}
}

func TestCache_persistRoundTrip(t *testing.T) {
	file := cacheFile(t)
	fetcher := &fakeFetcher{payload: []byte(samplePayload)}
	c := New(WithFetcher(fetcher), WithCacheFile(file))
	if err := c.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	written := c.Get()

	// a fresh instance serves the persisted snapshot before any fetch
	reloaded := New(WithCacheFile(file)).Get()
	if !reflect.DeepEqual(reloaded.Records, written.Records) {
		t.Errorf("reloaded records = %v, want %v", reloaded.Records, written.Records)
	}
	if !reloaded.FetchedAt.Equal(written.FetchedAt) {
		t.Errorf("reloaded fetchedAt = %v, want %v", reloaded.FetchedAt, written.FetchedAt)
	}
	assert.Equal(t, model.ProListSourceFallback, reloaded.Source)
}

func TestCache_fallbackToSnapshotOnFirstRun(t *testing.T) {
	file := cacheFile(t)
	fetcher := &fakeFetcher{err: errors.New("no network")}
	c := New(WithFetcher(fetcher), WithCacheFile(file))

	// snapshot appears after construction (no list in memory yet)
	writeSnapshot(t, file, time.Now())

	err := c.Refresh(context.Background(), true)
	if err == nil {
		t.Fatal("Refresh() expected error on fetch failure")
	}
	got := c.Get()
	assert.Len(t, got.Records, 1)
	assert.Equal(t, model.ProListSourceFallback, got.Source)
}

func TestCache_reloadIfNewer(t *testing.T) {
	file := cacheFile(t)
	fetcher := &fakeFetcher{payload: []byte(`[{"UserID": 1, "Name": "A"}]`)}
	c := New(WithFetcher(fetcher), WithCacheFile(file))
	if err := c.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// our own write carries the active timestamp and must not reload
	c.reloadIfNewer()
	assert.Equal(t, model.ProListSourceRemote, c.Get().Source)

	// an externally rewritten, newer snapshot is swapped in
	writeSnapshot(t, file, time.Now().Add(time.Minute))
	c.reloadIfNewer()
	got := c.Get()
	assert.Equal(t, model.ProListSourceFallback, got.Source)
	assert.Contains(t, got.Records, 777)
}

func writeSnapshot(t *testing.T, file string, fetchedAt time.Time) {
	t.Helper()
	data, err := json.Marshal(persistedList{
		Records:   []model.NotableRecord{{ID: 777, Name: "External", Description: "GT3"}},
		FetchedAt: fetchedAt,
	})
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
}
