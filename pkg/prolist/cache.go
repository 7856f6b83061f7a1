package prolist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/racemates/racemates-go/log"
	"github.com/racemates/racemates-go/pkg/model"
)

// DefaultMaxAge is the staleness threshold of the cached list.
const DefaultMaxAge = 24 * time.Hour

// DefaultCheckInterval is how often the background loop re-evaluates the
// staleness threshold. The fetch itself still happens at most once per
// DefaultMaxAge unless forced.
const DefaultCheckInterval = time.Hour

var ErrNoFetcher = errors.New("no fetcher configured")

// Cache owns the pro driver list and its freshness policy. The active list
// is replaced wholesale on refresh; readers observe either the old or the
// new list, never a partial update.
type Cache struct {
	mutex         sync.RWMutex
	current       *model.ProList
	fetcher       Fetcher
	cacheFile     string
	maxAge        time.Duration
	checkInterval time.Duration
	l             *log.Logger
}

type Option func(*Cache)

func WithFetcher(f Fetcher) Option {
	return func(c *Cache) {
		c.fetcher = f
	}
}

// WithCacheFile sets the location of the persisted snapshot.
func WithCacheFile(path string) Option {
	return func(c *Cache) {
		c.cacheFile = path
	}
}

func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

func WithCheckInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.checkInterval = d
		}
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(c *Cache) {
		c.l = arg
	}
}

// New creates the cache and synchronously loads the persisted snapshot (if
// any) so Get serves data before the first fetch completed.
func New(opts ...Option) *Cache {
	ret := &Cache{
		current:       model.EmptyProList(),
		maxAge:        DefaultMaxAge,
		checkInterval: DefaultCheckInterval,
		l:             log.Default().Named("prolist"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if snapshot, err := ret.loadSnapshot(); err == nil {
		ret.current = snapshot
		ret.l.Info("loaded persisted pro list",
			log.Int("records", len(snapshot.Records)),
			log.Time("fetchedAt", snapshot.FetchedAt))
	} else if !errors.Is(err, os.ErrNotExist) {
		ret.l.Warn("could not load persisted pro list", log.ErrorField(err))
	}
	return ret
}

// Get returns the active list. It never blocks on network and never returns
// nil or a partially written list.
func (c *Cache) Get() *model.ProList {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.current
}

// Refresh updates the list from the remote source. Without force the call is
// a no-op while the active list is younger than the staleness threshold.
// Fetch or payload errors leave the active list unchanged and are reported
// as non-fatal; when nothing is in memory yet the persisted snapshot is
// served instead.
func (c *Cache) Refresh(ctx context.Context, force bool) error {
	if !force {
		cur := c.Get()
		if !cur.FetchedAt.IsZero() && time.Since(cur.FetchedAt) < c.maxAge {
			c.l.Debug("pro list still fresh",
				log.Time("fetchedAt", cur.FetchedAt))
			return nil
		}
	}
	if c.fetcher == nil {
		return ErrNoFetcher
	}
	payload, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.fallbackToSnapshot()
		return fmt.Errorf("fetching pro list: %w", err)
	}
	records, err := decodeRecords(payload, c.l)
	if err != nil {
		c.fallbackToSnapshot()
		return fmt.Errorf("invalid pro list payload: %w", err)
	}
	list := &model.ProList{
		Records:   records,
		FetchedAt: time.Now(),
		Source:    model.ProListSourceRemote,
	}
	// persist before the swap; a crash mid-write must not corrupt the
	// snapshot, a failed write must not affect the in-memory list
	if err := c.persist(list); err != nil {
		c.l.Warn("could not persist pro list", log.ErrorField(err))
	}
	c.swap(list)
	c.l.Info("pro list refreshed", log.Int("records", len(records)))
	return nil
}

// Run drives the periodic background refresh until ctx is canceled. An
// in-flight fetch may be abandoned on shutdown; cache state stays intact.
func (c *Cache) Run(ctx context.Context) {
	if err := c.Refresh(ctx, false); err != nil {
		c.l.Warn("background refresh failed", log.ErrorField(err))
	}
	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.l.Debug("refresh loop stopped")
			return
		case <-ticker.C:
			if err := c.Refresh(ctx, false); err != nil {
				c.l.Warn("background refresh failed", log.ErrorField(err))
			}
		}
	}
}

func (c *Cache) swap(list *model.ProList) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.current = list
}

// fallbackToSnapshot serves the persisted snapshot when nothing usable is in
// memory yet (first run with no network).
func (c *Cache) fallbackToSnapshot() {
	if len(c.Get().Records) > 0 {
		return
	}
	snapshot, err := c.loadSnapshot()
	if err != nil {
		return
	}
	c.swap(snapshot)
	c.l.Info("serving persisted pro list after failed fetch",
		log.Int("records", len(snapshot.Records)))
}

// persistedList is the on-disk snapshot format.
type persistedList struct {
	Records   []model.NotableRecord `json:"records"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

func (c *Cache) persist(list *model.ProList) error {
	if c.cacheFile == "" {
		return nil
	}
	records := make([]model.NotableRecord, 0, len(list.Records))
	for _, rec := range list.Records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	data, err := json.MarshalIndent(
		persistedList{Records: records, FetchedAt: list.FetchedAt}, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.cacheFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// write-to-temp-then-rename keeps the snapshot intact on a crash mid-write
	tmp, err := os.CreateTemp(dir, filepath.Base(c.cacheFile)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.cacheFile)
}

func (c *Cache) loadSnapshot() (*model.ProList, error) {
	if c.cacheFile == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(c.cacheFile)
	if err != nil {
		return nil, err
	}
	var snapshot persistedList
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	records := make(map[int]model.NotableRecord, len(snapshot.Records))
	for _, rec := range snapshot.Records {
		if rec.ID <= 0 || rec.Name == "" {
			continue
		}
		records[rec.ID] = rec
	}
	return &model.ProList{
		Records:   records,
		FetchedAt: snapshot.FetchedAt,
		Source:    model.ProListSourceFallback,
	}, nil
}

// decodeRecords validates the remote payload. The top level must be a JSON
// array; malformed entries are skipped individually instead of failing the
// whole fetch.
func decodeRecords(payload []byte, l *log.Logger) (map[int]model.NotableRecord, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	records := make(map[int]model.NotableRecord, len(raw))
	skipped := 0
	for _, entry := range raw {
		var rec model.NotableRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			skipped++
			continue
		}
		if rec.ID <= 0 || rec.Name == "" {
			skipped++
			continue
		}
		records[rec.ID] = rec
	}
	if skipped > 0 {
		l.Debug("skipped invalid pro list entries", log.Int("skipped", skipped))
	}
	return records, nil
}
