package prolist

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/racemates/racemates-go/log"
)

// Watch reloads the persisted snapshot when another process rewrites it,
// e.g. "racemates prolist refresh" running next to the overlay. It blocks
// until ctx is canceled. The directory is watched instead of the file since
// the snapshot is replaced via rename.
func (c *Cache) Watch(ctx context.Context) error {
	if c.cacheFile == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(c.cacheFile)); err != nil {
		return err
	}
	c.l.Debug("watching cache file", log.String("file", c.cacheFile))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != c.cacheFile {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			c.reloadIfNewer()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.l.Warn("cache file watcher error", log.ErrorField(err))
		}
	}
}

// reloadIfNewer swaps in the persisted snapshot when it is newer than the
// active list. Our own persist writes carry the same timestamp as the active
// list and are ignored.
func (c *Cache) reloadIfNewer() {
	snapshot, err := c.loadSnapshot()
	if err != nil {
		c.l.Debug("could not reload snapshot", log.ErrorField(err))
		return
	}
	if !snapshot.FetchedAt.After(c.Get().FetchedAt) {
		return
	}
	c.swap(snapshot)
	c.l.Info("reloaded pro list from rewritten snapshot",
		log.Int("records", len(snapshot.Records)),
		log.Time("fetchedAt", snapshot.FetchedAt))
}
