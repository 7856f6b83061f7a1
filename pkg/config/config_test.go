package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveCacheFile(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/tmp/custom", CacheFileName),
		ResolveCacheFile("/tmp/custom"))
}

func TestDefaultCacheDir_appData(t *testing.T) {
	t.Setenv("APPDATA", filepath.Join("C:", "Users", "me", "AppData", "Roaming"))
	assert.Equal(t,
		filepath.Join("C:", "Users", "me", "AppData", "Roaming", "RaceMates"),
		DefaultCacheDir())
}

func TestDefaultCacheDir_home(t *testing.T) {
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", "/home/me")
	assert.Equal(t, filepath.Join("/home/me", ".racemates"), DefaultCacheDir())
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("bogus", time.Minute))
}
