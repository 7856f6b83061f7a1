package config

import (
	"os"
	"path/filepath"
	"time"
)

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	ProListURL       string // URL of the remote pro driver list (JSON array)
	CacheDir         string // directory for the cached pro driver list
	FetchTimeout     string // timeout for fetching the remote list
	PollInterval     string // interval between telemetry polls
	ProListMaxAge    string // max age of the cached list before a refresh is attempted
	RaceSessionState int    // telemetry session state value that denotes a race
	RefreshPro       bool   // force refresh of the pro driver list on startup
	SimScript        string // path to a scripted telemetry source (yaml)
	LogLevel         string // sets the log level (zap log level values)
	LogFormat        string // text vs json
	LogFilter        string // zapfilter rules for named loggers
	EnableTelemetry  bool   // enable telemetry
	NatsURL          string // if set, overlay events are published to this NATS server
	NatsSubject      string // subject for published overlay events
)

const CacheFileName = "prolist_cache.json"

// Config holds the configuration values which are used by the application.
// It is built once at startup and passed to the components; no component
// reads the CLI globals above.
type Config struct {
	ProListURL       string
	CacheFile        string
	FetchTimeout     time.Duration
	PollInterval     time.Duration
	ProListMaxAge    time.Duration
	RaceSessionState int
	RefreshPro       bool
}

// DefaultCacheDir resolves the per-user application data directory.
// On Windows this is %APPDATA%\RaceMates, elsewhere ~/.racemates.
func DefaultCacheDir() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "RaceMates")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".racemates"
	}
	return filepath.Join(home, ".racemates")
}

// ResolveCacheFile returns the full path of the cache file inside dir,
// falling back to the per-user default when dir is empty.
func ResolveCacheFile(dir string) string {
	if dir == "" {
		dir = DefaultCacheDir()
	}
	return filepath.Join(dir, CacheFileName)
}

// ParseDuration parses s and returns defaultVal if s is empty or invalid.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return defaultVal
}
