package overlay

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/racemates/racemates-go/log"
	"github.com/racemates/racemates-go/pkg/config"
	"github.com/racemates/racemates-go/pkg/model"
	"github.com/racemates/racemates-go/pkg/notify"
	"github.com/racemates/racemates-go/pkg/prolist"
	"github.com/racemates/racemates-go/pkg/telemetry"
	"github.com/racemates/racemates-go/pkg/telemetry/sim"
)

//nolint:funlen // by design
func NewOverlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "runs the overlay core loop",
		Long: `Polls the telemetry source, matches the session roster against the
pro driver list and emits overlay events. The scripted source (--sim) stands
in for the live SDK; hosts embedding this core wire their own source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverlay()
		},
	}
	cmd.Flags().StringVar(&config.SimScript,
		"sim",
		"",
		"path to a scripted telemetry source (yaml)")
	cmd.Flags().StringVar(&config.PollInterval,
		"poll-interval",
		"1s",
		"interval between telemetry polls")
	cmd.Flags().StringVar(&config.ProListMaxAge,
		"prolist-max-age",
		"24h",
		"max age of the cached pro driver list before a refresh is attempted")
	cmd.Flags().IntVar(&config.RaceSessionState,
		"race-session-state",
		telemetry.DefaultRaceSessionState,
		"telemetry session state value that denotes a race")
	cmd.Flags().BoolVar(&config.RefreshPro,
		"refresh-pro",
		false,
		"force refresh of the pro driver list on startup")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"if set, overlay events are published to this NATS server")
	cmd.Flags().StringVar(&config.NatsSubject,
		"nats-subject",
		notify.DefaultNatsSubject,
		"subject for published overlay events")
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format")
	cmd.Flags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules for named loggers")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	//nolint:errcheck // flag is defined above
	cmd.MarkFlagRequired("sim")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func newLogger() *log.Logger {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		opts = append(opts, log.WithFilterRules(config.LogFilter))
	}
	switch config.LogFormat {
	case "json":
		return log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			opts...)
	default:
		return log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			opts...)
	}
}

//nolint:funlen,cyclop // by design
func runOverlay() error {
	log.ResetDefault(newLogger())
	var telemetryCfg *config.Telemetry

	cfg := &config.Config{
		ProListURL:       config.ProListURL,
		CacheFile:        config.ResolveCacheFile(config.CacheDir),
		FetchTimeout:     config.ParseDuration(config.FetchTimeout, 10*time.Second),
		PollInterval:     config.ParseDuration(config.PollInterval, telemetry.DefaultPollInterval),
		ProListMaxAge:    config.ParseDuration(config.ProListMaxAge, prolist.DefaultMaxAge),
		RaceSessionState: config.RaceSessionState,
		RefreshPro:       config.RefreshPro,
	}
	log.Debug("Config:",
		log.String("prolistUrl", cfg.ProListURL),
		log.String("cacheFile", cfg.CacheFile),
		log.Duration("pollInterval", cfg.PollInterval),
		log.Duration("prolistMaxAge", cfg.ProListMaxAge),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetryCfg, err = config.SetupTelemetry(ctx); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
	}

	source, err := sim.FromFile(config.SimScript)
	if err != nil {
		return err
	}

	cache := prolist.New(
		prolist.WithFetcher(prolist.NewHTTPFetcher(cfg.ProListURL, cfg.FetchTimeout)),
		prolist.WithCacheFile(cfg.CacheFile),
		prolist.WithMaxAge(cfg.ProListMaxAge),
	)
	if cfg.RefreshPro {
		// bounded by the fetch timeout; on failure we keep serving the cache
		refreshCtx, refreshCancel := context.WithTimeout(ctx, cfg.FetchTimeout)
		if err := cache.Refresh(refreshCtx, true); err != nil {
			log.Warn("forced refresh failed", log.ErrorField(err))
		}
		refreshCancel()
	}
	go cache.Run(ctx)
	go func() {
		if err := cache.Watch(ctx); err != nil {
			log.Warn("cache watcher stopped", log.ErrorField(err))
		}
	}()

	events := make(chan model.OverlayEvent, 1)
	bcst := notify.NewBroadcastServer("overlay", events)
	go consumeEvents(bcst.Subscribe())

	if config.NatsURL != "" {
		conn, err := nats.Connect(config.NatsURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		sink := notify.NewNatsSink(conn, notify.WithSubject(config.NatsSubject))
		go sink.Run(ctx, bcst.Subscribe())
		log.Info("publishing overlay events",
			log.String("url", config.NatsURL),
			log.String("subject", config.NatsSubject))
	}

	poller, err := telemetry.NewPoller(
		telemetry.WithSource(source),
		telemetry.WithListProvider(cache),
		telemetry.WithSink(notify.NewNotifier(events)),
		telemetry.WithInterval(cfg.PollInterval),
		telemetry.WithStateMachine(telemetry.NewStateMachine(
			telemetry.WithRaceSessionState(cfg.RaceSessionState))),
	)
	if err != nil {
		return err
	}
	go poller.Run(ctx)
	log.Info("Overlay core started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	v := <-sigChan
	log.Debug("Got signal ", log.Any("signal", v))
	bcst.Close()
	if telemetryCfg != nil {
		telemetryCfg.Shutdown()
	}
	cancel()
	log.Info("Overlay terminated")
	return nil
}

// consumeEvents is the in-process stand-in for the presentation layer.
func consumeEvents(events <-chan model.OverlayEvent) {
	for event := range events {
		switch event.Kind {
		case model.EventVisible:
			log.Info("overlay visible", log.Int("proDrivers", len(event.Matches)))
			for i := range event.Matches {
				m := &event.Matches[i]
				log.Debug("pro driver in session",
					log.Int("userId", m.Participant.ID),
					log.String("name", m.Participant.Name),
					log.String("carNumber", m.Participant.CarNumber),
					log.String("description", m.Description))
			}
		case model.EventHidden:
			log.Info("overlay hidden")
		}
	}
}
