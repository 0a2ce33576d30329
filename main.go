package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/scrollkeep/cmd"
	"github.com/smazurov/scrollkeep/internal/config"
	"github.com/smazurov/scrollkeep/internal/daemon"
	"github.com/smazurov/scrollkeep/internal/events"
	"github.com/smazurov/scrollkeep/internal/logging"
	"github.com/smazurov/scrollkeep/internal/metrics"
	"github.com/smazurov/scrollkeep/internal/systemd"
	"github.com/smazurov/scrollkeep/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"/etc/scrollkeep/config.toml"`

	// Indicator settings
	Indicator string `help:"Indicator LED to keep lit" short:"i" default:"scrolllock" toml:"indicator.name" env:"INDICATOR_NAME"`
	Mechanism string `help:"LED write mechanism (sysfs, brightnessctl, noop)" default:"sysfs" toml:"indicator.mechanism" env:"INDICATOR_MECHANISM"`

	// Pulse settings
	PulseIntervalSeconds int `help:"Seconds between liveness blinks" default:"5" toml:"pulse.interval_seconds" env:"PULSE_INTERVAL_SECONDS"`

	// Hotplug settings
	HotplugSettleDelayMs int `help:"Milliseconds to wait after a device attach before watching it" default:"1000" toml:"hotplug.settle_delay_ms" env:"HOTPLUG_SETTLE_DELAY_MS"`

	// Metrics settings
	MetricsEnabled bool `help:"Expose Prometheus metrics over HTTP" default:"false" toml:"metrics.enabled" env:"METRICS_ENABLED"`
	MetricsPort    int  `help:"Metrics HTTP port" default:"9309" toml:"metrics.port" env:"METRICS_PORT"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingWatcher string `help:"Watcher logging level" default:"info" toml:"logging.watcher" env:"LOGGING_WATCHER"`
	LoggingPulse   string `help:"Pulse logging level" default:"info" toml:"logging.pulse" env:"LOGGING_PULSE"`
	LoggingHotplug string `help:"Hotplug logging level" default:"info" toml:"logging.hotplug" env:"LOGGING_HOTPLUG"`
	LoggingDaemon  string `help:"Daemon logging level" default:"info" toml:"logging.daemon" env:"LOGGING_DAEMON"`
}

func main() {
	// The callback runs inside cli.Run, after flag parsing, so the root
	// command's Changed flags are visible to the config loader.
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"watcher": opts.LoggingWatcher,
				"pulse":   opts.LoggingPulse,
				"hotplug": opts.LoggingHotplug,
				"daemon":  opts.LoggingDaemon,
			},
		})

		logger := logging.GetLogger("main")

		eventBus := events.New()
		collector := metrics.NewCollector(eventBus)

		d := daemon.New(daemon.Options{
			Indicator:     opts.Indicator,
			Mechanism:     opts.Mechanism,
			PulseInterval: time.Duration(opts.PulseIntervalSeconds) * time.Second,
			SettleDelay:   time.Duration(opts.HotplugSettleDelayMs) * time.Millisecond,
		}, eventBus)

		// Hot-reload for log levels and pulse interval
		cfgWatcher := config.NewConfigWatcher(opts.Config, config.LoadRuntime, logging.GetLogger("config"))
		cfgWatcher.OnReload(func(rt config.Runtime) {
			logging.Initialize(rt.Logging)
			if rt.PulseInterval > 0 {
				d.SetPulseInterval(rt.PulseInterval)
			}
		})

		appCtx, appCancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		hooks.OnStart(func() {
			logger.Info("Starting scrollkeep",
				"version", version.String(),
				"indicator", opts.Indicator,
				"mechanism", opts.Mechanism)

			if startErr := d.Start(); startErr != nil {
				logger.Error("Failed to start daemon", "error", startErr)
				os.Exit(1)
			}

			if opts.MetricsEnabled {
				go func() {
					if serveErr := metrics.Serve(appCtx, opts.MetricsPort); serveErr != nil {
						logger.Error("Metrics server failed", "error", serveErr)
					}
				}()
			}

			if watchErr := cfgWatcher.Start(); watchErr != nil {
				logger.Warn("Config hot-reload unavailable", "error", watchErr)
			}

			go func() {
				if wdErr := systemd.RunWatchdog(appCtx); wdErr != nil {
					logger.Warn("Watchdog failed", "error", wdErr)
				}
			}()

			systemd.NotifyReady()
			logger.Info("scrollkeep ready")

			<-done
		})

		hooks.OnStop(func() {
			systemd.NotifyStopping()
			logger.Info("Shutting down")

			if stopErr := cfgWatcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}

			appCancel()
			d.Stop()
			collector.Close()
			close(done)
		})
	})

	cli.Root().Use = "scrollkeep"
	cli.Root().Version = version.String()

	cli.Root().AddCommand(cmd.CreateStatusCmd())

	cli.Run()
}
