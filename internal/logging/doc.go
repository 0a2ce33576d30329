// Package logging provides structured logging with per-module log level configuration.
//
// The package uses Go's slog with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"watcher": "debug", // Per-module overrides
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("watcher")
//	logger.Info("Starting up", "device", path)
//
// Initialize may be called again (config hot-reload); existing module
// loggers pick up the new levels through their LevelVars.
//
// When running under systemd:
//
//	journalctl -t scrollkeep -f
//	journalctl -t scrollkeep MODULE=watcher
package logging
