package led

import (
	"log/slog"
	"os"
)

// New creates an LED controller for the configured mechanism.
// Falls back to a no-op controller when sysfs LED support is absent so
// the daemon can still run in containers and dev environments.
func New(mechanism string, logger *slog.Logger) Controller {
	switch mechanism {
	case "brightnessctl":
		logger.Info("Using brightnessctl LED controller")
		return newExec(logger)

	case "noop":
		logger.Info("Using no-op LED controller")
		return newNoop(logger)

	default:
		if _, err := os.Stat(sysfsLEDPath); err != nil {
			logger.Info("No sysfs LED support detected, using no-op controller",
				"path", sysfsLEDPath,
				"error", err)
			return newNoop(logger)
		}
		logger.Info("Using sysfs LED controller")
		return newSysfs(logger)
	}
}
