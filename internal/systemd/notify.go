// Package systemd integrates with the service manager lifecycle. All
// calls are no-ops when the daemon runs outside a systemd unit.
package systemd

import (
	"context"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"

	"github.com/smazurov/scrollkeep/internal/logging"
)

// NotifyReady signals that startup finished and the indicator is under
// management. Pair with Type=notify in the unit file.
func NotifyReady() {
	sent, err := sd.SdNotify(false, sd.SdNotifyReady)
	if err != nil {
		logging.GetLogger("systemd").Warn("Failed to notify readiness", "error", err)
		return
	}
	if sent {
		logging.GetLogger("systemd").Debug("Notified systemd: ready")
	}
}

// NotifyStopping signals that shutdown has begun.
func NotifyStopping() {
	if _, err := sd.SdNotify(false, sd.SdNotifyStopping); err != nil {
		logging.GetLogger("systemd").Warn("Failed to notify stopping", "error", err)
	}
}

// RunWatchdog feeds the systemd watchdog at half the configured
// WatchdogSec until the context is cancelled. Returns immediately when
// no watchdog is configured.
func RunWatchdog(ctx context.Context) error {
	interval, err := sd.SdWatchdogEnabled(false)
	if err != nil {
		return err
	}
	if interval == 0 {
		return nil
	}

	logger := logging.GetLogger("systemd")
	logger.Info("Watchdog enabled", "interval", interval)

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := sd.SdNotify(false, sd.SdNotifyWatchdog); err != nil {
				logger.Warn("Watchdog keepalive failed", "error", err)
			}
		}
	}
}
