package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/smazurov/scrollkeep/internal/events"
	"github.com/smazurov/scrollkeep/internal/led"
	"github.com/smazurov/scrollkeep/internal/logging"
	"github.com/smazurov/scrollkeep/pkg/evdev"
)

// EventSource is the device stream a watcher reads. Satisfied by
// *evdev.Device; faked in tests.
type EventSource interface {
	ReadEvent() (evdev.Event, error)
	DevNode() string
	Close() error
}

// Watcher reads input events from one keyboard and turns the indicator
// back on whenever the driver clears it. One watcher runs per watcher
// generation; it exits when its device vanishes and the supervisor
// spawns a replacement.
type Watcher struct {
	source   EventSource
	ctrl     led.Controller
	handle   led.Handle
	bus      *events.Bus
	logger   *slog.Logger
	suppress func() bool
}

// New creates a watcher over an open event source.
func New(source EventSource, ctrl led.Controller, handle led.Handle, bus *events.Bus) *Watcher {
	return &Watcher{
		source: source,
		ctrl:   ctrl,
		handle: handle,
		bus:    bus,
		logger: logging.GetLogger("watcher").With("device", source.DevNode()),
	}
}

// SuppressWhen registers a predicate consulted before each corrective
// write. Used to leave the liveness blink's off-phase alone. Must be
// called before Run.
func (w *Watcher) SuppressWhen(fn func() bool) {
	w.suppress = fn
}

// Run blocks reading events until the device vanishes or the context is
// cancelled. The source is closed on return. Returns nil on clean
// shutdown; a device read error is reported on the bus, not returned,
// since device loss is an expected lifecycle event.
func (w *Watcher) Run(ctx context.Context) error {
	// Cancellation reaches a parked read by closing the source; the
	// device sits on the runtime poller, so Close wakes it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			w.source.Close()
		case <-done:
			w.source.Close()
		}
	}()

	// The device may have appeared with the indicator off
	w.reconcile()

	w.logger.Info("Watching input events")

	for {
		ev, err := w.source.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Watcher stopped")
				return nil
			}
			w.logger.Info("Device lost", "error", err)
			w.bus.Publish(events.WatcherStoppedEvent{
				Device:    w.source.DevNode(),
				Reason:    err.Error(),
				Timestamp: time.Now().Format(time.RFC3339),
			})
			return nil
		}

		// Only indicator changes matter; key and sync traffic is noise.
		// Our own corrective writes echo back as EV_LED events and
		// reconcile to a no-op, so there is no feedback loop.
		if ev.Type == evdev.EvLed {
			w.reconcile()
		}
	}
}

// reconcile re-lights the indicator if it reads as unlit. A lit
// indicator is left alone so steady state generates no writes.
func (w *Watcher) reconcile() {
	if w.suppress != nil && w.suppress() {
		return
	}
	if w.ctrl.Read(w.handle) == led.Lit {
		return
	}

	if err := w.ctrl.Write(w.handle, led.Lit); err != nil {
		w.logger.Warn("Corrective write failed", "error", err)
		w.bus.Publish(events.IndicatorWriteFailedEvent{
			Origin:    "watcher",
			Error:     err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	w.logger.Debug("Indicator corrected")
	w.bus.Publish(events.IndicatorCorrectedEvent{
		Device:    w.source.DevNode(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
