// Package daemon wires the indicator controller, watchers, liveness
// pulse and hot-plug supervisor together and owns their lifecycles.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/scrollkeep/internal/events"
	"github.com/smazurov/scrollkeep/internal/led"
	"github.com/smazurov/scrollkeep/internal/logging"
	"github.com/smazurov/scrollkeep/internal/metrics"
	"github.com/smazurov/scrollkeep/internal/pulse"
	"github.com/smazurov/scrollkeep/internal/supervisor"
	"github.com/smazurov/scrollkeep/internal/watcher"
	"github.com/smazurov/scrollkeep/pkg/evdev"
	"github.com/smazurov/scrollkeep/pkg/hotplug"
)

// Options configures the daemon.
type Options struct {
	Indicator     string        // LED to keep lit, e.g. "scrolllock"
	Mechanism     string        // "sysfs", "brightnessctl" or "noop"
	PulseInterval time.Duration
	SettleDelay   time.Duration
}

// Daemon coordinates all long-running components. Start launches them,
// Stop cancels and waits for every goroutine to drain.
type Daemon struct {
	opts     Options
	bus      *events.Bus
	ctrl     led.Controller
	registry *led.Registry
	pulse    *pulse.Pulse
	logger   *slog.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	monitor *hotplug.Monitor

	mu     sync.Mutex
	handle led.Handle
}

// New creates a daemon. Nothing runs until Start.
func New(opts Options, bus *events.Bus) *Daemon {
	logger := logging.GetLogger("daemon")
	return &Daemon{
		opts:     opts,
		bus:      bus,
		ctrl:     led.New(opts.Mechanism, logger),
		registry: led.NewRegistry(),
		logger:   logger,
	}
}

// Start resolves the indicator, lights it, and launches the watchers,
// pulse and hot-plug supervisor. Failing to resolve the indicator is
// fatal: a host with no matching LED cannot be managed. Everything
// after resolution degrades gracefully instead of failing startup.
func (d *Daemon) Start() error {
	handle, err := d.registry.Resolve(d.opts.Indicator)
	if err != nil {
		return fmt.Errorf("failed to resolve indicator: %w", err)
	}
	d.setHandle(handle)
	d.logger.Info("Indicator resolved", "led", handle.Name)

	// Light it immediately; a failure here is retried by the pulse
	if err := d.ctrl.Write(handle, led.Lit); err != nil {
		d.logger.Warn("Initial indicator write failed", "error", err)
		d.bus.Publish(events.IndicatorWriteFailedEvent{
			Origin:    "startup",
			Error:     err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	// Pulse first: watchers consult it to leave the blink off-phase alone
	d.startPulse(ctx)

	if err := d.startWatchers(ctx); err != nil {
		cancel()
		d.wg.Wait()
		return err
	}

	d.startSupervisor(ctx)

	return nil
}

// Stop shuts everything down and waits for the goroutines to exit.
func (d *Daemon) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.monitor != nil {
		d.monitor.Close()
	}
	d.wg.Wait()
	d.logger.Info("Daemon stopped")
}

// SetPulseInterval forwards a config hot-reload to the pulse.
func (d *Daemon) SetPulseInterval(interval time.Duration) {
	if d.pulse != nil {
		d.pulse.SetInterval(interval)
	}
}

// startWatchers enumerates keyboards present at startup and spawns a
// watcher per device. A host with no keyboard at startup has nothing
// to manage, so that is fatal; keyboards lost later are recovered by
// the hot-plug supervisor.
func (d *Daemon) startWatchers(ctx context.Context) error {
	keyboards, err := evdev.FindKeyboards()
	if err != nil {
		return fmt.Errorf("keyboard enumeration failed: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard device found")
	}

	for _, kb := range keyboards {
		d.logger.Info("Found keyboard", "device", kb.DevNode, "name", kb.Name)
		d.spawnWatcher(ctx, kb.DevNode)
	}
	return nil
}

func (d *Daemon) startPulse(ctx context.Context) {
	d.pulse = pulse.New(d.ctrl, d.currentHandle(), d.bus, d.opts.PulseInterval)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.pulse.Run(ctx)
	}()
}

func (d *Daemon) startSupervisor(ctx context.Context) {
	monitor, err := hotplug.NewMonitor(hotplug.SubsystemInput)
	if err != nil {
		// Likely missing CAP_NET_ADMIN-free netlink access; keep running
		// with the devices found at startup.
		d.logger.Error("Hotplug monitor unavailable, replug will not be detected", "error", err)
		return
	}
	d.monitor = monitor

	eventCh := make(chan hotplug.Event, 16)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := monitor.Run(ctx, eventCh); err != nil && ctx.Err() == nil {
			d.logger.Error("Hotplug monitor failed", "error", err)
		}
	}()

	sup := supervisor.New(eventCh, d.bus, d.spawnWatcher, d.opts.SettleDelay)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sup.Run(ctx)
	}()
}

// spawnWatcher opens a device node and, when it classifies as a
// keyboard, starts a watcher generation for it. Also re-resolves the
// indicator: a replugged keyboard registers its LED under a new name.
func (d *Daemon) spawnWatcher(ctx context.Context, devNode string) {
	if ctx.Err() != nil {
		return
	}

	dev, err := evdev.Open(devNode)
	if err != nil {
		d.logger.Debug("Skipping unreadable device", "device", devNode, "error", err)
		return
	}
	if !dev.IsKeyboard() {
		d.logger.Debug("Skipping non-keyboard device", "device", devNode)
		dev.Close()
		return
	}

	handle := d.refreshHandle()

	w := watcher.New(dev, d.ctrl, handle, d.bus)
	if d.pulse != nil {
		w.SuppressWhen(d.pulse.Blinking)
	}
	metrics.WatcherStarted()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer metrics.WatcherStopped()
		w.Run(ctx)
	}()
}

// refreshHandle re-resolves the indicator and retargets the pulse when
// the LED name changed. Falls back to the last known handle when
// resolution fails, so a transient sysfs hiccup does not lose the LED.
func (d *Daemon) refreshHandle() led.Handle {
	handle, err := d.registry.Resolve(d.opts.Indicator)
	if err != nil {
		d.logger.Debug("Indicator re-resolution failed, keeping previous handle", "error", err)
		return d.currentHandle()
	}

	previous := d.currentHandle()
	if handle != previous {
		d.logger.Info("Indicator moved", "from", previous.Name, "to", handle.Name)
		d.setHandle(handle)
		if d.pulse != nil {
			d.pulse.SetHandle(handle)
		}
	}
	return handle
}

func (d *Daemon) setHandle(h led.Handle) {
	d.mu.Lock()
	d.handle = h
	d.mu.Unlock()
}

func (d *Daemon) currentHandle() led.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle
}
