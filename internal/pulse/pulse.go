package pulse

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/scrollkeep/internal/events"
	"github.com/smazurov/scrollkeep/internal/led"
	"github.com/smazurov/scrollkeep/internal/logging"
)

// Defaults for the liveness blink.
const (
	DefaultInterval = 5 * time.Second
	DefaultBlink    = 300 * time.Millisecond
	MinInterval     = time.Second
)

// Pulse blinks the indicator off and back on at a fixed interval. The
// blink proves the daemon is alive, and the trailing on-write doubles
// as a retry for any correction the watcher missed.
type Pulse struct {
	ctrl   led.Controller
	bus    *events.Bus
	logger *slog.Logger

	mu       sync.Mutex
	handle   led.Handle
	interval time.Duration
	blink    time.Duration
	reload   chan struct{}

	blinking atomic.Bool
}

// New creates a pulse with the given interval, clamped to MinInterval.
func New(ctrl led.Controller, handle led.Handle, bus *events.Bus, interval time.Duration) *Pulse {
	return &Pulse{
		ctrl:     ctrl,
		handle:   handle,
		bus:      bus,
		logger:   logging.GetLogger("pulse"),
		interval: clamp(interval),
		blink:    DefaultBlink,
		reload:   make(chan struct{}, 1),
	}
}

func clamp(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// Interval returns the current pulse interval.
func (p *Pulse) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// SetHandle retargets the pulse at a different LED. Called when a
// replugged keyboard registers under a new LED name.
func (p *Pulse) SetHandle(h led.Handle) {
	p.mu.Lock()
	p.handle = h
	p.mu.Unlock()
}

func (p *Pulse) currentHandle() led.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// Blinking reports whether a blink is in progress. Watchers consult
// this so the deliberate off-phase is not "corrected" mid-blink.
func (p *Pulse) Blinking() bool {
	return p.blinking.Load()
}

// SetInterval changes the pulse interval. Takes effect immediately;
// used by config hot-reload.
func (p *Pulse) SetInterval(d time.Duration) {
	p.mu.Lock()
	p.interval = clamp(d)
	p.mu.Unlock()

	select {
	case p.reload <- struct{}{}:
	default:
	}
}

// Run blinks until the context is cancelled. The indicator is left lit
// on shutdown.
func (p *Pulse) Run(ctx context.Context) error {
	p.logger.Info("Liveness pulse started", "interval", p.Interval())

	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.reload:
			p.logger.Info("Pulse interval changed", "interval", p.Interval())
			ticker.Reset(p.Interval())
		case <-ticker.C:
			p.blinkOnce(ctx)
		}
	}
}

// blinkOnce turns the indicator off for the blink duration and back on.
// The on-write always runs, even when the off-write failed or the
// context was cancelled mid-blink.
func (p *Pulse) blinkOnce(ctx context.Context) {
	p.blinking.Store(true)
	defer p.blinking.Store(false)

	handle := p.currentHandle()

	if err := p.ctrl.Write(handle, led.Unlit); err != nil {
		p.logger.Warn("Pulse off-write failed", "error", err)
		p.publishFailure(err)
	} else {
		select {
		case <-time.After(p.blinkDuration()):
		case <-ctx.Done():
		}
	}

	if err := p.ctrl.Write(handle, led.Lit); err != nil {
		p.logger.Warn("Pulse on-write failed", "error", err)
		p.publishFailure(err)
		return
	}

	p.logger.Debug("Pulse tick")
	p.bus.Publish(events.PulseTickEvent{Timestamp: time.Now().Format(time.RFC3339)})
}

func (p *Pulse) blinkDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blink
}

func (p *Pulse) publishFailure(err error) {
	p.bus.Publish(events.IndicatorWriteFailedEvent{
		Origin:    "pulse",
		Error:     err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
