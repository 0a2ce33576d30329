// Package metrics exposes daemon counters over Prometheus. All metrics
// are promauto-registered on the default registry and fed from the
// event bus, so producing packages never import prometheus directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/scrollkeep/internal/events"
)

var (
	correctionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scrollkeep",
		Name:      "corrections_total",
		Help:      "Times the indicator was re-lit after a driver cleared it",
	})

	writeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scrollkeep",
		Name:      "write_failures_total",
		Help:      "Indicator writes that failed, by originating component",
	}, []string{"origin"})

	pulseTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scrollkeep",
		Name:      "pulse_ticks_total",
		Help:      "Completed liveness blinks",
	})

	deviceAttachesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scrollkeep",
		Name:      "device_attaches_total",
		Help:      "Input event devices seen arriving",
	})

	deviceDetachesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scrollkeep",
		Name:      "device_detaches_total",
		Help:      "Input event devices seen departing",
	})

	activeWatchers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "scrollkeep",
		Name:      "active_watchers",
		Help:      "Watcher generations currently reading a device",
	})

	indicatorLit = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "scrollkeep",
		Name:      "indicator_lit",
		Help:      "Last known indicator state (1 lit, 0 unknown after a failed write)",
	})
)

// Collector bridges the event bus onto the Prometheus counters.
type Collector struct {
	unsubs []func()
}

// NewCollector subscribes to all daemon events. Call Close to detach.
func NewCollector(bus *events.Bus) *Collector {
	c := &Collector{}

	c.unsubs = append(c.unsubs,
		bus.Subscribe(func(_ events.IndicatorCorrectedEvent) {
			correctionsTotal.Inc()
			indicatorLit.Set(1)
		}),
		bus.Subscribe(func(e events.IndicatorWriteFailedEvent) {
			writeFailuresTotal.WithLabelValues(e.Origin).Inc()
			indicatorLit.Set(0)
		}),
		bus.Subscribe(func(_ events.PulseTickEvent) {
			pulseTicksTotal.Inc()
			indicatorLit.Set(1)
		}),
		bus.Subscribe(func(_ events.DeviceAttachedEvent) {
			deviceAttachesTotal.Inc()
		}),
		bus.Subscribe(func(_ events.DeviceDetachedEvent) {
			deviceDetachesTotal.Inc()
		}),
	)

	return c
}

// Close unsubscribes the collector from the bus.
func (c *Collector) Close() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}

// WatcherStarted records a new watcher generation.
func WatcherStarted() {
	activeWatchers.Inc()
}

// WatcherStopped records a watcher generation exit.
func WatcherStopped() {
	activeWatchers.Dec()
}
