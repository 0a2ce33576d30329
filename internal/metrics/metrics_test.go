package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smazurov/scrollkeep/internal/events"
)

// waitForDelta polls until the counter moved by want or the deadline passes.
func waitForDelta(t *testing.T, read func() float64, before, want float64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if read()-before == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("counter delta = %v, want %v", read()-before, want)
}

func TestCollector_CountsCorrections(t *testing.T) {
	bus := events.New()
	c := NewCollector(bus)
	defer c.Close()

	before := testutil.ToFloat64(correctionsTotal)
	bus.Publish(events.IndicatorCorrectedEvent{Device: "/dev/input/event3"})

	waitForDelta(t, func() float64 { return testutil.ToFloat64(correctionsTotal) }, before, 1)

	if got := testutil.ToFloat64(indicatorLit); got != 1 {
		t.Errorf("indicator gauge = %v, want 1 after correction", got)
	}
}

func TestCollector_CountsWriteFailuresByOrigin(t *testing.T) {
	bus := events.New()
	c := NewCollector(bus)
	defer c.Close()

	counter := writeFailuresTotal.WithLabelValues("pulse")
	before := testutil.ToFloat64(counter)

	bus.Publish(events.IndicatorWriteFailedEvent{Origin: "pulse", Error: "EIO"})
	bus.Publish(events.IndicatorWriteFailedEvent{Origin: "pulse", Error: "EIO"})

	waitForDelta(t, func() float64 { return testutil.ToFloat64(counter) }, before, 2)
}

func TestCollector_CountsDeviceChurn(t *testing.T) {
	bus := events.New()
	c := NewCollector(bus)
	defer c.Close()

	attachBefore := testutil.ToFloat64(deviceAttachesTotal)
	detachBefore := testutil.ToFloat64(deviceDetachesTotal)

	bus.Publish(events.DeviceAttachedEvent{DevNode: "/dev/input/event3"})
	bus.Publish(events.DeviceDetachedEvent{DevNode: "/dev/input/event3"})

	waitForDelta(t, func() float64 { return testutil.ToFloat64(deviceAttachesTotal) }, attachBefore, 1)
	waitForDelta(t, func() float64 { return testutil.ToFloat64(deviceDetachesTotal) }, detachBefore, 1)
}

func TestCollector_CloseDetaches(t *testing.T) {
	bus := events.New()
	c := NewCollector(bus)
	c.Close()

	before := testutil.ToFloat64(pulseTicksTotal)
	bus.Publish(events.PulseTickEvent{})

	time.Sleep(50 * time.Millisecond)
	if got := testutil.ToFloat64(pulseTicksTotal); got != before {
		t.Errorf("counter moved after Close: %v -> %v", before, got)
	}
}

func TestWatcherGauge(t *testing.T) {
	before := testutil.ToFloat64(activeWatchers)

	WatcherStarted()
	WatcherStarted()
	WatcherStopped()

	if got := testutil.ToFloat64(activeWatchers); got-before != 1 {
		t.Errorf("gauge delta = %v, want 1", got-before)
	}
	WatcherStopped()
}

func TestMetricsExposition(t *testing.T) {
	// Touch a metric so there's something to export
	correctionsTotal.Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "scrollkeep_corrections_total") {
		t.Error("expected scrollkeep metrics in response")
	}
}
