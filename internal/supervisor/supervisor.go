package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/scrollkeep/internal/events"
	"github.com/smazurov/scrollkeep/internal/logging"
	"github.com/smazurov/scrollkeep/pkg/hotplug"
)

// DefaultSettleDelay gives the kernel time to finish registering the
// input device and its LED class entries after the attach uevent fires.
const DefaultSettleDelay = time.Second

// SpawnFunc starts a new watcher generation for an attached device
// node. Called from the supervisor's goroutine after the settle delay.
type SpawnFunc func(ctx context.Context, devNode string)

// Supervisor reacts to input hot-plug events. Each attach spawns a
// fresh watcher generation; a generation whose device vanished exits on
// its own, so overlapping generations are tolerated rather than fenced.
type Supervisor struct {
	events <-chan hotplug.Event
	bus    *events.Bus
	spawn  SpawnFunc
	settle time.Duration
	logger *slog.Logger

	wg sync.WaitGroup
}

// New creates a supervisor reading from a hotplug event channel.
func New(eventCh <-chan hotplug.Event, bus *events.Bus, spawn SpawnFunc, settle time.Duration) *Supervisor {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Supervisor{
		events: eventCh,
		bus:    bus,
		spawn:  spawn,
		settle: settle,
		logger: logging.GetLogger("hotplug"),
	}
}

// Run processes hot-plug events until the context is cancelled or the
// event channel closes. Pending settle timers are waited out on return.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-s.events:
			if !ok {
				s.logger.Info("Hotplug event stream closed")
				return nil
			}
			s.handle(ctx, ev)
		}
	}
}

func (s *Supervisor) handle(ctx context.Context, ev hotplug.Event) {
	// Parent inputN objects and mouse/js nodes fire uevents too
	if !ev.IsEventNode() {
		return
	}

	devNode := ev.DevNodePath()

	switch ev.Action {
	case hotplug.ActionAdd:
		s.logger.Info("Input device attached", "device", devNode)
		s.bus.Publish(events.DeviceAttachedEvent{
			DevNode:   devNode,
			Timestamp: time.Now().Format(time.RFC3339),
		})

		s.wg.Add(1)
		go s.settleAndSpawn(ctx, devNode)

	case hotplug.ActionRemove:
		s.logger.Info("Input device detached", "device", devNode)
		s.bus.Publish(events.DeviceDetachedEvent{
			DevNode:   devNode,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}

// settleAndSpawn waits out the settle delay, then hands the device to
// the spawn callback. The callback decides whether the node is a
// keyboard worth watching.
func (s *Supervisor) settleAndSpawn(ctx context.Context, devNode string) {
	defer s.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.settle):
	}

	s.spawn(ctx, devNode)
}
