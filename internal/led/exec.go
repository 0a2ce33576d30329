package led

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// commandRunner runs an external command and returns its combined output.
// Injectable for tests.
type commandRunner func(name string, args ...string) ([]byte, error)

func defaultRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// execctl implements Controller by shelling out to brightnessctl. Slower
// than sysfs but works on systems where the daemon lacks write access to
// /sys/class/leds and brightnessctl carries the needed setuid/udev rules.
type execctl struct {
	command string
	run     commandRunner
	logger  *slog.Logger
}

// newExec creates a brightnessctl-backed controller.
func newExec(logger *slog.Logger) *execctl {
	return &execctl{
		command: "brightnessctl",
		run:     defaultRunner,
		logger:  logger,
	}
}

func (e *execctl) Read(h Handle) State {
	out, err := e.run(e.command, "--device", h.Name, "get")
	if err != nil {
		e.logger.Debug("brightnessctl get failed, treating as unlit",
			"led", h.Name,
			"error", err)
		return Unlit
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		e.logger.Debug("brightnessctl output unparseable, treating as unlit",
			"led", h.Name,
			"raw", string(out))
		return Unlit
	}

	return value > 0
}

func (e *execctl) Write(h Handle, state State) error {
	value := "0"
	if state == Lit {
		value = "1"
	}

	if out, err := e.run(e.command, "--device", h.Name, "set", value); err != nil {
		return fmt.Errorf("brightnessctl set failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	return nil
}
