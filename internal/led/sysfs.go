package led

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// sysfs implements Controller over the Linux sysfs LED interface.
// Each write is an absolute brightness value, so repeating a write is
// harmless and concurrent writers settle on the last one.
type sysfs struct {
	root   string
	logger *slog.Logger
}

// newSysfs creates a sysfs LED controller rooted at /sys/class/leds.
func newSysfs(logger *slog.Logger) *sysfs {
	return newSysfsAt(sysfsLEDPath, logger)
}

// newSysfsAt creates a controller over an alternate root. Used in tests.
func newSysfsAt(root string, logger *slog.Logger) *sysfs {
	return &sysfs{root: root, logger: logger}
}

// Read returns the current indicator state. Any failure to read or
// parse the brightness file reads as Unlit, so a questionable state is
// corrected rather than trusted.
func (s *sysfs) Read(h Handle) State {
	data, err := os.ReadFile(filepath.Join(s.root, h.Name, "brightness"))
	if err != nil {
		s.logger.Debug("Brightness read failed, treating as unlit",
			"led", h.Name,
			"error", err)
		return Unlit
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		s.logger.Debug("Brightness value unparseable, treating as unlit",
			"led", h.Name,
			"raw", string(data))
		return Unlit
	}

	return value > 0
}

// Write sets the indicator brightness fully on or off.
func (s *sysfs) Write(h Handle, state State) error {
	value := "0"
	if state == Lit {
		value = "1"
	}

	brightnessPath := filepath.Join(s.root, h.Name, "brightness")
	if err := os.WriteFile(brightnessPath, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}

	return nil
}
