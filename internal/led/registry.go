package led

import (
	"fmt"
	"os"
	"strings"
)

const sysfsLEDPath = "/sys/class/leds"

// Registry enumerates the system LED class hierarchy and resolves
// indicator names to handles.
type Registry struct {
	root string
}

// NewRegistry creates a registry over /sys/class/leds.
func NewRegistry() *Registry {
	return &Registry{root: sysfsLEDPath}
}

// NewRegistryAt creates a registry over an alternate root. Used in tests.
func NewRegistryAt(root string) *Registry {
	return &Registry{root: root}
}

// Resolve scans the LED hierarchy for an entry matching the indicator
// naming convention. Keyboard indicator LEDs are registered per input
// device as "<device>::<indicator>" (e.g. "input3::scrolllock"), so a
// suffix match on "::<indicator>" finds the first keyboard carrying the
// indicator; a bare exact match is accepted too. Returns ErrNotFound
// when nothing matches.
func (r *Registry) Resolve(indicator string) (Handle, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return Handle{}, fmt.Errorf("failed to read LED registry %s: %w", r.root, err)
	}

	suffix := "::" + indicator
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, suffix) || name == indicator {
			return Handle{Name: name}, nil
		}
	}

	return Handle{}, fmt.Errorf("indicator %q: %w", indicator, ErrNotFound)
}

// List returns all LED names currently registered. Used by the status
// subcommand.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read LED registry %s: %w", r.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}
