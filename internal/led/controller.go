package led

import "errors"

// ErrNotFound is returned when no LED matches the target indicator name.
var ErrNotFound = errors.New("no matching LED found")

// State is the on/off state of an indicator.
type State bool

// Indicator states.
const (
	Lit   State = true
	Unlit State = false
)

// String returns a human-readable state name.
func (s State) String() string {
	if s {
		return "lit"
	}
	return "unlit"
}

// Handle identifies one physical indicator by its LED class name
// (e.g. "input3::scrolllock"). Immutable once resolved.
type Handle struct {
	Name string
}

// Controller abstracts read/write access to a physical indicator.
// Write is the only mutator of physical state; every write sets an
// absolute value, so concurrent writers converge to the last write.
type Controller interface {
	// Read queries the current indicator state. Any query failure reads
	// as Unlit so callers correct rather than silently do nothing.
	Read(h Handle) State

	// Write sets the indicator fully on or off. Failures are returned
	// for logging; the next event or pulse tick acts as the retry.
	Write(h Handle, s State) error
}
