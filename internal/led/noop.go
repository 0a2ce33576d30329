package led

import "log/slog"

// noop implements Controller as a no-op for systems without LED support.
type noop struct {
	logger *slog.Logger
}

// newNoop creates a new no-op LED controller.
func newNoop(logger *slog.Logger) *noop {
	return &noop{
		logger: logger,
	}
}

// Read always reports Lit so nothing tries to correct a LED that does
// not exist.
func (n *noop) Read(_ Handle) State {
	return Lit
}

// Write logs the request but performs no actual LED control.
func (n *noop) Write(h Handle, state State) error {
	n.logger.Debug("LED control not available (no-op)",
		"led", h.Name,
		"state", state.String())
	return nil
}
