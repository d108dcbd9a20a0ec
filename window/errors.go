package window

import "errors"

var (
	// ErrNegativeDuration indicates a sale window with a negative length.
	ErrNegativeDuration = errors.New("window: negative sale duration")

	// ErrUnknownPhase indicates a phase name that cannot be parsed.
	ErrUnknownPhase = errors.New("window: unknown phase")
)
