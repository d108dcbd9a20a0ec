package window

import (
	"fmt"
	"time"
)

// Phase classifies an instant relative to the sale window.
type Phase int

const (
	// BeforeSale means the window has not opened yet.
	BeforeSale Phase = iota

	// InSale means purchases are accepted. Both window edges are inclusive.
	InSale

	// AfterSale means the window has closed and buyers may be paid out.
	AfterSale
)

// String returns the string representation of a Phase.
func (p Phase) String() string {
	switch p {
	case BeforeSale:
		return "BEFORE_SALE"
	case InSale:
		return "IN_SALE"
	case AfterSale:
		return "AFTER_SALE"
	default:
		return "UNKNOWN"
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "BEFORE_SALE":
		return BeforeSale, nil
	case "IN_SALE":
		return InSale, nil
	case "AFTER_SALE":
		return AfterSale, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, s)
	}
}

// Window is a sale interval anchored at Start and lasting Duration.
type Window struct {
	Start    time.Time
	Duration time.Duration
}

// New creates a Window, rejecting negative durations.
func New(start time.Time, d time.Duration) (Window, error) {
	if d < 0 {
		return Window{}, fmt.Errorf("%w: %s", ErrNegativeDuration, d)
	}
	return Window{Start: start, Duration: d}, nil
}

// End returns the last instant at which the sale is still open.
func (w Window) End() time.Time {
	return w.Start.Add(w.Duration)
}

// Phase reports where now falls relative to the window.
func (w Window) Phase(now time.Time) Phase {
	if now.Before(w.Start) {
		return BeforeSale
	}
	if now.After(w.End()) {
		return AfterSale
	}
	return InSale
}

// Remaining returns how long the sale stays open after now, or zero once it
// has closed. Before the window opens the full duration is returned.
func (w Window) Remaining(now time.Time) time.Duration {
	switch w.Phase(now) {
	case BeforeSale:
		return w.Duration
	case InSale:
		return w.End().Sub(now)
	default:
		return 0
	}
}
