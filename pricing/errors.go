package pricing

import "errors"

var (
	// ErrZeroPrice indicates a fixed price of zero currency units.
	ErrZeroPrice = errors.New("pricing: fixed price must be at least one currency unit")

	// ErrInvalidRatio indicates a dynamic ratio that is not strictly positive.
	ErrInvalidRatio = errors.New("pricing: dynamic ratio must be positive")

	// ErrDynamicPriceUnresolved indicates the dynamic pricing formula has not
	// been defined, so no unit price can be produced.
	ErrDynamicPriceUnresolved = errors.New("pricing: dynamic price formula is unresolved")

	// ErrUnknownStrategy indicates an unrecognised pricing strategy.
	ErrUnknownStrategy = errors.New("pricing: unknown pricing strategy")

	// ErrInvalidStrategy indicates a strategy string that cannot be parsed.
	ErrInvalidStrategy = errors.New("pricing: invalid strategy string")

	// ErrOverflow indicates a currency amount exceeded 256 bits.
	ErrOverflow = errors.New("pricing: currency amount overflow")
)
