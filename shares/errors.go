package shares

import "errors"

var (
	// ErrInvalidAllocation indicates shareholder percentages summing past 100.
	ErrInvalidAllocation = errors.New("shares: shareholder percentages exceed 100")

	// ErrInvalidPercent indicates a single percentage outside [0,100].
	ErrInvalidPercent = errors.New("shares: percent of token must be within [0,100]")

	// ErrDuplicateShareholder indicates the same identity listed twice.
	ErrDuplicateShareholder = errors.New("shares: duplicate shareholder")

	// ErrInvalidShareholder indicates a shareholder entry that cannot be parsed
	// or carries an invalid identity.
	ErrInvalidShareholder = errors.New("shares: invalid shareholder entry")

	// ErrAllocationExceedsSupply indicates computed payouts summing past the
	// total supply.
	ErrAllocationExceedsSupply = errors.New("shares: allocations exceed total supply")
)
