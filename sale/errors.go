package sale

import (
	"errors"

	"github.com/bitfsorg/libtokensale-go/pricing"
	"github.com/bitfsorg/libtokensale-go/shares"
)

var (
	// ErrAlreadyInitialized indicates the contract state already exists.
	ErrAlreadyInitialized = errors.New("sale: already initialized")

	// ErrNotInitialized indicates use of a Contract that was not built by New
	// or Restore.
	ErrNotInitialized = errors.New("sale: contract should be initialized before usage")

	// ErrNotOwner indicates a privileged call from someone other than the owner.
	ErrNotOwner = errors.New("sale: only the contract owner can call this function")

	// ErrNotSaleTime indicates a deposit outside the sale window.
	ErrNotSaleTime = errors.New("sale: not time for sale")

	// ErrNotDistributionTime indicates a buyer payout before the window closed.
	ErrNotDistributionTime = errors.New("sale: not time for distribution")

	// ErrAlreadyDistributed indicates a second shareholder distribution.
	ErrAlreadyDistributed = errors.New("sale: shareholders already distributed")

	// ErrDepositTooSmall indicates a deposit that buys no whole token.
	ErrDepositTooSmall = errors.New("sale: deposit is below the price of one token")

	// ErrSaleSupplyExhausted indicates a purchase beyond the supply reserved
	// for the sale.
	ErrSaleSupplyExhausted = errors.New("sale: sale supply exhausted")

	// ErrOverflow indicates balance arithmetic exceeded 256 bits.
	ErrOverflow = errors.New("sale: arithmetic overflow")

	// ErrInvalidCaller indicates a caller identity that fails validation.
	ErrInvalidCaller = errors.New("sale: invalid caller")

	// ErrInvalidParams indicates unusable initialization parameters.
	ErrInvalidParams = errors.New("sale: invalid parameters")

	// ErrInvalidAllocation indicates shareholder percentages summing past 100.
	ErrInvalidAllocation = shares.ErrInvalidAllocation

	// ErrDynamicPriceUnresolved indicates a sale priced with the unresolved
	// dynamic strategy.
	ErrDynamicPriceUnresolved = pricing.ErrDynamicPriceUnresolved
)
