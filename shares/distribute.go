package shares

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// PercentOf returns floor(percent * total / 100). percent must lie in
// [0,100], so the result never exceeds total.
func PercentOf(percent decimal.Decimal, total *uint256.Int) (*uint256.Int, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPercent, percent)
	}
	scaled := decimal.NewFromBigInt(total.ToBig(), 0).Mul(percent).Shift(-2).Floor()
	amount, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %s%% of %s", ErrAllocationExceedsSupply, percent, total.Dec())
	}
	return amount, nil
}

// Allocations computes each holder's floor share of total, in registration
// order. Rounding dust stays with the issuer.
func (r *Registry) Allocations(total *uint256.Int) ([]Allocation, error) {
	out := make([]Allocation, len(r.holders))
	for i, h := range r.holders {
		amount, err := PercentOf(h.PercentOfToken, total)
		if err != nil {
			return nil, err
		}
		out[i] = Allocation{AccountID: h.AccountID, Amount: amount}
	}
	if err := ValidateAllocations(out, total); err != nil {
		return nil, err
	}
	return out, nil
}

// SaleSupply returns the number of tokens reserved for the public sale:
// floor(total * PercentForSale / 100).
func (r *Registry) SaleSupply(total *uint256.Int) (*uint256.Int, error) {
	return PercentOf(r.PercentForSale(), total)
}

// ValidateAllocations checks that the payouts sum to at most total.
func ValidateAllocations(allocs []Allocation, total *uint256.Int) error {
	sum := new(uint256.Int)
	for _, a := range allocs {
		var overflow bool
		sum, overflow = sum.AddOverflow(sum, a.Amount)
		if overflow {
			return fmt.Errorf("%w: sum overflows", ErrAllocationExceedsSupply)
		}
	}
	if sum.Gt(total) {
		return fmt.Errorf("%w: allocated %s of %s", ErrAllocationExceedsSupply, sum.Dec(), total.Dec())
	}
	return nil
}
