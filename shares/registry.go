package shares

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Registry is the immutable, insertion-ordered set of shareholders fixed at
// sale initialization.
type Registry struct {
	holders []ShareHolder
	total   decimal.Decimal
}

// NewRegistry validates every holder and the combined percentage.
// An empty list is valid and leaves the full supply for sale.
func NewRegistry(list []ShareHolder) (*Registry, error) {
	seen := make(map[string]struct{}, len(list))
	total := decimal.Zero
	holders := make([]ShareHolder, 0, len(list))

	for _, h := range list {
		if err := h.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[h.AccountID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShareholder, h.AccountID)
		}
		seen[h.AccountID] = struct{}{}
		total = total.Add(h.PercentOfToken)
		holders = append(holders, h)
	}

	if total.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: total %s%%", ErrInvalidAllocation, total)
	}
	return &Registry{holders: holders, total: total}, nil
}

// Holders returns a copy of the shareholders in registration order.
func (r *Registry) Holders() []ShareHolder {
	out := make([]ShareHolder, len(r.holders))
	copy(out, r.holders)
	return out
}

// Len returns the number of shareholders.
func (r *Registry) Len() int { return len(r.holders) }

// TotalPercent returns the sum of all shareholder percentages.
func (r *Registry) TotalPercent() decimal.Decimal { return r.total }

// PercentForSale returns 100 minus the shareholder total, always in [0,100].
func (r *Registry) PercentForSale() decimal.Decimal {
	return hundred.Sub(r.total)
}

// Find returns the shareholder with the given identity.
func (r *Registry) Find(accountID string) (ShareHolder, bool) {
	for _, h := range r.holders {
		if h.AccountID == accountID {
			return h, true
		}
	}
	return ShareHolder{}, false
}
