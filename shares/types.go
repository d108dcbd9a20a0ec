package shares

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/bitfsorg/libtokensale-go/identity"
)

// ShareHolder is a pre-assigned, non-sale allocation of the token supply.
type ShareHolder struct {
	AccountID      string          `json:"account_id"`
	PercentOfToken decimal.Decimal `json:"percent_of_token"`
}

// String returns the "<account> <percent>" form accepted by ParseShareHolder.
func (h ShareHolder) String() string {
	return h.AccountID + " " + h.PercentOfToken.String()
}

// Allocation is a single shareholder payout in token base units.
type Allocation struct {
	AccountID string
	Amount    *uint256.Int
}

var hundred = decimal.NewFromInt(100)

// ParseShareHolder decodes "<account> <percent>"; a ':' separator is also
// accepted.
func ParseShareHolder(s string) (ShareHolder, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ":", " "))
	if len(fields) != 2 {
		return ShareHolder{}, fmt.Errorf("%w: %q", ErrInvalidShareholder, s)
	}
	pct, err := decimal.NewFromString(fields[1])
	if err != nil {
		return ShareHolder{}, fmt.Errorf("%w: %q: %w", ErrInvalidShareholder, s, err)
	}
	h := ShareHolder{AccountID: fields[0], PercentOfToken: pct}
	if err := h.Validate(); err != nil {
		return ShareHolder{}, err
	}
	return h, nil
}

// Validate checks the identity and that the percentage lies in [0,100].
func (h ShareHolder) Validate() error {
	if err := identity.ValidateAccountID(h.AccountID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidShareholder, err)
	}
	if h.PercentOfToken.IsNegative() || h.PercentOfToken.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s has %s", ErrInvalidPercent, h.AccountID, h.PercentOfToken)
	}
	return nil
}
