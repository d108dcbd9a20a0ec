package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// currencyUnit is the number of base units in one unit of native currency
// (10^24, yocto-denominated).
var currencyUnit = uint256.MustFromDecimal("1000000000000000000000000")

// CurrencyUnit returns a fresh copy of the base-unit scale of one native
// currency unit.
func CurrencyUnit() *uint256.Int {
	return currencyUnit.Clone()
}

// Units converts whole currency units to base units.
func Units(n uint64) (*uint256.Int, error) {
	v, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(n), currencyUnit)
	if overflow {
		return nil, fmt.Errorf("%w: %d units", ErrOverflow, n)
	}
	return v, nil
}

// Strategy is the sum type of supported pricing strategies: Fixed or Dynamic.
type Strategy interface {
	fmt.Stringer
	isStrategy()
}

// Fixed prices every token at Units whole currency units.
type Fixed struct {
	Units uint8
}

// Dynamic carries a ratio for a price curve that has not been specified yet.
type Dynamic struct {
	Ratio decimal.Decimal
}

func (Fixed) isStrategy()   {}
func (Dynamic) isStrategy() {}

// String returns the "fixed:<units>" form accepted by Parse.
func (f Fixed) String() string {
	return "fixed:" + strconv.FormatUint(uint64(f.Units), 10)
}

// String returns the "dynamic:<ratio>" form accepted by Parse.
func (d Dynamic) String() string {
	return "dynamic:" + d.Ratio.String()
}

// Validate checks that a strategy is usable for a sale.
func Validate(s Strategy) error {
	switch v := s.(type) {
	case Fixed:
		if v.Units == 0 {
			return ErrZeroPrice
		}
		return nil
	case Dynamic:
		if !v.Ratio.IsPositive() {
			return fmt.Errorf("%w: %s", ErrInvalidRatio, v.Ratio)
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownStrategy, s)
	}
}

// UnitPrice returns the price of one token in base currency units.
//
// The Dynamic variant has no defined formula and always fails with
// ErrDynamicPriceUnresolved.
func UnitPrice(s Strategy) (*uint256.Int, error) {
	switch v := s.(type) {
	case Fixed:
		if v.Units == 0 {
			return nil, ErrZeroPrice
		}
		return Units(uint64(v.Units))
	case Dynamic:
		return nil, ErrDynamicPriceUnresolved
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownStrategy, s)
	}
}

// Quote converts an attached currency value into whole tokens at the
// strategy's unit price. Division truncates toward zero; the remainder is
// returned as change.
func Quote(s Strategy, value *uint256.Int) (tokens, change *uint256.Int, err error) {
	price, err := UnitPrice(s)
	if err != nil {
		return nil, nil, err
	}
	tokens, change = new(uint256.Int).DivMod(value, price, new(uint256.Int))
	return tokens, change, nil
}

// Parse decodes "fixed:<units>" or "dynamic:<ratio>".
func Parse(s string) (Strategy, error) {
	kind, arg, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
	var st Strategy
	switch strings.ToLower(kind) {
	case "fixed":
		n, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidStrategy, s, err)
		}
		st = Fixed{Units: uint8(n)}
	case "dynamic":
		r, err := decimal.NewFromString(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidStrategy, s, err)
		}
		st = Dynamic{Ratio: r}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
	if err := Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}
