package sale

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libtokensale-go/ledger"
	"github.com/bitfsorg/libtokensale-go/pricing"
	"github.com/bitfsorg/libtokensale-go/shares"
)

const owner = "owner"

var (
	saleStart    = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	saleDuration = 72 * time.Hour
	inSale       = saleStart.Add(time.Hour)
	afterSale    = saleStart.Add(saleDuration + time.Second)
)

func holder(id, pct string) shares.ShareHolder {
	return shares.ShareHolder{AccountID: id, PercentOfToken: decimal.RequireFromString(pct)}
}

// exampleParams is the worked example: 1,000,000 tokens, alice 10%, bob 5%,
// one currency unit per token.
func exampleParams() Params {
	return Params{
		Metadata:     ledger.Metadata{Name: "Example Token", Symbol: "EXT", Icon: "data:image/svg+xml,<svg/>", Decimals: 0},
		TotalSupply:  uint256.NewInt(1_000_000),
		SaleDuration: saleDuration,
		Shareholders: []shares.ShareHolder{holder("alice", "10"), holder("bob", "5")},
		Price:        pricing.Fixed{Units: 1},
	}
}

func newContract(t *testing.T, p Params, opts ...Option) *Contract {
	t.Helper()
	c, err := New(Call{Caller: owner, Now: saleStart}, p, opts...)
	require.NoError(t, err)
	return c
}

func units(t *testing.T, n uint64) *uint256.Int {
	t.Helper()
	v, err := pricing.Units(n)
	require.NoError(t, err)
	return v
}

func deposit(t *testing.T, c *Contract, who string, n uint64) *Purchase {
	t.Helper()
	p, err := c.DepositForSale(Call{Caller: who, Now: inSale, Value: units(t, n)})
	require.NoError(t, err)
	return p
}

func balance(t *testing.T, c *Contract, id string) uint64 {
	t.Helper()
	b, err := c.BalanceOf(id)
	require.NoError(t, err)
	return b.Uint64()
}

func ledgerSum(c *Contract) *uint256.Int {
	sum := new(uint256.Int)
	for _, a := range c.Ledger().Accounts() {
		sum.Add(sum, a.Balance)
	}
	return sum
}
