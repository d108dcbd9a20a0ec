package sale

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/bitfsorg/libtokensale-go/ledger"
	"github.com/bitfsorg/libtokensale-go/pricing"
	"github.com/bitfsorg/libtokensale-go/shares"
	"github.com/bitfsorg/libtokensale-go/window"
)

// Owner returns the identity that initialized the contract.
func (c *Contract) Owner() (string, error) {
	var out string
	err := c.view(func(st *state) error {
		out = st.owner
		return nil
	})
	return out, err
}

// DistributedStatus reports whether shareholders have been paid.
func (c *Contract) DistributedStatus() (bool, error) {
	var out bool
	err := c.view(func(st *state) error {
		out = st.distributed
		return nil
	})
	return out, err
}

// Tokennomic returns the shareholders in registration order.
func (c *Contract) Tokennomic() ([]shares.ShareHolder, error) {
	var out []shares.ShareHolder
	err := c.view(func(st *state) error {
		out = st.registry.Holders()
		return nil
	})
	return out, err
}

// PercentForSale returns 100 minus the shareholder percentages.
func (c *Contract) PercentForSale() (decimal.Decimal, error) {
	var out decimal.Decimal
	err := c.view(func(st *state) error {
		out = st.registry.PercentForSale()
		return nil
	})
	return out, err
}

// Price returns the unit price of one token in base currency units.
func (c *Contract) Price() (*uint256.Int, error) {
	var out *uint256.Int
	err := c.view(func(st *state) error {
		var err error
		out, err = pricing.UnitPrice(st.price)
		return err
	})
	return out, err
}

// PriceStrategy returns the configured pricing strategy.
func (c *Contract) PriceStrategy() (pricing.Strategy, error) {
	var out pricing.Strategy
	err := c.view(func(st *state) error {
		out = st.price
		return nil
	})
	return out, err
}

// SaleWindow returns the sale window.
func (c *Contract) SaleWindow() (window.Window, error) {
	var out window.Window
	err := c.view(func(st *state) error {
		out = st.window
		return nil
	})
	return out, err
}

// Phase classifies now against the sale window.
func (c *Contract) Phase(now time.Time) (window.Phase, error) {
	var out window.Phase
	err := c.view(func(st *state) error {
		out = st.window.Phase(now)
		return nil
	})
	return out, err
}

// Metadata returns the token metadata held by the ledger.
func (c *Contract) Metadata() (ledger.Metadata, error) {
	var out ledger.Metadata
	err := c.view(func(*state) error {
		out = c.ledger.Metadata()
		return nil
	})
	return out, err
}

// TotalSupply returns the ledger's total supply.
func (c *Contract) TotalSupply() (*uint256.Int, error) {
	var out *uint256.Int
	err := c.view(func(*state) error {
		out = c.ledger.TotalSupply()
		return nil
	})
	return out, err
}

// BalanceOf returns the ledger balance of accountID.
func (c *Contract) BalanceOf(accountID string) (*uint256.Int, error) {
	var out *uint256.Int
	err := c.view(func(*state) error {
		out = c.ledger.BalanceOf(accountID)
		return nil
	})
	return out, err
}
