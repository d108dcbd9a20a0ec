package sale

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bitfsorg/libtokensale-go/identity"
	"github.com/bitfsorg/libtokensale-go/pricing"
	"github.com/bitfsorg/libtokensale-go/window"
)

// Purchase is the outcome of an accepted deposit.
type Purchase struct {
	AccountID string
	Tokens    *uint256.Int // tokens credited by this deposit
	Change    *uint256.Int // value below the price of one more token, kept by the sale
	Owed      *uint256.Int // participant's pending credit after this deposit
}

// WhitelistEntry is a participant's pending, not-yet-paid credit.
type WhitelistEntry struct {
	AccountID string
	Amount    *uint256.Int
}

// DepositForSale converts call.Value into purchase credit for call.Caller at
// the current unit price. It is only accepted while the sale window is open.
//
// Tokens are the floor of value / unit price. A deposit that buys nothing
// fails with ErrDepositTooSmall, and a deposit that would take sold tokens
// past the sale supply fails with ErrSaleSupplyExhausted.
func (c *Contract) DepositForSale(call Call) (*Purchase, error) {
	var p *Purchase
	err := c.transact("deposit_for_sale", func(st *state) error {
		var err error
		p, err = c.deposit(st, call)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("sale deposit",
		zap.String("account", p.AccountID),
		zap.String("value", call.value().Dec()),
		zap.String("tokens", p.Tokens.Dec()),
		zap.String("owed", p.Owed.Dec()),
	)
	return p, nil
}

func (c *Contract) deposit(st *state, call Call) (*Purchase, error) {
	if err := identity.ValidateAccountID(call.Caller); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCaller, err)
	}
	if phase := st.window.Phase(call.Now); phase != window.InSale {
		return nil, fmt.Errorf("%w: phase is %s", ErrNotSaleTime, phase)
	}

	value := call.value()
	tokens, change, err := pricing.Quote(st.price, value)
	if err != nil {
		return nil, err
	}
	if tokens.IsZero() {
		return nil, fmt.Errorf("%w: attached %s", ErrDepositTooSmall, value.Dec())
	}

	saleSupply, err := st.registry.SaleSupply(c.ledger.TotalSupply())
	if err != nil {
		return nil, err
	}
	sold, overflow := new(uint256.Int).AddOverflow(&st.sold, tokens)
	if overflow || sold.Gt(saleSupply) {
		return nil, fmt.Errorf("%w: %s remaining, %s requested",
			ErrSaleSupplyExhausted, remaining(saleSupply, &st.sold).Dec(), tokens.Dec())
	}
	raised, overflow := new(uint256.Int).AddOverflow(&st.raised, value)
	if overflow {
		return nil, fmt.Errorf("%w: raised value", ErrOverflow)
	}

	e, _ := st.whitelist.Get(entry{id: call.Caller})
	e.id = call.Caller
	if _, overflow := e.purchased.AddOverflow(&e.purchased, tokens); overflow {
		return nil, fmt.Errorf("%w: purchased tokens", ErrOverflow)
	}
	if _, overflow := e.owed.AddOverflow(&e.owed, tokens); overflow {
		return nil, fmt.Errorf("%w: owed tokens", ErrOverflow)
	}
	e.paid = false
	st.whitelist.ReplaceOrInsert(e)
	st.sold = *sold
	st.raised = *raised

	return &Purchase{
		AccountID: call.Caller,
		Tokens:    tokens,
		Change:    change,
		Owed:      e.owed.Clone(),
	}, nil
}

// remaining returns supply - sold, or zero when sold exceeds supply.
func remaining(supply, sold *uint256.Int) *uint256.Int {
	if sold.Gt(supply) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(supply, sold)
}

// SoldTokens returns the total tokens purchased during the sale, including
// credits already paid out.
func (c *Contract) SoldTokens() (*uint256.Int, error) {
	var out *uint256.Int
	err := c.view(func(st *state) error {
		out = st.sold.Clone()
		return nil
	})
	return out, err
}

// RemainingTokens returns the sale supply not yet purchased.
func (c *Contract) RemainingTokens() (*uint256.Int, error) {
	var out *uint256.Int
	err := c.view(func(st *state) error {
		supply, err := st.registry.SaleSupply(c.ledger.TotalSupply())
		if err != nil {
			return err
		}
		out = remaining(supply, &st.sold)
		return nil
	})
	return out, err
}

// SaleSupply returns the number of tokens reserved for the public sale.
func (c *Contract) SaleSupply() (*uint256.Int, error) {
	var out *uint256.Int
	err := c.view(func(st *state) error {
		var err error
		out, err = st.registry.SaleSupply(c.ledger.TotalSupply())
		return err
	})
	return out, err
}

// MyTokens returns the pending credit of accountID, zero if it never bought.
func (c *Contract) MyTokens(accountID string) (*uint256.Int, error) {
	out := new(uint256.Int)
	err := c.view(func(st *state) error {
		if e, ok := st.whitelist.Get(entry{id: accountID}); ok {
			out = e.owed.Clone()
		}
		return nil
	})
	return out, err
}

// Whitelist returns every participant's pending credit in account order.
// Paid-out participants remain listed with a zero amount.
func (c *Contract) Whitelist() ([]WhitelistEntry, error) {
	var out []WhitelistEntry
	err := c.view(func(st *state) error {
		out = make([]WhitelistEntry, 0, st.whitelist.Len())
		st.whitelist.Ascend(func(e entry) bool {
			out = append(out, WhitelistEntry{AccountID: e.id, Amount: e.owed.Clone()})
			return true
		})
		return nil
	})
	return out, err
}

// Raised returns the total native value accepted by the sale.
func (c *Contract) Raised() (*uint256.Int, error) {
	var out *uint256.Int
	err := c.view(func(st *state) error {
		out = st.raised.Clone()
		return nil
	})
	return out, err
}
