package sale

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bitfsorg/libtokensale-go/window"
)

// Payout is one ledger transfer issued by a distribution.
type Payout struct {
	AccountID  string
	Amount     *uint256.Int
	Registered bool // the recipient's ledger account was created by this payout
}

// payTo registers to if needed and moves amount from the owner. Zero amounts
// and payouts to the owner itself move nothing.
func (c *Contract) payTo(st *state, to string, amount *uint256.Int) (Payout, error) {
	p := Payout{AccountID: to, Amount: amount.Clone()}
	p.Registered = c.ledger.RegisterAccount(to)
	if amount.IsZero() || to == st.owner {
		return p, nil
	}
	if err := c.ledger.Transfer(st.owner, to, amount); err != nil {
		return Payout{}, fmt.Errorf("sale: pay %s to %s: %w", amount.Dec(), to, err)
	}
	return p, nil
}

// DistributeToShareholders pays every shareholder floor(percent *
// total_supply / 100) from the owner's balance. Owner only; succeeds once,
// later calls fail with ErrAlreadyDistributed.
func (c *Contract) DistributeToShareholders(call Call) ([]Payout, error) {
	var payouts []Payout
	err := c.transact("distribute_to_shareholders", func(st *state) error {
		if err := st.assertOwner(call.Caller); err != nil {
			return err
		}
		if st.distributed {
			return ErrAlreadyDistributed
		}

		allocs, err := st.registry.Allocations(c.ledger.TotalSupply())
		if err != nil {
			return err
		}
		payouts = make([]Payout, 0, len(allocs))
		for _, a := range allocs {
			p, err := c.payTo(st, a.AccountID, a.Amount)
			if err != nil {
				return err
			}
			payouts = append(payouts, p)
		}
		st.distributed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logPayouts("shareholders distributed", payouts)
	return payouts, nil
}

// DistributeToBuyers pays every participant's pending credit from the
// owner's balance and clears it. Owner only, and only after the sale window
// has closed. Already-paid participants receive nothing on later calls.
func (c *Contract) DistributeToBuyers(call Call) ([]Payout, error) {
	var payouts []Payout
	err := c.transact("distribute_to_buyers", func(st *state) error {
		if err := st.assertOwner(call.Caller); err != nil {
			return err
		}
		if phase := st.window.Phase(call.Now); phase != window.AfterSale {
			return fmt.Errorf("%w: phase is %s", ErrNotDistributionTime, phase)
		}

		var pending []entry
		st.whitelist.Ascend(func(e entry) bool {
			if !e.owed.IsZero() {
				pending = append(pending, e)
			}
			return true
		})

		payouts = make([]Payout, 0, len(pending))
		for _, e := range pending {
			p, err := c.payTo(st, e.id, &e.owed)
			if err != nil {
				return err
			}
			payouts = append(payouts, p)
			e.owed.Clear()
			e.paid = true
			st.whitelist.ReplaceOrInsert(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logPayouts("buyers distributed", payouts)
	return payouts, nil
}

func (c *Contract) logPayouts(msg string, payouts []Payout) {
	total := new(uint256.Int)
	for _, p := range payouts {
		total.Add(total, p.Amount)
		c.log.Debug("payout",
			zap.String("account", p.AccountID),
			zap.String("amount", p.Amount.Dec()),
			zap.Bool("registered", p.Registered),
		)
	}
	c.log.Info(msg, zap.Int("recipients", len(payouts)), zap.String("total", total.Dec()))
}
