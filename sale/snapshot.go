package sale

import (
	"fmt"
	"time"

	"github.com/google/btree"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bitfsorg/libtokensale-go/ledger"
	"github.com/bitfsorg/libtokensale-go/pricing"
	"github.com/bitfsorg/libtokensale-go/shares"
	"github.com/bitfsorg/libtokensale-go/window"
)

// Entry is the persisted form of a whitelist record.
type Entry struct {
	AccountID string
	Purchased *uint256.Int
	Owed      *uint256.Int
	Paid      bool
}

// Snapshot is the complete persisted state of a contract and its ledger.
type Snapshot struct {
	Owner                  string
	Price                  string
	Shareholders           []shares.ShareHolder
	SaleStart              time.Time
	SaleDuration           time.Duration
	ShareholderDistributed bool
	Whitelist              []Entry
	Raised                 *uint256.Int
	Sold                   *uint256.Int
	Ledger                 ledger.Snapshot
}

// Snapshot captures the contract and ledger state.
func (c *Contract) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := c.view(func(st *state) error {
		snap = Snapshot{
			Owner:                  st.owner,
			Price:                  st.price.String(),
			Shareholders:           st.registry.Holders(),
			SaleStart:              st.window.Start,
			SaleDuration:           st.window.Duration,
			ShareholderDistributed: st.distributed,
			Whitelist:              make([]Entry, 0, st.whitelist.Len()),
			Raised:                 st.raised.Clone(),
			Sold:                   st.sold.Clone(),
			Ledger:                 c.ledger.Snapshot(),
		}
		st.whitelist.Ascend(func(e entry) bool {
			snap.Whitelist = append(snap.Whitelist, Entry{
				AccountID: e.id,
				Purchased: e.purchased.Clone(),
				Owed:      e.owed.Clone(),
				Paid:      e.paid,
			})
			return true
		})
		return nil
	})
	return snap, err
}

// Restore rebuilds a contract from a snapshot. The ledger is rebuilt from
// snap.Ledger unless WithLedger supplies one, in which case it is
// overwritten with the snapshot's ledger state.
func Restore(snap Snapshot, opts ...Option) (*Contract, error) {
	c := &Contract{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	price, err := pricing.Parse(snap.Price)
	if err != nil {
		return nil, fmt.Errorf("sale: restore price: %w", err)
	}
	registry, err := shares.NewRegistry(snap.Shareholders)
	if err != nil {
		return nil, fmt.Errorf("sale: restore shareholders: %w", err)
	}
	w, err := window.New(snap.SaleStart, snap.SaleDuration)
	if err != nil {
		return nil, fmt.Errorf("sale: restore window: %w", err)
	}

	if c.ledger == nil {
		l, err := ledger.FromSnapshot(snap.Ledger)
		if err != nil {
			return nil, fmt.Errorf("sale: restore ledger: %w", err)
		}
		c.ledger = l
	} else if err := c.ledger.Restore(snap.Ledger); err != nil {
		return nil, fmt.Errorf("sale: restore ledger: %w", err)
	}
	if !c.ledger.IsRegistered(snap.Owner) {
		return nil, fmt.Errorf("sale: restore: owner %q has no ledger account", snap.Owner)
	}

	st := &state{
		owner:       snap.Owner,
		price:       price,
		registry:    registry,
		window:      w,
		distributed: snap.ShareholderDistributed,
		whitelist:   btree.NewG(whitelistTreeDegree, lessEntry),
	}
	for _, e := range snap.Whitelist {
		rec := entry{id: e.AccountID, paid: e.Paid}
		if e.Purchased != nil {
			rec.purchased = *e.Purchased
		}
		if e.Owed != nil {
			rec.owed = *e.Owed
		}
		st.whitelist.ReplaceOrInsert(rec)
	}
	if snap.Raised != nil {
		st.raised = *snap.Raised
	}
	if snap.Sold != nil {
		st.sold = *snap.Sold
	}

	c.ledger.SetHooks(c)
	c.st = st
	return c, nil
}
