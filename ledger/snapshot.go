package ledger

import (
	"fmt"

	"github.com/google/btree"
	"github.com/holiman/uint256"
)

// Snapshot is a detached copy of the full ledger state.
type Snapshot struct {
	Metadata    Metadata
	Accounts    []Account
	TotalSupply *uint256.Int
}

// Snapshot captures the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Metadata:    l.metadata,
		Accounts:    l.accountsLocked(),
		TotalSupply: l.totalSupply.Clone(),
	}
}

// Restore replaces the ledger state with s. Hooks are kept.
func (l *Ledger) Restore(s Snapshot) error {
	tree, supply, err := buildTree(s)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts = tree
	l.totalSupply = *supply
	l.metadata = s.Metadata
	return nil
}

// FromSnapshot builds a new ledger from s.
func FromSnapshot(s Snapshot) (*Ledger, error) {
	if err := s.Metadata.Validate(); err != nil {
		return nil, err
	}
	tree, supply, err := buildTree(s)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		accounts:    tree,
		totalSupply: *supply,
		metadata:    s.Metadata,
	}, nil
}

func buildTree(s Snapshot) (*btree.BTreeG[entry], *uint256.Int, error) {
	tree := btree.NewG(defaultTreeDegree, lessEntry)
	sum := new(uint256.Int)
	for _, a := range s.Accounts {
		e := entry{id: a.ID}
		if a.Balance != nil {
			e.balance = *a.Balance
		}
		if _, overflow := sum.AddOverflow(sum, &e.balance); overflow {
			return nil, nil, fmt.Errorf("%w: snapshot balances", ErrOverflow)
		}
		tree.ReplaceOrInsert(e)
	}
	supply := new(uint256.Int)
	if s.TotalSupply != nil {
		supply.Set(s.TotalSupply)
	}
	if !sum.Eq(supply) {
		return nil, nil, fmt.Errorf("%w: sum %s, supply %s", ErrSupplyMismatch, sum.Dec(), supply.Dec())
	}
	return tree, supply, nil
}
