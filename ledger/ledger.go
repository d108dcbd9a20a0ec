// Package ledger is an in-memory fungible token ledger: account
// registration, minting, atomic transfers, burns and account closure.
//
// Every mutation keeps the sum of all balances equal to the total supply.
package ledger

import (
	"fmt"
	"sync"

	"github.com/google/btree"
	"github.com/holiman/uint256"
)

const defaultTreeDegree = 16

// Hooks receives notifications for account closure and token burns.
// Implementations must not call back into the ledger.
type Hooks interface {
	OnAccountClosed(accountID string, balance *uint256.Int)
	OnTokensBurned(accountID string, amount *uint256.Int)
}

// Account is a registered account and its balance.
type Account struct {
	ID      string
	Balance *uint256.Int
}

// entry is the tree item. Balances are held by value so that cloned trees
// never share mutable state.
type entry struct {
	id      string
	balance uint256.Int
}

func lessEntry(a, b entry) bool { return a.id < b.id }

// Ledger holds balances ordered by account id.
type Ledger struct {
	mu          sync.RWMutex
	accounts    *btree.BTreeG[entry]
	totalSupply uint256.Int
	metadata    Metadata
	hooks       Hooks
}

// New creates an empty ledger for the token described by meta.
func New(meta Metadata) (*Ledger, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	meta.Spec = MetadataSpec
	return &Ledger{
		accounts: btree.NewG(defaultTreeDegree, lessEntry),
		metadata: meta,
	}, nil
}

// SetHooks installs the closure and burn notification receiver.
func (l *Ledger) SetHooks(h Hooks) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = h
}

// Metadata returns the token metadata.
func (l *Ledger) Metadata() Metadata {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.metadata
}

// RegisterAccount adds id with a zero balance. It reports whether the
// account was newly created; registering an existing account is a no-op.
func (l *Ledger) RegisterAccount(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts.Get(entry{id: id}); ok {
		return false
	}
	l.accounts.ReplaceOrInsert(entry{id: id})
	return true
}

// IsRegistered reports whether id has an account.
func (l *Ledger) IsRegistered(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.accounts.Get(entry{id: id})
	return ok
}

// Deposit mints amount into id, increasing the total supply.
func (l *Ledger) Deposit(id string, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.accounts.Get(entry{id: id})
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotRegistered, id)
	}
	var supply uint256.Int
	if _, overflow := supply.AddOverflow(&l.totalSupply, amount); overflow {
		return fmt.Errorf("%w: total supply", ErrOverflow)
	}
	if _, overflow := e.balance.AddOverflow(&e.balance, amount); overflow {
		return fmt.Errorf("%w: %s", ErrOverflow, id)
	}
	l.totalSupply = supply
	l.accounts.ReplaceOrInsert(e)
	return nil
}

// Transfer moves amount from one registered account to another. Either both
// balances change or neither does.
func (l *Ledger) Transfer(from, to string, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfTransfer, from)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.accounts.Get(entry{id: from})
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotRegistered, from)
	}
	dst, ok := l.accounts.Get(entry{id: to})
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotRegistered, to)
	}
	if src.balance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from, src.balance.Dec(), amount.Dec())
	}
	if _, overflow := dst.balance.AddOverflow(&dst.balance, amount); overflow {
		return fmt.Errorf("%w: %s", ErrOverflow, to)
	}
	src.balance.Sub(&src.balance, amount)

	l.accounts.ReplaceOrInsert(src)
	l.accounts.ReplaceOrInsert(dst)
	return nil
}

// Burn destroys amount from id, decreasing the total supply, and notifies
// the hooks.
func (l *Ledger) Burn(id string, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if amount.IsZero() {
		return ErrZeroAmount
	}

	l.mu.Lock()
	e, ok := l.accounts.Get(entry{id: id})
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountNotRegistered, id)
	}
	if e.balance.Lt(amount) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has %s, burning %s", ErrInsufficientBalance, id, e.balance.Dec(), amount.Dec())
	}
	e.balance.Sub(&e.balance, amount)
	l.totalSupply.Sub(&l.totalSupply, amount)
	l.accounts.ReplaceOrInsert(e)
	hooks := l.hooks
	l.mu.Unlock()

	if hooks != nil {
		hooks.OnTokensBurned(id, amount.Clone())
	}
	return nil
}

// CloseAccount unregisters id. An account holding tokens can only be closed
// with force, which burns the remaining balance first. The hooks are told
// about the closure and the balance it held.
func (l *Ledger) CloseAccount(id string, force bool) error {
	l.mu.Lock()
	e, ok := l.accounts.Get(entry{id: id})
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountNotRegistered, id)
	}
	if !e.balance.IsZero() && !force {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s holds %s", ErrNonZeroBalance, id, e.balance.Dec())
	}
	l.totalSupply.Sub(&l.totalSupply, &e.balance)
	l.accounts.Delete(e)
	hooks := l.hooks
	l.mu.Unlock()

	if hooks != nil {
		balance := e.balance.Clone()
		if !balance.IsZero() {
			hooks.OnTokensBurned(id, balance)
		}
		hooks.OnAccountClosed(id, balance)
	}
	return nil
}

// TotalSupply returns the number of tokens in existence.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply.Clone()
}

// BalanceOf returns the balance of id, or zero for unknown accounts.
func (l *Ledger) BalanceOf(id string) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.accounts.Get(entry{id: id})
	if !ok {
		return new(uint256.Int)
	}
	return e.balance.Clone()
}

// Accounts returns every account in id order.
func (l *Ledger) Accounts() []Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accountsLocked()
}

func (l *Ledger) accountsLocked() []Account {
	out := make([]Account, 0, l.accounts.Len())
	l.accounts.Ascend(func(e entry) bool {
		out = append(out, Account{ID: e.id, Balance: e.balance.Clone()})
		return true
	})
	return out
}
