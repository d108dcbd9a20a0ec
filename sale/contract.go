// Package sale implements the token-sale and allocation controller.
//
// A Contract fixes an owner, a pricing strategy, a shareholder registry and
// a sale window at initialization and mints the total supply to the owner.
// During the window participants accrue purchase credits; afterwards the
// owner pays out shareholders and buyers through the token ledger.
//
// Every mutating call is all-or-nothing: on failure neither the contract
// state nor the ledger shows any change.
package sale

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bitfsorg/libtokensale-go/identity"
	"github.com/bitfsorg/libtokensale-go/ledger"
	"github.com/bitfsorg/libtokensale-go/pricing"
	"github.com/bitfsorg/libtokensale-go/shares"
	"github.com/bitfsorg/libtokensale-go/window"
)

const whitelistTreeDegree = 16

// TokenLedger is the ledger the contract pays out through.
type TokenLedger interface {
	RegisterAccount(id string) bool
	IsRegistered(id string) bool
	Deposit(id string, amount *uint256.Int) error
	Transfer(from, to string, amount *uint256.Int) error
	TotalSupply() *uint256.Int
	BalanceOf(id string) *uint256.Int
	Accounts() []ledger.Account
	Metadata() ledger.Metadata
	Snapshot() ledger.Snapshot
	Restore(ledger.Snapshot) error
	SetHooks(ledger.Hooks)
}

// Compile-time interface check.
var _ TokenLedger = (*ledger.Ledger)(nil)

// Call carries the execution context of one contract invocation.
type Call struct {
	Caller string
	Now    time.Time
	Value  *uint256.Int // attached native value in base units; nil means none
}

func (c Call) value() *uint256.Int {
	if c.Value == nil {
		return new(uint256.Int)
	}
	return c.Value
}

// Params are the initialization parameters of a sale.
type Params struct {
	Metadata     ledger.Metadata
	TotalSupply  *uint256.Int
	SaleDuration time.Duration
	Shareholders []shares.ShareHolder
	Price        pricing.Strategy
}

// Option configures a Contract.
type Option func(*Contract)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Contract) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLedger makes the contract use l instead of a fresh in-memory ledger.
// New requires its metadata to agree with Params.Metadata apart from Spec;
// Restore overwrites it. The contract owns l from then on: a failed call
// restores l to its state before the call, so changes made to l elsewhere
// while the contract is live may be lost.
func WithLedger(l TokenLedger) Option {
	return func(c *Contract) { c.ledger = l }
}

// entry is one whitelist record. Purchased is cumulative; Owed is the credit
// still to be paid out.
type entry struct {
	id        string
	purchased uint256.Int
	owed      uint256.Int
	paid      bool
}

func lessEntry(a, b entry) bool { return a.id < b.id }

type state struct {
	owner       string
	price       pricing.Strategy
	registry    *shares.Registry
	window      window.Window
	distributed bool
	whitelist   *btree.BTreeG[entry]
	raised      uint256.Int
	sold        uint256.Int
}

// clone returns a copy safe to mutate; the whitelist tree is copy-on-write.
func (s *state) clone() *state {
	cp := *s
	cp.whitelist = s.whitelist.Clone()
	return &cp
}

// Contract is the sale controller. The zero value is not usable: every
// method fails with ErrNotInitialized.
type Contract struct {
	mu     sync.RWMutex
	st     *state
	ledger TokenLedger
	log    *zap.Logger
}

// New initializes a sale. call.Caller becomes the owner and the sale window
// opens at call.Now. The ledger must be empty; the owner is registered in it
// and credited with the total supply.
func New(call Call, p Params, opts ...Option) (*Contract, error) {
	c := &Contract{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	if err := identity.ValidateAccountID(call.Caller); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCaller, err)
	}
	if p.TotalSupply == nil || p.TotalSupply.IsZero() {
		return nil, fmt.Errorf("%w: total supply must be positive", ErrInvalidParams)
	}
	if p.Price == nil {
		return nil, fmt.Errorf("%w: missing price type", ErrInvalidParams)
	}
	if err := pricing.Validate(p.Price); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	w, err := window.New(call.Now, p.SaleDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	registry, err := shares.NewRegistry(p.Shareholders)
	if err != nil {
		return nil, err
	}

	if c.ledger == nil {
		l, err := ledger.New(p.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
		c.ledger = l
	} else if !sameToken(c.ledger.Metadata(), p.Metadata) {
		return nil, fmt.Errorf("%w: metadata does not match ledger %s", ErrInvalidParams, c.ledger.Metadata().Symbol)
	}
	if len(c.ledger.Accounts()) != 0 || !c.ledger.TotalSupply().IsZero() {
		return nil, ErrAlreadyInitialized
	}

	c.ledger.RegisterAccount(call.Caller)
	if err := c.ledger.Deposit(call.Caller, p.TotalSupply); err != nil {
		return nil, fmt.Errorf("sale: mint total supply: %w", err)
	}
	c.ledger.SetHooks(c)

	c.st = &state{
		owner:     call.Caller,
		price:     p.Price,
		registry:  registry,
		window:    w,
		whitelist: btree.NewG(whitelistTreeDegree, lessEntry),
	}

	c.log.Info("sale initialized",
		zap.String("owner", call.Caller),
		zap.String("symbol", c.ledger.Metadata().Symbol),
		zap.String("total_supply", p.TotalSupply.Dec()),
		zap.String("price", p.Price.String()),
		zap.Time("sale_start", w.Start),
		zap.Duration("sale_duration", w.Duration),
		zap.Int("shareholders", registry.Len()),
	)
	return c, nil
}

// sameToken compares metadata ignoring the format version.
func sameToken(a, b ledger.Metadata) bool {
	a.Spec, b.Spec = "", ""
	return a == b
}

// transact runs fn against a staged copy of the state and a ledger
// checkpoint. The staged state is committed only if fn succeeds; otherwise
// the ledger is rolled back.
func (c *Contract) transact(op string, fn func(st *state) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st == nil {
		return ErrNotInitialized
	}

	staged := c.st.clone()
	checkpoint := c.ledger.Snapshot()
	if err := fn(staged); err != nil {
		if rerr := c.ledger.Restore(checkpoint); rerr != nil {
			c.log.Error("ledger rollback failed", zap.String("op", op), zap.Error(rerr))
			return errors.Join(err, fmt.Errorf("sale: rollback: %w", rerr))
		}
		c.log.Debug("call aborted", zap.String("op", op), zap.Error(err))
		return err
	}
	c.st = staged
	return nil
}

// view runs fn under the read lock.
func (c *Contract) view(fn func(st *state) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.st == nil {
		return ErrNotInitialized
	}
	return fn(c.st)
}

// OnAccountClosed logs ledger account closures.
func (c *Contract) OnAccountClosed(accountID string, balance *uint256.Int) {
	c.log.Info("account closed", zap.String("account", accountID), zap.String("balance", balance.Dec()))
}

// OnTokensBurned logs ledger burns.
func (c *Contract) OnTokensBurned(accountID string, amount *uint256.Int) {
	c.log.Info("tokens burned", zap.String("account", accountID), zap.String("amount", amount.Dec()))
}

// LedgerView is the read side of the ledger backing a contract.
type LedgerView interface {
	IsRegistered(id string) bool
	TotalSupply() *uint256.Int
	BalanceOf(id string) *uint256.Int
	Accounts() []ledger.Account
	Metadata() ledger.Metadata
}

// Ledger returns a read-only view of the token ledger backing the contract.
// Reads are serialized with contract calls.
func (c *Contract) Ledger() LedgerView {
	return ledgerView{c: c}
}

type ledgerView struct{ c *Contract }

func (v ledgerView) read(fn func(l TokenLedger)) {
	v.c.mu.RLock()
	defer v.c.mu.RUnlock()
	if v.c.ledger != nil {
		fn(v.c.ledger)
	}
}

func (v ledgerView) IsRegistered(id string) (ok bool) {
	v.read(func(l TokenLedger) { ok = l.IsRegistered(id) })
	return ok
}

func (v ledgerView) TotalSupply() *uint256.Int {
	out := new(uint256.Int)
	v.read(func(l TokenLedger) { out = l.TotalSupply() })
	return out
}

func (v ledgerView) BalanceOf(id string) *uint256.Int {
	out := new(uint256.Int)
	v.read(func(l TokenLedger) { out = l.BalanceOf(id) })
	return out
}

func (v ledgerView) Accounts() (out []ledger.Account) {
	v.read(func(l TokenLedger) { out = l.Accounts() })
	return out
}

func (v ledgerView) Metadata() (out ledger.Metadata) {
	v.read(func(l TokenLedger) { out = l.Metadata() })
	return out
}
