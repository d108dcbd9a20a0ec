package store

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libtokensale-go/ledger"
	"github.com/bitfsorg/libtokensale-go/sale"
	"github.com/bitfsorg/libtokensale-go/shares"
)

const recordVersion = 1

// record is the gob form of a sale.Snapshot. Amounts are stored as decimal
// strings so the encoding does not depend on uint256 internals.
type record struct {
	Version      int
	Owner        string
	Price        string
	Shareholders []string
	SaleStart    time.Time
	SaleDuration int64
	Distributed  bool
	Whitelist    []entryRecord
	Raised       string
	Sold         string
	Metadata     ledger.Metadata
	Accounts     []accountRecord
	TotalSupply  string
}

type entryRecord struct {
	AccountID string
	Purchased string
	Owed      string
	Paid      bool
}

type accountRecord struct {
	ID      string
	Balance string
}

func dec(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func toRecord(s sale.Snapshot) *record {
	r := &record{
		Version:      recordVersion,
		Owner:        s.Owner,
		Price:        s.Price,
		Shareholders: make([]string, len(s.Shareholders)),
		SaleStart:    s.SaleStart,
		SaleDuration: int64(s.SaleDuration),
		Distributed:  s.ShareholderDistributed,
		Whitelist:    make([]entryRecord, len(s.Whitelist)),
		Raised:       dec(s.Raised),
		Sold:         dec(s.Sold),
		Metadata:     s.Ledger.Metadata,
		Accounts:     make([]accountRecord, len(s.Ledger.Accounts)),
		TotalSupply:  dec(s.Ledger.TotalSupply),
	}
	for i, h := range s.Shareholders {
		r.Shareholders[i] = h.String()
	}
	for i, e := range s.Whitelist {
		r.Whitelist[i] = entryRecord{
			AccountID: e.AccountID,
			Purchased: dec(e.Purchased),
			Owed:      dec(e.Owed),
			Paid:      e.Paid,
		}
	}
	for i, a := range s.Ledger.Accounts {
		r.Accounts[i] = accountRecord{ID: a.ID, Balance: dec(a.Balance)}
	}
	return r
}

func (r *record) snapshot() (sale.Snapshot, error) {
	if r.Version != recordVersion {
		return sale.Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, r.Version)
	}
	var err error
	s := sale.Snapshot{
		Owner:                  r.Owner,
		Price:                  r.Price,
		Shareholders:           make([]shares.ShareHolder, len(r.Shareholders)),
		SaleStart:              r.SaleStart,
		SaleDuration:           time.Duration(r.SaleDuration),
		ShareholderDistributed: r.Distributed,
		Whitelist:              make([]sale.Entry, len(r.Whitelist)),
		Ledger: ledger.Snapshot{
			Metadata: r.Metadata,
			Accounts: make([]ledger.Account, len(r.Accounts)),
		},
	}
	for i, line := range r.Shareholders {
		if s.Shareholders[i], err = shares.ParseShareHolder(line); err != nil {
			return sale.Snapshot{}, err
		}
	}
	for i, e := range r.Whitelist {
		out := sale.Entry{AccountID: e.AccountID, Paid: e.Paid}
		if out.Purchased, err = parseAmount("purchased", e.Purchased); err != nil {
			return sale.Snapshot{}, err
		}
		if out.Owed, err = parseAmount("owed", e.Owed); err != nil {
			return sale.Snapshot{}, err
		}
		s.Whitelist[i] = out
	}
	for i, a := range r.Accounts {
		bal, err := parseAmount("balance", a.Balance)
		if err != nil {
			return sale.Snapshot{}, err
		}
		s.Ledger.Accounts[i] = ledger.Account{ID: a.ID, Balance: bal}
	}
	if s.Raised, err = parseAmount("raised", r.Raised); err != nil {
		return sale.Snapshot{}, err
	}
	if s.Sold, err = parseAmount("sold", r.Sold); err != nil {
		return sale.Snapshot{}, err
	}
	if s.Ledger.TotalSupply, err = parseAmount("total supply", r.TotalSupply); err != nil {
		return sale.Snapshot{}, err
	}
	return s, nil
}

func parseAmount(field, s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %w", ErrCorruptState, field, s, err)
	}
	return v, nil
}
