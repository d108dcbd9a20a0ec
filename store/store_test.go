package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/libtokensale-go/ledger"
	"github.com/bitfsorg/libtokensale-go/pricing"
	"github.com/bitfsorg/libtokensale-go/sale"
	"github.com/bitfsorg/libtokensale-go/shares"
)

var start = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", FileName)
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func testContract(t *testing.T) *sale.Contract {
	t.Helper()
	c, err := sale.New(sale.Call{Caller: "owner", Now: start}, sale.Params{
		Metadata:     ledger.Metadata{Name: "Example Token", Symbol: "EXT", Decimals: 8},
		TotalSupply:  uint256.NewInt(1_000_000),
		SaleDuration: time.Hour,
		Shareholders: []shares.ShareHolder{
			{AccountID: "alice", PercentOfToken: decimal.RequireFromString("12.5")},
		},
		Price: pricing.Fixed{Units: 2},
	})
	require.NoError(t, err)

	value, err := pricing.Units(9)
	require.NoError(t, err)
	_, err = c.DepositForSale(sale.Call{Caller: "carol", Now: start.Add(time.Minute), Value: value})
	require.NoError(t, err)
	return c
}

// --- Lifecycle tests ---

func TestStore_InitLoad(t *testing.T) {
	s, _ := tempStore(t)
	c := testContract(t)

	ok, err := s.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Init(snap))

	ok, err = s.Exists()
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Owner, got.Owner)
	assert.Equal(t, snap.Price, got.Price)
	assert.True(t, snap.SaleStart.Equal(got.SaleStart))
	assert.Equal(t, snap.SaleDuration, got.SaleDuration)
	assert.Equal(t, snap.Whitelist, got.Whitelist)
	assert.Equal(t, snap.Ledger, got.Ledger)
	assert.True(t, snap.Raised.Eq(got.Raised))
	require.Len(t, got.Shareholders, 1)
	assert.True(t, got.Shareholders[0].PercentOfToken.Equal(decimal.RequireFromString("12.5")))
}

func TestStore_InitTwice(t *testing.T) {
	s, _ := tempStore(t)
	snap, err := testContract(t).Snapshot()
	require.NoError(t, err)

	require.NoError(t, s.Init(snap))
	assert.ErrorIs(t, s.Init(snap), ErrAlreadyInitialized)
}

func TestStore_NotInitialized(t *testing.T) {
	s, _ := tempStore(t)

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotInitialized)

	snap, err := testContract(t).Snapshot()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Save(snap), ErrNotInitialized)
}

func TestStore_SaveContractPersistsAcrossReopen(t *testing.T) {
	s, path := tempStore(t)
	c := testContract(t)
	snap, err := c.Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Init(snap))

	loaded, err := s.LoadContract()
	require.NoError(t, err)
	_, err = loaded.DistributeToShareholders(sale.Call{Caller: "owner", Now: start.Add(time.Minute)})
	require.NoError(t, err)
	require.NoError(t, s.SaveContract(loaded))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	again, err := reopened.LoadContract()
	require.NoError(t, err)
	distributed, err := again.DistributedStatus()
	require.NoError(t, err)
	assert.True(t, distributed)

	bal, err := again.BalanceOf("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(125_000), bal.Uint64())

	mine, err := again.MyTokens("carol")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), mine.Uint64())
}

// --- Integrity tests ---

func TestStore_DetectsTampering(t *testing.T) {
	s, _ := tempStore(t)
	snap, err := testContract(t).Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Init(snap))

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketContract)
		data := append([]byte(nil), b.Get(keyState)...)
		data[len(data)-1] ^= 0xff
		return b.Put(keyState, data)
	})
	require.NoError(t, err)

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestStore_RejectsUndecodableRecord(t *testing.T) {
	s, _ := tempStore(t)
	garbage := []byte("not a gob record")
	sum := blakeSum(garbage)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketContract).Put(keyState, garbage); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyChecksum, sum)
	})
	require.NoError(t, err)

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestRecord_BadAmount(t *testing.T) {
	snap, err := testContract(t).Snapshot()
	require.NoError(t, err)
	rec := toRecord(snap)
	rec.Raised = "-1"

	_, err = rec.snapshot()
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestRecord_Version(t *testing.T) {
	snap, err := testContract(t).Snapshot()
	require.NoError(t, err)
	rec := toRecord(snap)
	rec.Version = 99

	_, err = rec.snapshot()
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func blakeSum(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// --- Nonce tests ---

func TestStore_NonceRecordedWithState(t *testing.T) {
	s, _ := tempStore(t)
	c := testContract(t)
	snap, err := c.Snapshot()
	require.NoError(t, err)

	first := Nonce{Caller: "owner", Value: 1}
	require.NoError(t, s.Init(snap, first))

	used, err := s.NonceUsed(first)
	require.NoError(t, err)
	assert.True(t, used)

	// Same value from another caller is a different nonce.
	used, err = s.NonceUsed(Nonce{Caller: "carol", Value: 1})
	require.NoError(t, err)
	assert.False(t, used)

	deposit := Nonce{Caller: "carol", Value: 42}
	require.NoError(t, s.SaveContract(c, deposit))
	assert.ErrorIs(t, s.SaveContract(c, deposit), ErrNonceReused)
}

func TestStore_NonceReuseWritesNothing(t *testing.T) {
	s, _ := tempStore(t)
	c := testContract(t)
	snap, err := c.Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Init(snap, Nonce{Caller: "carol", Value: 7}))

	_, err = c.DistributeToShareholders(sale.Call{Caller: "owner", Now: start.Add(time.Minute)})
	require.NoError(t, err)

	fresh := Nonce{Caller: "owner", Value: 8}
	err = s.SaveContract(c, fresh, Nonce{Caller: "carol", Value: 7})
	require.ErrorIs(t, err, ErrNonceReused)

	// The fresh nonce and the new state were rolled back with the update.
	used, err := s.NonceUsed(fresh)
	require.NoError(t, err)
	assert.False(t, used)
	got, err := s.Load()
	require.NoError(t, err)
	assert.False(t, got.ShareholderDistributed)
}
