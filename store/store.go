// Package store persists a single token sale in a bbolt database.
//
// The contract snapshot is written as one gob record alongside its
// blake2b-256 checksum and the nonces of the signed calls that produced it,
// all inside the same update transaction.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/libtokensale-go/sale"
)

var (
	bucketContract = []byte("contract")
	bucketMeta     = []byte("meta")
	bucketNonces   = []byte("nonces")

	keyState    = []byte("state")
	keyChecksum = []byte("checksum")
)

// FileName is the database file name inside a data directory.
const FileName = "sale.db"

// Store wraps the bbolt database holding the sale.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the database at dbPath. The parent directory is
// created if it does not exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketContract, bucketMeta, bucketNonces} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("store: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.db.Path() }

// Exists reports whether a sale has been stored.
func (s *Store) Exists() (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketContract).Get(keyState) != nil
		return nil
	})
	return ok, err
}

// Nonce identifies one signed call. A nonce is accepted once per caller.
type Nonce struct {
	Caller string
	Value  uint64
}

func (n Nonce) key() []byte {
	k := make([]byte, 0, len(n.Caller)+1+8)
	k = append(k, n.Caller...)
	k = append(k, 0)
	return binary.BigEndian.AppendUint64(k, n.Value)
}

// NonceUsed reports whether n has already been recorded.
func (s *Store) NonceUsed(n Nonce) (bool, error) {
	var used bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		used = tx.Bucket(bucketNonces).Get(n.key()) != nil
		return nil
	})
	return used, err
}

// Init stores the state of a freshly initialized sale and records the
// nonces of the calls that produced it. It fails with ErrAlreadyInitialized
// if a sale is already stored.
func (s *Store) Init(snap sale.Snapshot, used ...Nonce) error {
	return s.put(snap, false, used)
}

// Save overwrites the stored sale and records used. It fails with
// ErrNotInitialized if nothing has been stored yet, and with ErrNonceReused
// if any nonce in used was recorded before; either way nothing is written.
func (s *Store) Save(snap sale.Snapshot, used ...Nonce) error {
	return s.put(snap, true, used)
}

func (s *Store) put(snap sale.Snapshot, overwrite bool, used []Nonce) error {
	data, err := encodeGob(toRecord(snap))
	if err != nil {
		return fmt.Errorf("store: encode state: %w", err)
	}
	sum := blake2b.Sum256(data)

	return s.db.Update(func(tx *bbolt.Tx) error {
		cb := tx.Bucket(bucketContract)
		exists := cb.Get(keyState) != nil
		switch {
		case exists && !overwrite:
			return ErrAlreadyInitialized
		case !exists && overwrite:
			return ErrNotInitialized
		}
		nb := tx.Bucket(bucketNonces)
		var stamp [8]byte
		binary.BigEndian.PutUint64(stamp[:], uint64(time.Now().Unix()))
		for _, n := range used {
			k := n.key()
			if nb.Get(k) != nil {
				return fmt.Errorf("%w: %s nonce %d", ErrNonceReused, n.Caller, n.Value)
			}
			if err := nb.Put(k, stamp[:]); err != nil {
				return fmt.Errorf("store: put nonce: %w", err)
			}
		}
		if err := cb.Put(keyState, data); err != nil {
			return fmt.Errorf("store: put state: %w", err)
		}
		if err := tx.Bucket(bucketMeta).Put(keyChecksum, sum[:]); err != nil {
			return fmt.Errorf("store: put checksum: %w", err)
		}
		return nil
	})
}

// Load reads and verifies the stored sale.
func (s *Store) Load() (sale.Snapshot, error) {
	var rec record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketContract).Get(keyState)
		if data == nil {
			return ErrNotInitialized
		}
		sum := blake2b.Sum256(data)
		if !bytes.Equal(sum[:], tx.Bucket(bucketMeta).Get(keyChecksum)) {
			return fmt.Errorf("%w: checksum mismatch", ErrCorruptState)
		}
		if err := decodeGob(data, &rec); err != nil {
			return fmt.Errorf("%w: decode: %w", ErrCorruptState, err)
		}
		return nil
	})
	if err != nil {
		return sale.Snapshot{}, err
	}
	return rec.snapshot()
}

// LoadContract loads the stored sale and rebuilds the contract.
func (s *Store) LoadContract(opts ...sale.Option) (*sale.Contract, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	c, err := sale.Restore(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	return c, nil
}

// SaveContract snapshots c and overwrites the stored sale, recording used
// in the same transaction.
func (s *Store) SaveContract(c *sale.Contract, used ...Nonce) error {
	snap, err := c.Snapshot()
	if err != nil {
		return err
	}
	return s.Save(snap, used...)
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
