package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// Envelope is a signed request to invoke a contract method. The caller
// identity is the P2PKH address of PubKey. Time is the block time the signer
// authorizes the call to run at, in Unix seconds; Value is the attached value
// in base units as a decimal string.
type Envelope struct {
	Method    string `json:"method"`
	Caller    string `json:"caller"`
	PubKey    []byte `json:"pubkey"` // compressed, 33 bytes
	Nonce     uint64 `json:"nonce"`
	Time      int64  `json:"time"`
	Value     string `json:"value"`
	Signature []byte `json:"signature"` // DER
}

// SignedAt returns the authorized block time.
func (e *Envelope) SignedAt() time.Time {
	return time.Unix(e.Time, 0).UTC()
}

// Digest returns SHA256 over the length-prefixed method, caller and pubkey,
// the nonce, the block time and the length-prefixed value.
func (e *Envelope) Digest() []byte {
	h := sha256.New()
	writeField := func(b []byte) {
		var l [4]byte
		binary.BigEndian.PutUint32(l[:], uint32(len(b)))
		h.Write(l[:])
		h.Write(b)
	}
	writeField([]byte(e.Method))
	writeField([]byte(e.Caller))
	writeField(e.PubKey)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], e.Nonce)
	h.Write(n[:])
	binary.BigEndian.PutUint64(n[:], uint64(e.Time))
	h.Write(n[:])
	writeField([]byte(e.Value))
	return h.Sum(nil)
}

// SignEnvelope builds and signs an envelope for method with the caller
// derived from priv, authorizing the call to run at block time at.
func SignEnvelope(priv *ec.PrivateKey, method, value string, nonce uint64, at time.Time, mainnet bool) (*Envelope, error) {
	if priv == nil {
		return nil, ErrNilKey
	}
	pub := priv.PubKey()
	caller, err := AddressFromPublicKey(pub, mainnet)
	if err != nil {
		return nil, err
	}
	env := &Envelope{
		Method: method,
		Caller: caller,
		PubKey: pub.Compressed(),
		Nonce:  nonce,
		Time:   at.Unix(),
		Value:  value,
	}
	sig, err := priv.Sign(env.Digest())
	if err != nil {
		return nil, fmt.Errorf("identity: sign envelope: %w", err)
	}
	env.Signature = sig.Serialize()
	return env, nil
}

// Verify checks the signature and that Caller is the address of PubKey.
// It returns the authenticated caller identity.
func (e *Envelope) Verify(mainnet bool) (string, error) {
	pub, err := ec.PublicKeyFromBytes(e.PubKey)
	if err != nil {
		return "", fmt.Errorf("%w: public key: %w", ErrInvalidKey, err)
	}
	sig, err := ec.ParseDERSignature(e.Signature)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadSignature, err)
	}
	if !sig.Verify(e.Digest(), pub) {
		return "", ErrBadSignature
	}
	addr, err := AddressFromPublicKey(pub, mainnet)
	if err != nil {
		return "", err
	}
	if addr != e.Caller {
		return "", fmt.Errorf("%w: claimed %s, key is %s", ErrCallerMismatch, e.Caller, addr)
	}
	return addr, nil
}
