package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Account id tests ---

func TestValidateAccountID_Named(t *testing.T) {
	valid := []string{"ab", "alice", "team.treasury", "bob-1", "a_b.c-d", strings.Repeat("a", 64)}
	for _, id := range valid {
		t.Run(id, func(t *testing.T) {
			assert.NoError(t, ValidateAccountID(id))
		})
	}
}

func TestValidateAccountID_Invalid(t *testing.T) {
	invalid := []string{"", "a", "Alice", "bob--1", ".alice", "alice.", "a b", "a@b", strings.Repeat("a", 65)}
	for _, id := range invalid {
		t.Run(id, func(t *testing.T) {
			assert.ErrorIs(t, ValidateAccountID(id), ErrInvalidAccountID)
		})
	}
}

func TestValidateAccountID_Address(t *testing.T) {
	priv, err := NewKey()
	require.NoError(t, err)

	for _, mainnet := range []bool{true, false} {
		addr, err := AddressFromPublicKey(priv.PubKey(), mainnet)
		require.NoError(t, err)
		assert.True(t, IsAddress(addr))
		assert.NoError(t, ValidateAccountID(addr))
	}
}

func TestAddressFromPublicKey_Nil(t *testing.T) {
	_, err := AddressFromPublicKey(nil, true)
	assert.ErrorIs(t, err, ErrNilKey)
}

// --- Key tests ---

func TestKeyHexRoundTrip(t *testing.T) {
	priv, err := NewKey()
	require.NoError(t, err)

	got, err := KeyFromHex(KeyToHex(priv))
	require.NoError(t, err)
	assert.Equal(t, priv.Serialize(), got.Serialize())
}

func TestKeyFromHex_Invalid(t *testing.T) {
	_, err := KeyFromHex("zz")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = KeyFromHex("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestEncryptDecryptKey(t *testing.T) {
	priv, err := NewKey()
	require.NoError(t, err)

	enc, err := EncryptKey(priv, "hunter2")
	require.NoError(t, err)
	assert.Len(t, enc, SaltLen+NonceLen+32+ChecksumLen+16)

	got, err := DecryptKey(enc, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, priv.Serialize(), got.Serialize())

	_, err = DecryptKey(enc, "wrong")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = DecryptKey(enc[:10], "hunter2")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEncryptKey_Nil(t *testing.T) {
	_, err := EncryptKey(nil, "pw")
	assert.ErrorIs(t, err, ErrNilKey)
}

// --- Envelope tests ---

var signedAt = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func TestEnvelope_SignVerify(t *testing.T) {
	priv, err := NewKey()
	require.NoError(t, err)

	env, err := SignEnvelope(priv, "deposit_for_sale", "5000", 7, signedAt, false)
	require.NoError(t, err)

	caller, err := env.Verify(false)
	require.NoError(t, err)
	assert.Equal(t, env.Caller, caller)

	want, err := AddressFromPublicKey(priv.PubKey(), false)
	require.NoError(t, err)
	assert.Equal(t, want, caller)
	assert.True(t, env.SignedAt().Equal(signedAt))
}

func TestEnvelope_Tampered(t *testing.T) {
	priv, err := NewKey()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*Envelope)
		wantErr error
	}{
		{"value", func(e *Envelope) { e.Value = "9999" }, ErrBadSignature},
		{"method", func(e *Envelope) { e.Method = "distribute_to_buyers" }, ErrBadSignature},
		{"nonce", func(e *Envelope) { e.Nonce++ }, ErrBadSignature},
		{"time", func(e *Envelope) { e.Time -= 86400 }, ErrBadSignature},
		{"signature", func(e *Envelope) { e.Signature = []byte{0x30, 0x01} }, ErrBadSignature},
		{"pubkey", func(e *Envelope) { e.PubKey = []byte{0x02} }, ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := SignEnvelope(priv, "deposit_for_sale", "5000", 1, signedAt, true)
			require.NoError(t, err)
			tt.mutate(env)
			_, err = env.Verify(true)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEnvelope_CallerMismatch(t *testing.T) {
	priv, err := NewKey()
	require.NoError(t, err)
	other, err := NewKey()
	require.NoError(t, err)

	env, err := SignEnvelope(priv, "distribute_to_buyers", "0", 1, signedAt, true)
	require.NoError(t, err)

	// Re-sign with the original key but claim another identity.
	env.Caller, err = AddressFromPublicKey(other.PubKey(), true)
	require.NoError(t, err)
	sig, err := priv.Sign(env.Digest())
	require.NoError(t, err)
	env.Signature = sig.Serialize()

	_, err = env.Verify(true)
	assert.ErrorIs(t, err, ErrCallerMismatch)
}
