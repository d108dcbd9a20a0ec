// Package identity validates account identities and authenticates callers.
//
// An identity is either a named account ("alice", "team.treasury") or a
// base58 P2PKH address derived from a secp256k1 public key. Signed call
// envelopes bind a caller identity to the key that produced the signature.
package identity

import (
	"fmt"
	"regexp"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
)

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

// namedAccount matches lowercase alphanumeric parts separated by single
// '-', '_' or '.' characters.
var namedAccount = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

// ValidateAccountID accepts a named account or a P2PKH address.
func ValidateAccountID(id string) error {
	if IsAddress(id) {
		return nil
	}
	if len(id) < MinAccountIDLen || len(id) > MaxAccountIDLen {
		return fmt.Errorf("%w: %q has length %d", ErrInvalidAccountID, id, len(id))
	}
	if !namedAccount.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountID, id)
	}
	return nil
}

// IsAddress reports whether id parses as a base58 P2PKH address.
func IsAddress(id string) bool {
	if id == "" {
		return false
	}
	_, err := script.NewAddressFromString(id)
	return err == nil
}

// AddressFromPublicKey returns the P2PKH address string for pub.
func AddressFromPublicKey(pub *ec.PublicKey, mainnet bool) (string, error) {
	if pub == nil {
		return "", ErrNilKey
	}
	addr, err := script.NewAddressFromPublicKey(pub, mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: address from pubkey: %w", ErrInvalidKey, err)
	}
	return addr.AddressString, nil
}
