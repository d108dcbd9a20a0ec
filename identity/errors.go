package identity

import "errors"

var (
	// ErrInvalidAccountID indicates an identity that is neither a named
	// account nor a valid address.
	ErrInvalidAccountID = errors.New("identity: invalid account id")

	// ErrNilKey indicates a required key is nil.
	ErrNilKey = errors.New("identity: key is nil")

	// ErrInvalidKey indicates key bytes that cannot be parsed.
	ErrInvalidKey = errors.New("identity: invalid key")

	// ErrBadSignature indicates an envelope whose signature does not verify.
	ErrBadSignature = errors.New("identity: signature verification failed")

	// ErrCallerMismatch indicates the signing key does not belong to the
	// claimed caller.
	ErrCallerMismatch = errors.New("identity: caller does not match signing key")

	// ErrDecryptionFailed indicates a wrong password or corrupted key file.
	ErrDecryptionFailed = errors.New("identity: key decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates the key checksum failed after decryption.
	ErrChecksumMismatch = errors.New("identity: key checksum mismatch")
)
