package store

import "errors"

var (
	// ErrAlreadyInitialized indicates a sale is already stored.
	ErrAlreadyInitialized = errors.New("store: sale already initialized")

	// ErrNotInitialized indicates no sale has been stored yet.
	ErrNotInitialized = errors.New("store: sale not initialized")

	// ErrCorruptState indicates the stored record fails its checksum or
	// cannot be decoded.
	ErrCorruptState = errors.New("store: corrupt state")

	// ErrNonceReused indicates a signed call that was already applied.
	ErrNonceReused = errors.New("store: nonce already used")

	// ErrUnsupportedVersion indicates a record written by an incompatible
	// format version.
	ErrUnsupportedVersion = errors.New("store: unsupported record version")
)
