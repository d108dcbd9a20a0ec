package ledger

import "errors"

var (
	// ErrAccountNotRegistered indicates an operation on an unknown account.
	ErrAccountNotRegistered = errors.New("ledger: account not registered")

	// ErrInsufficientBalance indicates a debit larger than the balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrZeroAmount indicates a transfer or burn of zero tokens.
	ErrZeroAmount = errors.New("ledger: amount must be positive")

	// ErrSelfTransfer indicates sender and receiver are the same account.
	ErrSelfTransfer = errors.New("ledger: sender and receiver must differ")

	// ErrOverflow indicates a balance or the total supply exceeded 256 bits.
	ErrOverflow = errors.New("ledger: balance overflow")

	// ErrNonZeroBalance indicates closing an account that still holds tokens.
	ErrNonZeroBalance = errors.New("ledger: account balance is not zero")

	// ErrInvalidMetadata indicates missing token name or symbol.
	ErrInvalidMetadata = errors.New("ledger: invalid token metadata")

	// ErrSupplyMismatch indicates a snapshot whose balances do not sum to the
	// recorded total supply.
	ErrSupplyMismatch = errors.New("ledger: balances do not sum to total supply")

	// ErrNilAmount indicates a nil amount argument.
	ErrNilAmount = errors.New("ledger: amount is nil")
)
