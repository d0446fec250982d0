package ledger

import "errors"

// Business errors. Everything else coming out of the engine is an
// unclassified store/notifier failure and maps to a 5xx upstream.
var (
	ErrAlreadyExists     = errors.New("account already exists")
	ErrNotFound          = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrIdentityMismatch  = errors.New("account id mismatch")
	ErrInvalidAmount     = errors.New("amount must be positive")
)
