package ledger

import "errors"

// Sentinel errors a Client implementation returns so callers in package
// escrow can distinguish failure modes without depending on any one
// adapter's error types, per spec.md §4.2's failure-mode column.
var (
	ErrNotFound      = errors.New("ledger: transaction not found")
	ErrNotValidated  = errors.New("ledger: transaction not yet validated")
	ErrRejected      = errors.New("ledger: transfer rejected by ledger")
	ErrSigningFailed = errors.New("ledger: signing failed")
	ErrTimeout       = errors.New("ledger: operation timed out")
	ErrUnavailable   = errors.New("ledger: adapter unavailable")
)
