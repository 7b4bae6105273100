package ledger

import "github.com/keygate/vault/errors"

var (
	// ErrInsufficientFunds is returned when the sender cannot pay the
	// amount and the fee.
	ErrInsufficientFunds = errors.Register(1200, "insufficient funds")

	// ErrBadFee is returned when the fee differs from the fee the ledger
	// expects.
	ErrBadFee = errors.Register(1201, "bad fee")

	// ErrTransfer is returned when a ledger rejects a transfer.
	ErrTransfer = errors.Register(1202, "transfer error")
)
