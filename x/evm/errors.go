package evm

import "github.com/keygate/vault/errors"

var (
	// ErrUnsupportedChain is returned for networks without a configured
	// chain.
	ErrUnsupportedChain = errors.Register(1300, "unsupported chain")

	// ErrReverted is returned when a transaction was included but failed.
	ErrReverted = errors.Register(1301, "transaction reverted")
)
