package ledger

import (
	"context"

	"github.com/keygate/vault"
)

// NativeTransfer moves ICP from a subaccount of the caller.
type NativeTransfer struct {
	FromSubaccount vault.Subaccount
	To             vault.AccountIdentifier
	Amount         uint64
	Fee            uint64
	Memo           uint64
}

// NativeLedger is the ICP ledger service as seen by its caller.
type NativeLedger interface {
	// Transfer returns the index of the block recording the transfer.
	Transfer(ctx context.Context, args NativeTransfer) (uint64, error)
	AccountBalance(ctx context.Context, id vault.AccountIdentifier) (uint64, error)
}

// TokenTransfer moves tokens from a subaccount of the caller.
type TokenTransfer struct {
	FromSubaccount vault.Subaccount
	To             Account
	Amount         uint64
	Fee            uint64
}

// TokenLedger calls ICRC-1 token contracts, identified by their principal
// text.
type TokenLedger interface {
	Transfer(ctx context.Context, contract string, args TokenTransfer) (uint64, error)
	BalanceOf(ctx context.Context, contract string, acc Account) (uint64, error)
}
