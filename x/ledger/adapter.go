package ledger

import (
	"context"
	"math/big"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/dispatch"
)

const (
	// NativeFee is the recommended fee of an ICP transfer, in e8s.
	NativeFee = 10000
	// TokenFee is the recommended fee of an ICRC-1 transfer.
	TokenFee = 1000000
)

// Registry keys of the adapters of this package.
const (
	NativeTransferKey = "icp:native:transfer"
	TokenTransferKey  = "icp:icrc1:transfer"
)

// SubaccountLookup returns the subaccount holding the funds of a token.
// ErrNotFound means the default subaccount is used.
type SubaccountLookup interface {
	Subaccount(ctx context.Context, token vault.TokenPath) (vault.Subaccount, error)
}

// NativeAdapter transfers ICP from the subaccount assigned to the token.
type NativeAdapter struct {
	ledger      NativeLedger
	subaccounts SubaccountLookup
	fee         uint64
}

var _ dispatch.Adapter = (*NativeAdapter)(nil)

// NewNativeAdapter returns an adapter paying the recommended fee.
func NewNativeAdapter(l NativeLedger, subaccounts SubaccountLookup) *NativeAdapter {
	return &NativeAdapter{ledger: l, subaccounts: subaccounts, fee: NativeFee}
}

// Execute sends the amount, in e8s, to the hex account identifier of the
// request.
func (a *NativeAdapter) Execute(ctx context.Context, req dispatch.Request) (vault.IntentStatus, error) {
	to, err := vault.ParseAccountIdentifierHex(req.To)
	if err != nil {
		return vault.IntentStatus{}, errors.Wrap(err, "destination")
	}
	amount, err := baseUnits(req.Amount)
	if err != nil {
		return vault.IntentStatus{}, err
	}
	from, err := a.subaccounts.Subaccount(ctx, req.Token)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		from = vault.DefaultSubaccount
	default:
		return vault.IntentStatus{}, errors.Wrap(err, "source subaccount")
	}

	block, err := a.ledger.Transfer(ctx, NativeTransfer{
		FromSubaccount: from,
		To:             to,
		Amount:         amount,
		Fee:            a.fee,
	})
	if err != nil {
		return vault.IntentStatus{}, errors.Wrap(err, "transfer error")
	}
	vault.GetLogger(ctx).Info("native transfer", "block", block, "to", to.Hex())
	return vault.Completed("Successfully transferred native ICP."), nil
}

// TokenAdapter transfers ICRC-1 tokens of the contract named by the token
// path, from the default subaccount of the vault.
type TokenAdapter struct {
	ledger TokenLedger
	fee    uint64
}

var _ dispatch.Adapter = (*TokenAdapter)(nil)

// NewTokenAdapter returns an adapter paying the recommended fee.
func NewTokenAdapter(l TokenLedger) *TokenAdapter {
	return &TokenAdapter{ledger: l, fee: TokenFee}
}

// Execute sends the amount to the "<principal>[.<hex subaccount>]" account
// of the request.
func (a *TokenAdapter) Execute(ctx context.Context, req dispatch.Request) (vault.IntentStatus, error) {
	contract, err := req.Token.Contract()
	if err != nil {
		return vault.IntentStatus{}, err
	}
	to, err := ParseAccount(req.To)
	if err != nil {
		return vault.IntentStatus{}, errors.Wrap(err, "destination")
	}
	amount, err := baseUnits(req.Amount)
	if err != nil {
		return vault.IntentStatus{}, err
	}

	block, err := a.ledger.Transfer(ctx, contract, TokenTransfer{
		FromSubaccount: vault.DefaultSubaccount,
		To:             to,
		Amount:         amount,
		Fee:            a.fee,
	})
	if err != nil {
		return vault.IntentStatus{}, errors.Wrap(err, "ICRC-1 transfer error")
	}
	vault.GetLogger(ctx).Info("token transfer", "contract", contract, "block", block, "to", to.String())
	return vault.Completed("Successfully transferred an ICRC-1 token."), nil
}

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

func baseUnits(a vault.Amount) (uint64, error) {
	n, err := a.BaseUnits(0)
	if err != nil {
		return 0, err
	}
	if n.Cmp(maxUint64) > 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "amount %s", string(a))
	}
	return n.Uint64(), nil
}
