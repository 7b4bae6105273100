package dispatch

import (
	"context"

	"github.com/keygate/vault"
)

// Request is the backend agnostic description of a transaction.
type Request struct {
	ProposalID uint64
	To         string
	Token      vault.TokenPath
	Network    vault.Network
	Amount     vault.Amount
	Kind       vault.TxKind
}

// Key returns the registry key of the adapter serving the request.
func (r Request) Key() string {
	return r.Token.Key(r.Kind)
}

// Adapter executes requests against one ledger backend. Execute may block on
// remote calls and must return once ctx is done.
type Adapter interface {
	Execute(ctx context.Context, req Request) (vault.IntentStatus, error)
}

// AdapterFunc allows a function to be used as an Adapter.
type AdapterFunc func(ctx context.Context, req Request) (vault.IntentStatus, error)

// Execute calls f.
func (f AdapterFunc) Execute(ctx context.Context, req Request) (vault.IntentStatus, error) {
	return f(ctx, req)
}
