package txlog

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// Transaction records the outcome of one execution attempt of a proposal.
type Transaction struct {
	Index      uint64
	ProposalID uint64
	Status     vault.IntentStatus
	To         string
	Token      vault.TokenPath
	Network    vault.Network
	Amount     vault.Amount
	Kind       vault.TxKind
	ExecutedAt vault.UnixTime
}

// Validate requires a terminal status.
func (t *Transaction) Validate() error {
	var errs error
	if err := t.Status.Validate(); err != nil {
		errs = errors.AppendField(errs, "Status", err)
	} else if !t.Status.IsTerminal() {
		errs = errors.AppendField(errs, "Status", errors.Wrapf(errors.ErrState, "%s is not terminal", t.Status))
	}
	errs = errors.AppendField(errs, "Token", t.Token.Validate())
	errs = errors.AppendField(errs, "Amount", t.Amount.Validate())
	errs = errors.AppendField(errs, "ExecutedAt", t.ExecutedAt.Validate())
	return errs
}
