package proposal

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// ProposedTransaction is a transfer waiting for the approval of the signers.
type ProposedTransaction struct {
	ID         uint64
	To         string
	Token      vault.TokenPath
	Network    vault.Network
	Amount     vault.Amount
	Kind       vault.TxKind
	Signers    []vault.Principal
	Rejections []vault.Principal
	Executed   bool
	CreatedAt  vault.UnixTime
}

// Validate checks the transfer fields and that no principal voted twice.
func (m *ProposedTransaction) Validate() error {
	errs := m.Args().Validate()
	if len(m.Signers) == 0 {
		errs = errors.AppendField(errs, "Signers", errors.ErrEmpty)
	}
	for i, p := range m.Signers {
		if vault.ContainsPrincipal(m.Signers[:i], p) {
			errs = errors.AppendField(errs, "Signers", errors.Wrapf(errors.ErrDuplicate, "%s", p))
		}
	}
	for i, p := range m.Rejections {
		if vault.ContainsPrincipal(m.Rejections[:i], p) || vault.ContainsPrincipal(m.Signers, p) {
			errs = errors.AppendField(errs, "Rejections", errors.Wrapf(errors.ErrDuplicate, "%s", p))
		}
	}
	if err := m.CreatedAt.Validate(); err != nil {
		errs = errors.AppendField(errs, "CreatedAt", err)
	}
	return errs
}

// Args returns the transfer fields of the proposal.
func (m *ProposedTransaction) Args() Args {
	return Args{
		To:      m.To,
		Token:   m.Token,
		Network: m.Network,
		Amount:  m.Amount,
		Kind:    m.Kind,
	}
}

// Approvals returns the number of signers that approved the proposal.
func (m *ProposedTransaction) Approvals() int {
	return len(m.Signers)
}

// HasVoted returns true if the principal already approved or rejected.
func (m *ProposedTransaction) HasVoted(p vault.Principal) bool {
	return vault.ContainsPrincipal(m.Signers, p) || vault.ContainsPrincipal(m.Rejections, p)
}

// Args are the fields a signer provides to propose a transaction.
type Args struct {
	To      string          `json:"to"`
	Token   vault.TokenPath `json:"token"`
	Network vault.Network   `json:"network"`
	Amount  vault.Amount    `json:"amount"`
	Kind    vault.TxKind    `json:"kind"`
}

// Validate returns field errors for every malformed value. A token path must
// resolve to an adapter key, which requires a valid path and kind. A path
// that starts with a known network must name the proposal network.
func (a Args) Validate() error {
	var errs error
	if a.To == "" {
		errs = errors.AppendField(errs, "To", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Token", a.Token.Validate())
	if err := a.Network.Validate(); err != nil {
		errs = errors.AppendField(errs, "Network", err)
	} else if n := vault.Network(a.Token.Network()); n.Validate() == nil && n != a.Network {
		errs = errors.AppendField(errs, "Network",
			errors.Wrapf(errors.ErrInput, "token %q belongs to %s, not %s", a.Token, n, a.Network))
	}
	errs = errors.AppendField(errs, "Amount", a.Amount.Validate())
	errs = errors.AppendField(errs, "Kind", a.Kind.Validate())
	return errs
}
