package ledger

import (
	"encoding/hex"
	"strings"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// Account is the address format of token ledgers: an owner and one of its
// subaccounts.
type Account struct {
	Owner      vault.Principal
	Subaccount vault.Subaccount
}

// ParseAccount reads "<principal>" or "<principal>.<hex subaccount>".
func ParseAccount(s string) (Account, error) {
	owner, sub := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		owner, sub = s[:i], s[i+1:]
	}
	p, err := vault.ParsePrincipal(owner)
	if err != nil {
		return Account{}, errors.Wrap(err, "account owner")
	}
	acc := Account{Owner: p}
	if sub == "" {
		return acc, nil
	}
	raw, err := hex.DecodeString(sub)
	if err != nil {
		return Account{}, errors.Wrapf(errors.ErrInput, "subaccount %q is not hex", sub)
	}
	if acc.Subaccount, err = vault.ParseSubaccount(raw); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Identifier returns the account identifier of the account.
func (a Account) Identifier() vault.AccountIdentifier {
	return vault.NewAccountIdentifier(a.Owner, a.Subaccount)
}

func (a Account) String() string {
	if a.Subaccount.IsDefault() {
		return a.Owner.String()
	}
	return a.Owner.String() + "." + hex.EncodeToString(a.Subaccount.Bytes())
}
