package signers

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// maxSigners bounds the size of the set, every authorization check is linear
// in it.
const maxSigners = 256

// SignerSet is the ordered list of unique signers.
type SignerSet struct {
	Signers []vault.Principal
}

// Validate ensures that every principal is valid and unique.
func (s *SignerSet) Validate() error {
	if len(s.Signers) > maxSigners {
		return errors.Wrapf(errors.ErrInput, "more than %d signers", maxSigners)
	}
	var errs error
	for i, p := range s.Signers {
		if err := p.Validate(); err != nil {
			errs = errors.AppendField(errs, "Signers", errors.Wrapf(err, "signer #%d", i))
			continue
		}
		if vault.ContainsPrincipal(s.Signers[:i], p) {
			errs = errors.AppendField(errs, "Signers", errors.Wrapf(errors.ErrDuplicate, "signer %s", p))
		}
	}
	return errs
}

// Contains returns true if the principal is in the set.
func (s *SignerSet) Contains(p vault.Principal) bool {
	return vault.ContainsPrincipal(s.Signers, p)
}
