package signers

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ vault.Initializer = (*Initializer)(nil)

// FromGenesis will parse the initial signers from genesis and save them in
// the database, keeping their order.
func (*Initializer) FromGenesis(opts vault.Options, db vault.KVStore) error {
	var signers []vault.Principal
	if err := opts.ReadOptions("signers", &signers); err != nil {
		return err
	}
	r := NewRegistry()
	for i, p := range signers {
		if err := r.Add(db, p); err != nil {
			return errors.Wrapf(err, "signer #%d", i)
		}
	}
	return nil
}
