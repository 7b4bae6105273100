package threshold

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/gconf"
)

// Initializer loads the threshold from the "conf" section of the genesis
// file. It must run after the signers are loaded.
type Initializer struct {
	Signers SignerCounter
}

var _ vault.Initializer = (*Initializer)(nil)

// FromGenesis stores the configured threshold, checking it against the
// number of signers.
func (i *Initializer) FromGenesis(opts vault.Options, db vault.KVStore) error {
	var c Config
	if err := gconf.InitConfig(db, opts, packageName, &c); err != nil {
		return err
	}
	if c.Threshold == 0 {
		return nil
	}
	count, err := i.Signers.Len(db)
	if err != nil {
		return err
	}
	if c.Threshold > uint64(count) {
		return errors.Wrapf(errors.ErrInput, "threshold %d exceeds %d signers", c.Threshold, count)
	}
	return nil
}
