package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/signers"
	"github.com/keygate/vault/x/threshold"
)

// Genesis file format. Vault is the principal owning the funds, AppState
// holds the options of the extensions.
type Genesis struct {
	Vault    vault.Principal `json:"vault"`
	AppState vault.Options   `json:"app_state"`
}

// LoadGenesis reads a genesis file.
func LoadGenesis(path string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "parse genesis: %s", err)
	}
	return gen, nil
}

// Save writes the genesis file.
func (g Genesis) Save(path string) error {
	raw, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "write genesis: %s", err)
	}
	return nil
}

// Initializers returns the genesis initializers of all extensions, in the
// order they must run.
func Initializers() vault.Initializer {
	return vault.ChainInitializers(
		&signers.Initializer{},
		&threshold.Initializer{Signers: signers.NewRegistry()},
	)
}

const vaultIDKey = "_vault:id"

// loadVaultID returns the principal of the vault, or nil before genesis.
func loadVaultID(db vault.ReadOnlyKVStore) (vault.Principal, error) {
	raw, err := db.Get([]byte(vaultIDKey))
	if err != nil {
		return nil, errors.Wrap(err, "load vault id")
	}
	if raw == nil {
		return nil, nil
	}
	return vault.Principal(raw), nil
}

// saveVaultID stores the principal of the vault. It can only be set once.
func saveVaultID(db vault.KVStore, id vault.Principal) error {
	if len(id) == 0 {
		return errors.Wrap(errors.ErrEmpty, "vault principal")
	}
	if err := id.Validate(); err != nil {
		return errors.Wrap(err, "vault principal")
	}
	exists, err := db.Has([]byte(vaultIDKey))
	if err != nil {
		return errors.Wrap(err, "load vault id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify vault id after genesis init")
	}
	return db.Set([]byte(vaultIDKey), id)
}
