package signers

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/orm"
)

var setKey = []byte("set")

// Registry gives access to the signer set stored in the database.
type Registry struct {
	bucket orm.ModelBucket
}

// NewRegistry returns a registry using the "signers" bucket.
func NewRegistry() *Registry {
	return &Registry{bucket: orm.NewModelBucket("signers")}
}

func (r *Registry) load(db vault.ReadOnlyKVStore) (*SignerSet, error) {
	var set SignerSet
	switch err := r.bucket.One(db, setKey, &set); {
	case err == nil:
		return &set, nil
	case errors.ErrNotFound.Is(err):
		return &SignerSet{}, nil
	default:
		return nil, errors.Wrap(err, "load signers")
	}
}

// Add appends the principal to the set. It fails with ErrDuplicate if the
// principal is already a signer. The empty and the anonymous principal
// cannot sign.
func (r *Registry) Add(db vault.KVStore, p vault.Principal) error {
	if err := p.Validate(); err != nil {
		return errors.Wrap(err, "signer")
	}
	switch {
	case len(p) == 0:
		return errors.Wrap(errors.ErrEmpty, "signer")
	case p.IsAnonymous():
		return errors.Wrap(errors.ErrInput, "anonymous principal cannot sign")
	}
	set, err := r.load(db)
	if err != nil {
		return err
	}
	if set.Contains(p) {
		return errors.Wrap(errors.ErrDuplicate, "Signer already exists")
	}
	set.Signers = append(set.Signers, p)
	return r.bucket.Put(db, setKey, set)
}

// List returns all signers in the order they were added.
func (r *Registry) List(db vault.ReadOnlyKVStore) ([]vault.Principal, error) {
	set, err := r.load(db)
	if err != nil {
		return nil, err
	}
	return set.Signers, nil
}

// Contains returns true if the principal is a signer.
func (r *Registry) Contains(db vault.ReadOnlyKVStore, p vault.Principal) (bool, error) {
	set, err := r.load(db)
	if err != nil {
		return false, err
	}
	return set.Contains(p), nil
}

// Len returns the number of signers.
func (r *Registry) Len(db vault.ReadOnlyKVStore) (int, error) {
	set, err := r.load(db)
	if err != nil {
		return 0, err
	}
	return len(set.Signers), nil
}

// RequireSigner returns ErrUnauthorized unless the principal is a signer.
func (r *Registry) RequireSigner(db vault.ReadOnlyKVStore, p vault.Principal) error {
	ok, err := r.Contains(db, p)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not a signer", p)
	}
	return nil
}
