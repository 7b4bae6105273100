package threshold

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/gconf"
)

const packageName = "threshold"

// DefaultThreshold is used until a threshold is configured.
const DefaultThreshold = 1

// Config is the persisted threshold.
type Config struct {
	Threshold uint64 `json:"threshold"`
}

var _ gconf.Configuration = (*Config)(nil)

// Validate requires at least one approval.
func (c *Config) Validate() error {
	if c.Threshold == 0 {
		return errors.Wrap(errors.ErrInput, "threshold must be at least 1")
	}
	return nil
}

// SignerCounter is implemented by the signer registry.
type SignerCounter interface {
	Len(db vault.ReadOnlyKVStore) (int, error)
}

// Policy compares the approvals of a proposal with the configured threshold.
type Policy struct {
	signers SignerCounter
}

// NewPolicy returns a policy bounding the threshold by the number of signers.
func NewPolicy(signers SignerCounter) *Policy {
	return &Policy{signers: signers}
}

// Get returns the current threshold.
func (p *Policy) Get(db vault.ReadOnlyKVStore) (uint64, error) {
	var c Config
	switch err := gconf.Load(db, packageName, &c); {
	case err == nil:
		return c.Threshold, nil
	case errors.ErrNotFound.Is(err):
		return DefaultThreshold, nil
	default:
		return 0, err
	}
}

// Set overwrites the threshold. It must be between one and the number of
// signers, otherwise no proposal could ever be executed.
func (p *Policy) Set(db vault.KVStore, n uint64) error {
	count, err := p.signers.Len(db)
	if err != nil {
		return errors.Wrap(err, "count signers")
	}
	if n > uint64(count) {
		return errors.Wrapf(errors.ErrInput, "threshold %d exceeds %d signers", n, count)
	}
	return gconf.Save(db, packageName, &Config{Threshold: n})
}

// IsMet returns true if the number of approvals reaches the threshold.
func (p *Policy) IsMet(db vault.ReadOnlyKVStore, approvals int) (bool, error) {
	n, err := p.Get(db)
	if err != nil {
		return false, err
	}
	return uint64(approvals) >= n, nil
}
