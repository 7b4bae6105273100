package app

import (
	"sync"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// CommitStore serializes access to a CommitKVStore. Updates are applied to
// a cache wrap and committed as one version.
type CommitStore struct {
	mu        sync.RWMutex
	committed vault.CommitKVStore
}

// NewCommitStore loads the latest version of the store.
func NewCommitStore(store vault.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{committed: store}, nil
}

// CommitInfo returns the current version and hash.
func (cs *CommitStore) CommitInfo() (vault.CommitID, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.committed.LatestVersion()
}

// Update runs fn on a cache wrap. The changes are committed if fn succeeds
// and dropped otherwise.
func (cs *CommitStore) Update(fn func(db vault.KVStore) error) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cache := cs.committed.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write cache")
	}
	if _, err := cs.committed.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// View runs fn on a read only snapshot of the committed state.
func (cs *CommitStore) View(fn func(db vault.ReadOnlyKVStore) error) error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	cache := cs.committed.CacheWrap()
	defer cache.Discard()
	return fn(cache)
}
