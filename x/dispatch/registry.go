package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// Registry maps adapter keys to adapters. Adapters are kept in registration
// order and addressed by their position, so a lookup never copies one.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
	keys     []string
	index    map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds the adapter under the given key, replacing any adapter that
// was registered under it before.
func (r *Registry) Register(key string, a Adapter) {
	if key == "" || a == nil {
		panic("adapter key and adapter are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[key]; ok {
		r.adapters[i] = a
		return
	}
	r.index[key] = len(r.adapters)
	r.adapters = append(r.adapters, a)
	r.keys = append(r.keys, key)
}

// Resolve returns the adapter registered under the key, or
// ErrAdapterNotFound.
func (r *Registry) Resolve(key string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[key]
	if !ok {
		return nil, errors.Wrap(ErrAdapterNotFound, key)
	}
	return r.adapters[i], nil
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.keys...)
}

// Dispatch executes the request with its adapter. It never fails: a missing
// adapter, an adapter error and a panic all result in a Failed status, so
// that every attempt can be recorded.
func (r *Registry) Dispatch(ctx context.Context, req Request) vault.IntentStatus {
	key := req.Key()
	ctx = vault.WithLogInfo(ctx, "adapter", key, "proposal", req.ProposalID)
	logger := vault.GetLogger(ctx)

	a, err := r.Resolve(key)
	if err != nil {
		logger.Error("cannot dispatch", "err", err)
		return vault.Failed(err.Error())
	}

	status, err := execute(ctx, a, req)
	if err != nil {
		logger.Error("adapter failed", "err", err)
		return vault.Failed(err.Error())
	}
	if !status.IsTerminal() {
		logger.Error("adapter returned a transient status", "status", status.String())
		return vault.Failed(fmt.Sprintf("adapter returned %s", status))
	}
	logger.Info("dispatched", "status", status.String())
	return status
}

func execute(ctx context.Context, a Adapter, req Request) (status vault.IntentStatus, err error) {
	defer errors.Recover(&err)
	return a.Execute(ctx, req)
}
