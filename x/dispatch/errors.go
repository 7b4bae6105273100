package dispatch

import "github.com/keygate/vault/errors"

// ErrAdapterNotFound is returned when no adapter is registered for a key.
var ErrAdapterNotFound = errors.Register(1100, "adapter not found")
