/*
Package app wires the extensions into a vault: the signer registry, the
threshold policy, the proposal store, the adapter registry and the
transaction log, all sharing one committed store.

Every state changing operation runs in a cache wrap of the store that is
written and committed on success and discarded on failure. The context of
each call carries the calling principal (see vault.WithCaller).
*/
package app
