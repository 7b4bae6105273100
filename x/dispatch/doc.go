/*
Package dispatch routes a transaction to the ledger adapter that can execute
it.

Adapters are registered under a key derived from a token path and an
operation kind, for example "icp:native:transfer" or "icp:icrc1:transfer".
All contracts of one token standard share the adapter of that standard.
*/
package dispatch
