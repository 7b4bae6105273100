/*
Package signers keeps the ordered set of principals that are allowed to
propose, approve and reject transactions of the vault.

The set is stored as a single record so that its insertion order is part of
the state. Principals can only be added, never removed.

An Initializer loads the initial signers from the genesis file:

	"signers": ["2vxsx-fae", ...]
*/
package signers
