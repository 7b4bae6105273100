/*
Package vault defines the common types and interfaces shared by the custodial
vault extensions, as well as implementations of some of the simpler
components (when interfaces would be too much overhead).

A vault is controlled by a set of signers. A signer proposes an outbound
transfer, other signers vote, and once the approvals reach the threshold anybody can
execute it. Execution is dispatched to a ledger adapter selected by
the token path of the proposal, and the outcome is appended to the
transaction log.

We pass context through context.Context between the application and the
extensions. There should exist two functions for every XYZ of type T that we
want to support in Context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)
*/
package vault
