/*
Package proposal implements the store of transactions that wait for the
approval of the signers.

A proposal is created by a signer, who also counts as its first approval.
Every other signer can then approve or reject it once. Proposals are never
deleted: after a successful execution they are only flagged as executed.
*/
package proposal
