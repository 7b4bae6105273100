/*
Package ledger implements the adapters transferring native ICP and ICRC-1
tokens, the book of per-token subaccounts of the vault, and LocalLedger, an
in-process ledger service used for development and tests.

Amounts handed to these adapters are integer quantities of the smallest unit
of the token (e8s for ICP).
*/
package ledger
