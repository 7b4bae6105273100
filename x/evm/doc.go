/*
Package evm implements the adapter transferring ether on EVM chains.

The vault signs legacy transactions with a single secp256k1 key, which gives
it the same address on every chain. Amounts are given in ether and converted
to wei with integer arithmetic.
*/
package evm
