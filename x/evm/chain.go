package evm

import (
	"github.com/keygate/vault"
)

// GasLimit of a plain value transfer.
const GasLimit = 21000

// Decimals of ether.
const Decimals = 18

// Chain describes an EVM network the vault can transfer on.
type Chain struct {
	Network vault.Network `json:"network" yaml:"network"`
	ID      int64         `json:"chain_id" yaml:"chain_id"`
	RPC     string        `json:"rpc" yaml:"rpc"`
}

// DefaultChains are the test networks supported out of the box.
var DefaultChains = []Chain{
	{Network: vault.NetworkETH, ID: 11155111, RPC: "https://rpc.sepolia.org"},
	{Network: vault.NetworkBase, ID: 84532, RPC: "https://sepolia.base.org"},
	{Network: vault.NetworkPolygon, ID: 80002, RPC: "https://rpc-amoy.polygon.technology"},
}

// TransferKey returns the adapter registry key for transfers on the chain.
func (c Chain) TransferKey() string {
	return vault.TokenPath(string(c.Network) + ":native").Key(vault.Transfer)
}
