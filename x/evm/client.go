package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/keygate/vault/errors"
)

// Client is the part of the JSON-RPC API used by the adapter. It is
// implemented by *ethclient.Client.
type Client interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

var _ Client = (*ethclient.Client)(nil)

// Dial connects to the RPC endpoint of every chain.
func Dial(ctx context.Context, chains []Chain) (map[int64]Client, error) {
	clients := make(map[int64]Client, len(chains))
	for _, c := range chains {
		cl, err := ethclient.DialContext(ctx, c.RPC)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrNetwork, "dial %s: %s", c.Network, err)
		}
		clients[c.ID] = cl
	}
	return clients, nil
}

// KeySigner signs transactions with a secp256k1 private key.
type KeySigner struct {
	key *ecdsa.PrivateKey
}

// NewKeySigner returns a signer using the given key.
func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

// GenerateKeySigner returns a signer with a fresh random key.
func GenerateKeySigner() (*KeySigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return NewKeySigner(key), nil
}

// KeySignerFromHex loads a hex encoded private key.
func KeySignerFromHex(s string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "evm key: %s", err)
	}
	return NewKeySigner(key), nil
}

// Address returns the address of the key.
func (s *KeySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// Hex returns the hex encoded private key.
func (s *KeySigner) Hex() string {
	return common.Bytes2Hex(crypto.FromECDSA(s.key))
}

// SignTx signs the transaction for the given chain.
func (s *KeySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}
