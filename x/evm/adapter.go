package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/dispatch"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultTimeout      = 2 * time.Minute
)

// Adapter transfers ether on every configured chain. The chain is selected
// by the network segment of the token path.
type Adapter struct {
	signer  *KeySigner
	order   []Chain
	chains  map[vault.Network]Chain
	clients map[int64]Client

	pollInterval time.Duration
	timeout      time.Duration

	// mu guards nonces and broadcast and serializes the submission of
	// transactions, so that no nonce is used twice.
	mu     sync.Mutex
	nonces map[int64]uint64
	// broadcast holds the signed transaction of every proposal that was
	// sent but not yet seen in a block.
	broadcast map[broadcastKey]*types.Transaction
}

type broadcastKey struct {
	chain    int64
	proposal uint64
}

var _ dispatch.Adapter = (*Adapter)(nil)

// NewAdapter returns an adapter using one client per chain ID.
func NewAdapter(signer *KeySigner, chains []Chain, clients map[int64]Client) *Adapter {
	a := &Adapter{
		signer:       signer,
		order:        chains,
		chains:       make(map[vault.Network]Chain, len(chains)),
		clients:      clients,
		pollInterval: defaultPollInterval,
		timeout:      defaultTimeout,
		nonces:       make(map[int64]uint64),
		broadcast:    make(map[broadcastKey]*types.Transaction),
	}
	for _, c := range chains {
		a.chains[c.Network] = c
	}
	return a
}

// WithPolling changes how often and for how long the adapter waits for a
// transaction to be included.
func (a *Adapter) WithPolling(interval, timeout time.Duration) *Adapter {
	a.pollInterval = interval
	a.timeout = timeout
	return a
}

// Register adds the adapter to the registry for every chain.
func (a *Adapter) Register(r *dispatch.Registry) {
	for _, c := range a.order {
		r.Register(c.TransferKey(), a)
	}
}

// Address returns the address of the vault on all chains.
func (a *Adapter) Address() string {
	return a.signer.Address().Hex()
}

// Balance returns the balance of the vault on the chain of the network, in
// ether.
func (a *Adapter) Balance(ctx context.Context, network vault.Network) (vault.Amount, error) {
	chain, client, err := a.chain(network)
	if err != nil {
		return "", err
	}
	wei, err := client.BalanceAt(ctx, a.signer.Address(), nil)
	if err != nil {
		return "", errors.Wrapf(errors.ErrNetwork, "balance on %s: %s", chain.Network, err)
	}
	return vault.AmountFromBaseUnits(wei, Decimals), nil
}

func (a *Adapter) chain(network vault.Network) (Chain, Client, error) {
	chain, ok := a.chains[network]
	if !ok {
		return Chain{}, nil, errors.Wrap(ErrUnsupportedChain, string(network))
	}
	client, ok := a.clients[chain.ID]
	if !ok {
		return Chain{}, nil, errors.Wrapf(ErrUnsupportedChain, "no client for %s", network)
	}
	return chain, client, nil
}

// Execute sends the amount of ether to the hex address of the request and
// waits until the transaction is included. A proposal whose transaction was
// sent but not included sends the same signed transaction again, so a retry
// never pays twice.
func (a *Adapter) Execute(ctx context.Context, req dispatch.Request) (vault.IntentStatus, error) {
	chain, client, err := a.chain(vault.Network(req.Token.Network()))
	if err != nil {
		return vault.IntentStatus{}, err
	}
	if !common.IsHexAddress(req.To) {
		return vault.IntentStatus{}, errors.Wrapf(errors.ErrInput, "%q is not an address", req.To)
	}
	value, err := req.Amount.BaseUnits(Decimals)
	if err != nil {
		return vault.IntentStatus{}, err
	}

	key := broadcastKey{chain: chain.ID, proposal: req.ProposalID}
	logger := vault.GetLogger(ctx).With("chain", string(chain.Network))
	tx := a.sent(key)
	if tx != nil {
		logger = logger.With("tx", tx.Hash().Hex())
		// The node rejects a transaction it already knows or has mined.
		if err := client.SendTransaction(ctx, tx); err != nil {
			logger.Debug("evm transaction resend", "err", err)
		}
		logger.Info("evm transaction resent", "nonce", tx.Nonce())
	} else {
		tx, err = a.submit(ctx, key, client, common.HexToAddress(req.To), value)
		if err != nil {
			return vault.IntentStatus{}, err
		}
		logger = logger.With("tx", tx.Hash().Hex())
		logger.Info("evm transaction sent", "nonce", tx.Nonce())
	}

	receipt, err := a.waitMined(ctx, client, tx.Hash())
	if err != nil {
		return vault.IntentStatus{}, err
	}
	a.forget(key)
	if receipt.Status != types.ReceiptStatusSuccessful {
		return vault.IntentStatus{}, errors.Wrapf(ErrReverted, "%s in block %s", tx.Hash().Hex(), receipt.BlockNumber)
	}
	logger.Info("evm transaction included", "block", receipt.BlockNumber)
	return vault.Completed(fmt.Sprintf("Successfully transferred on %s: %s", chain.Network, tx.Hash().Hex())), nil
}

func (a *Adapter) sent(key broadcastKey) *types.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.broadcast[key]
}

func (a *Adapter) forget(key broadcastKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.broadcast, key)
}

// submit signs and sends a transfer. A transaction accepted by the node keeps
// its nonce until it is included, so the next nonce is cached from then on
// and queried again after a failed submission.
func (a *Adapter) submit(ctx context.Context, key broadcastKey, client Client, to common.Address, value *big.Int) (*types.Transaction, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	nonce, ok := a.nonces[key.chain]
	if !ok {
		n, err := client.PendingNonceAt(ctx, a.signer.Address())
		if err != nil {
			return nil, errors.Wrapf(errors.ErrNetwork, "nonce: %s", err)
		}
		nonce = n
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "gas price: %s", err)
	}
	tx, err := a.signer.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      GasLimit,
		GasPrice: gasPrice,
	}), big.NewInt(key.chain))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "sign: %s", err)
	}
	if err := client.SendTransaction(ctx, tx); err != nil {
		delete(a.nonces, key.chain)
		return nil, errors.Wrapf(errors.ErrNetwork, "send: %s", err)
	}
	a.nonces[key.chain] = nonce + 1
	a.broadcast[key] = tx
	return tx, nil
}

func (a *Adapter) waitMined(ctx context.Context, client Client, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return receipt, nil
		case err != ethereum.NotFound:
			vault.GetLogger(ctx).Debug("receipt query failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(errors.ErrTimeout, "transaction %s not included", hash.Hex())
		case <-ticker.C:
		}
	}
}
