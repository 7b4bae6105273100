package evm

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainClient simulates a node that includes every transaction after a
// number of receipt queries.
type chainClient struct {
	mu           sync.Mutex
	pendingNonce uint64
	nonceQueries int
	sent         []*types.Transaction
	sendErr      error
	pollsToMine  int
	polls        int
	revert       bool
	balance      *big.Int
}

func (c *chainClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nonceQueries++
	return c.pendingNonce, nil
}

func (c *chainClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1000000000), nil
}

func (c *chainClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, tx)
	c.polls = 0
	return nil
}

func (c *chainClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls++
	if c.pollsToMine < 0 || c.polls <= c.pollsToMine {
		return nil, ethereum.NotFound
	}
	status := types.ReceiptStatusSuccessful
	if c.revert {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{Status: status, TxHash: hash, BlockNumber: big.NewInt(42)}, nil
}

func (c *chainClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return c.balance, nil
}

const receiver = "0x00000000000000000000000000000000000000aa"

func newTestAdapter(t *testing.T, client *chainClient) *Adapter {
	t.Helper()
	signer, err := GenerateKeySigner()
	require.NoError(t, err)
	chains := []Chain{{Network: vault.NetworkETH, ID: 11155111}}
	return NewAdapter(signer, chains, map[int64]Client{11155111: client}).
		WithPolling(time.Millisecond, 200*time.Millisecond)
}

func transfer(amount vault.Amount) dispatch.Request {
	return dispatch.Request{
		To:      receiver,
		Token:   "eth:native",
		Network: vault.NetworkETH,
		Amount:  amount,
		Kind:    vault.Transfer,
	}
}

func TestExecuteTransfer(t *testing.T) {
	client := &chainClient{pendingNonce: 7, pollsToMine: 2}
	a := newTestAdapter(t, client)

	status, err := a.Execute(context.Background(), transfer("0.000000000000000001"))
	require.NoError(t, err)
	assert.Equal(t, vault.StatusCompleted, status.Code)

	require.Len(t, client.sent, 1)
	tx := client.sent[0]
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, "1", tx.Value().String())
	assert.Equal(t, uint64(GasLimit), tx.Gas())
	assert.Equal(t, common.HexToAddress(receiver), *tx.To())
	assert.Equal(t, "11155111", tx.ChainId().String())

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(11155111)), tx)
	require.NoError(t, err)
	assert.Equal(t, a.Address(), from.Hex())
	assert.Contains(t, status.Message, tx.Hash().Hex())

	// the nonce is cached after the first transaction
	_, err = a.Execute(context.Background(), transfer("1.5"))
	require.NoError(t, err)
	require.Len(t, client.sent, 2)
	assert.Equal(t, uint64(8), client.sent[1].Nonce())
	assert.Equal(t, 1, client.nonceQueries)
	assert.Equal(t, "1500000000000000000", client.sent[1].Value().String())
}

func TestExecuteFailures(t *testing.T) {
	cases := map[string]struct {
		client  *chainClient
		req     dispatch.Request
		wantErr *errors.Error
	}{
		"unsupported chain": {
			client: &chainClient{},
			req: func() dispatch.Request {
				r := transfer("1")
				r.Token = "polygon:native"
				return r
			}(),
			wantErr: ErrUnsupportedChain,
		},
		"not an address": {
			client: &chainClient{},
			req: func() dispatch.Request {
				r := transfer("1")
				r.To = "test"
				return r
			}(),
			wantErr: errors.ErrInput,
		},
		"more decimals than wei": {
			client:  &chainClient{},
			req:     transfer("0.0000000000000000001"),
			wantErr: errors.ErrAmount,
		},
		"node rejects": {
			client:  &chainClient{sendErr: errors.ErrNetwork.New("nonce too low")},
			req:     transfer("1"),
			wantErr: errors.ErrNetwork,
		},
		"reverted": {
			client:  &chainClient{revert: true},
			req:     transfer("1"),
			wantErr: ErrReverted,
		},
		"never included": {
			client:  &chainClient{pollsToMine: -1},
			req:     transfer("1"),
			wantErr: errors.ErrTimeout,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := newTestAdapter(t, tc.client)
			_, err := a.Execute(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
		})
	}
}

func TestNonceIsQueriedAgainAfterFailedSend(t *testing.T) {
	client := &chainClient{pendingNonce: 3}
	a := newTestAdapter(t, client)

	_, err := a.Execute(context.Background(), transfer("1"))
	require.NoError(t, err)

	client.sendErr = errors.ErrNetwork.New("connection reset")
	_, err = a.Execute(context.Background(), transfer("1"))
	require.Error(t, err)

	client.sendErr = nil
	client.pendingNonce = 10
	_, err = a.Execute(context.Background(), transfer("1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), client.sent[len(client.sent)-1].Nonce())
}

func TestTimedOutTransferIsResentOnRetry(t *testing.T) {
	client := &chainClient{pendingNonce: 4, pollsToMine: -1}
	a := newTestAdapter(t, client)

	req := transfer("1")
	req.ProposalID = 9
	_, err := a.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.ErrTimeout.Is(err), "want timeout, got %+v", err)
	require.Len(t, client.sent, 1)
	first := client.sent[0]

	// still not included: the same transaction is sent again
	_, err = a.Execute(context.Background(), req)
	assert.True(t, errors.ErrTimeout.Is(err), "want timeout, got %+v", err)

	client.pollsToMine = 0
	status, err := a.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, status.Message, first.Hash().Hex())

	require.Len(t, client.sent, 3)
	for _, tx := range client.sent {
		assert.Equal(t, first.Hash(), tx.Hash())
		assert.Equal(t, uint64(4), tx.Nonce())
	}

	// once included, another proposal takes the next nonce
	other := transfer("1")
	other.ProposalID = 10
	_, err = a.Execute(context.Background(), other)
	require.NoError(t, err)
	require.Len(t, client.sent, 4)
	assert.Equal(t, uint64(5), client.sent[3].Nonce())
	assert.Equal(t, 1, client.nonceQueries)
}

func TestRevertedTransferIsSignedAgain(t *testing.T) {
	client := &chainClient{pendingNonce: 1, revert: true}
	a := newTestAdapter(t, client)

	req := transfer("1")
	req.ProposalID = 3
	_, err := a.Execute(context.Background(), req)
	assert.True(t, ErrReverted.Is(err), "want revert, got %+v", err)

	client.revert = false
	_, err = a.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, client.sent, 2)
	assert.Equal(t, uint64(2), client.sent[1].Nonce())
}

func TestRegisterAndBalance(t *testing.T) {
	signer, err := GenerateKeySigner()
	require.NoError(t, err)
	client := &chainClient{balance: big.NewInt(2500000000000000000)}
	clients := map[int64]Client{}
	for _, c := range DefaultChains {
		clients[c.ID] = client
	}
	a := NewAdapter(signer, DefaultChains, clients)

	r := dispatch.NewRegistry()
	a.Register(r)
	assert.Equal(t, []string{"eth:native:transfer", "base:native:transfer", "polygon:native:transfer"}, r.Keys())

	bal, err := a.Balance(context.Background(), vault.NetworkBase)
	require.NoError(t, err)
	assert.Equal(t, vault.Amount("2.5"), bal)

	_, err = a.Balance(context.Background(), vault.NetworkICP)
	assert.True(t, ErrUnsupportedChain.Is(err))
}

func TestKeySignerHex(t *testing.T) {
	signer, err := GenerateKeySigner()
	require.NoError(t, err)
	back, err := KeySignerFromHex(signer.Hex())
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), back.Address())

	_, err = KeySignerFromHex("zz")
	assert.True(t, errors.ErrInput.Is(err))
}
