package app

import (
	"context"
	"testing"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/store"
	"github.com/keygate/vault/vaulttest"
	"github.com/keygate/vault/x/dispatch"
	"github.com/keygate/vault/x/ledger"
	"github.com/keygate/vault/x/proposal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteTokenTransferWithThreshold(t *testing.T) {
	v, _ := newTestVault(t, 0, alice)
	local := ledger.NewLocalLedger(store.MemDBStore())
	v.Adapters().Register(ledger.TokenTransferKey, ledger.NewTokenAdapter(local.Tokens(v.ID())))

	const contract = "ckbtc"
	from := ledger.Account{Owner: v.ID()}.Identifier()
	to := ledger.Account{Owner: carol}
	require.NoError(t, local.Mint(contract, from, 10000000))

	require.NoError(t, v.AddSigner(as(alice), bobby))
	require.NoError(t, v.AddSigner(as(alice), carol))
	require.NoError(t, v.SetThreshold(as(alice), 2))

	p, err := v.Propose(as(alice), proposal.Args{
		To:      to.String(),
		Token:   "icp:icrc1:" + contract,
		Network: vault.NetworkICP,
		Amount:  "1000000",
		Kind:    vault.Transfer,
	})
	require.NoError(t, err)

	status := v.Execute(context.Background(), p.ID)
	assert.Equal(t, vault.Failed("Threshold not met"), status)
	txs, err := v.Transactions()
	require.NoError(t, err)
	assert.Empty(t, txs)

	_, err = v.Approve(as(bobby), p.ID)
	require.NoError(t, err)

	status = v.Execute(context.Background(), p.ID)
	assert.Equal(t, vault.Completed("Successfully transferred an ICRC-1 token."), status)

	got, err := local.Balance(contract, to.Identifier())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000), got)
	got, err = local.Balance(contract, from)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000000-1000000-ledger.TokenFee), got)

	txs, err = v.Transactions()
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, p.ID, txs[0].ProposalID)
	assert.Equal(t, status, txs[0].Status)
	assert.Equal(t, vault.AsUnixTime(genesisTime), txs[0].ExecutedAt)

	p, err = v.Proposal(p.ID)
	require.NoError(t, err)
	assert.True(t, p.Executed)

	assert.Equal(t, vault.Failed("proposal already executed"), v.Execute(context.Background(), p.ID))
	_, err = v.Approve(as(carol), p.ID)
	assert.True(t, errors.ErrState.Is(err))
}

func TestExecuteNativeTransfer(t *testing.T) {
	v, _ := newTestVault(t, 0, alice)
	local := ledger.NewLocalLedger(store.MemDBStore())
	v.Adapters().Register(ledger.NativeTransferKey, ledger.NewNativeAdapter(local.Native(v.ID()), v))

	sub, err := v.AddSubaccount(as(alice), "icp:native")
	require.NoError(t, err)
	from, err := vault.ParseAccountIdentifierHex(sub)
	require.NoError(t, err)
	require.NoError(t, local.Mint(ledger.NativeContract, from, 500000))

	to := vault.NewAccountIdentifier(carol, vault.DefaultSubaccount)
	p, err := v.Propose(as(alice), proposal.Args{
		To:      to.Hex(),
		Token:   "icp:native",
		Network: vault.NetworkICP,
		Amount:  "200000",
		Kind:    vault.Transfer,
	})
	require.NoError(t, err)

	status := v.Execute(context.Background(), p.ID)
	assert.Equal(t, vault.Completed("Successfully transferred native ICP."), status)

	got, err := local.Balance(ledger.NativeContract, to)
	require.NoError(t, err)
	assert.Equal(t, uint64(200000), got)
	got, err = local.Balance(ledger.NativeContract, from)
	require.NoError(t, err)
	assert.Equal(t, uint64(500000-200000-ledger.NativeFee), got)
}

func TestExecuteStatuses(t *testing.T) {
	v, _ := newTestVault(t, 0, alice)

	assert.Equal(t, vault.Failed("proposal not found"), v.Execute(context.Background(), 42))

	// Without an adapter the attempt fails and is logged.
	p, err := v.Propose(as(alice), testArgs())
	require.NoError(t, err)
	status := v.Execute(context.Background(), p.ID)
	vaulttest.AssertStatus(t, vault.StatusFailed, "test:transfer", status)

	// An adapter error fails the attempt as well.
	calls := 0
	v.Adapters().Register("test:transfer", dispatch.AdapterFunc(func(ctx context.Context, req dispatch.Request) (vault.IntentStatus, error) {
		calls++
		if calls == 1 {
			return vault.IntentStatus{}, errors.Wrap(errors.ErrTimeout, "ledger unreachable")
		}
		return vault.Completed("done"), nil
	}))
	status = v.Execute(context.Background(), p.ID)
	vaulttest.AssertStatus(t, vault.StatusFailed, "ledger unreachable", status)

	p, err = v.Proposal(p.ID)
	require.NoError(t, err)
	assert.False(t, p.Executed)

	// A failed proposal can be executed again.
	assert.Equal(t, vault.Completed("done"), v.Execute(context.Background(), p.ID))

	txs, err := v.Transactions()
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for i, want := range []vault.StatusCode{vault.StatusFailed, vault.StatusFailed, vault.StatusCompleted} {
		assert.Equal(t, uint64(i), txs[i].Index)
		assert.Equal(t, want, txs[i].Status.Code)
	}
}

func TestExecuteInFlight(t *testing.T) {
	v, _ := newTestVault(t, 0, alice)

	started := make(chan struct{})
	release := make(chan struct{})
	v.Adapters().Register("test:transfer", dispatch.AdapterFunc(func(ctx context.Context, req dispatch.Request) (vault.IntentStatus, error) {
		close(started)
		<-release
		return vault.Completed("done"), nil
	}))

	p, err := v.Propose(as(alice), testArgs())
	require.NoError(t, err)

	result := make(chan vault.IntentStatus)
	go func() { result <- v.Execute(context.Background(), p.ID) }()
	<-started

	assert.Equal(t, vault.Failed("execution already in progress"), v.Execute(context.Background(), p.ID))

	// Votes are still recorded while the transfer runs.
	require.NoError(t, v.AddSigner(as(alice), bobby))
	_, err = v.Approve(as(bobby), p.ID)
	require.NoError(t, err)

	close(release)
	assert.Equal(t, vault.Completed("done"), <-result)
	assert.Equal(t, vault.Failed("proposal already executed"), v.Execute(context.Background(), p.ID))

	txs, err := v.Transactions()
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
