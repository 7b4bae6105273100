package app

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/ledger"
	"github.com/keygate/vault/x/proposal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestOpenNode(t *testing.T) {
	home, err := ioutil.TempDir("", "vaultd")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	conf := DefaultConfig()
	ctx := context.Background()

	_, err = Open(ctx, home, conf, log.NewNopLogger())
	assert.True(t, errors.ErrInput.Is(err), "no genesis: %+v", err)

	require.NoError(t, testGenesis(t, 0, alice).Save(filepath.Join(home, GenesisFile)))
	n, err := Open(ctx, home, conf, log.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{ledger.NativeTransferKey, ledger.TokenTransferKey}, n.SupportedAdapters())

	require.NoError(t, n.Ledger.Mint(ledger.NativeContract, vault.NewAccountIdentifier(vaultID, vault.DefaultSubaccount), 100000))
	p, err := n.Propose(as(alice), proposal.Args{
		To:      vault.NewAccountIdentifier(carol, vault.DefaultSubaccount).Hex(),
		Token:   "icp:native",
		Network: vault.NetworkICP,
		Amount:  "1000",
		Kind:    vault.Transfer,
	})
	require.NoError(t, err)
	assert.Equal(t, vault.StatusCompleted, n.Execute(ctx, p.ID).Code)
	n.Close()

	// The state and the ledger are reloaded, the genesis is not applied
	// again.
	n, err = Open(ctx, home, conf, log.NewNopLogger())
	require.NoError(t, err)
	defer n.Close()
	txs, err := n.Transactions()
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	left, err := n.Ledger.Balance(ledger.NativeContract, vault.NewAccountIdentifier(vaultID, vault.DefaultSubaccount))
	require.NoError(t, err)
	assert.Equal(t, uint64(100000-1000-ledger.NativeFee), left)
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("debug")
	assert.NoError(t, err)
	_, err = NewLogger("loud")
	assert.True(t, errors.ErrInput.Is(err))
}
