package app

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/keygate/vault"
	"github.com/keygate/vault/store"
	"github.com/keygate/vault/vaulttest"
	"github.com/stretchr/testify/require"
)

var (
	vaultID = vaulttest.SequencePrincipal(100)
	alice   = vaulttest.SequencePrincipal(1)
	bobby   = vaulttest.SequencePrincipal(2)
	carol   = vaulttest.SequencePrincipal(3)
	mallory = vaulttest.SequencePrincipal(66)
)

var genesisTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// testGenesis returns a genesis with the given signers. A zero threshold is
// left out of the configuration.
func testGenesis(t testing.TB, threshold uint64, signers ...vault.Principal) Genesis {
	t.Helper()
	opts := vault.Options{}
	if len(signers) > 0 {
		raw, err := json.Marshal(signers)
		require.NoError(t, err)
		opts["signers"] = raw
	}
	if threshold > 0 {
		opts["conf"] = json.RawMessage(fmt.Sprintf(`{"threshold": {"threshold": %d}}`, threshold))
	}
	return Genesis{Vault: vaultID, AppState: opts}
}

// newTestVault returns a vault kept in memory with a stopped clock.
func newTestVault(t testing.TB, threshold uint64, signers ...vault.Principal) (*Vault, *vaulttest.Clock) {
	t.Helper()
	v, err := InitGenesis(store.MemDBStore(), testGenesis(t, threshold, signers...))
	require.NoError(t, err)
	clock := vaulttest.NewClock(genesisTime)
	return v.WithClock(clock.Now), clock
}

func as(p vault.Principal) context.Context {
	return vault.WithCaller(context.Background(), p)
}
