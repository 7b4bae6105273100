package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/store"
	"github.com/keygate/vault/store/iavl"
	"github.com/keygate/vault/x/evm"
	"github.com/keygate/vault/x/ledger"
	"github.com/tendermint/tendermint/libs/log"
)

// Files of a home directory.
const (
	ConfigFile  = "config.json"
	GenesisFile = "genesis.json"
	dataDir     = "data"
)

// Node is a vault opened from a home directory, with its ledger adapters
// registered.
type Node struct {
	*Vault

	// Ledger is set when the local ledger is enabled.
	Ledger *ledger.LocalLedger

	closers []func()
}

// Close releases the databases.
func (n *Node) Close() {
	for _, c := range n.closers {
		c()
	}
}

// Open loads the vault kept in the home directory. The state is initialized
// from the genesis file on first use.
func Open(ctx context.Context, home string, conf Config, logger log.Logger) (*Node, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	n := &Node{}
	db, err := openStore(conf.Backend, filepath.Join(home, dataDir), "vault", n)
	if err != nil {
		return nil, err
	}

	v, err := New(db)
	if errors.ErrState.Is(err) {
		var gen Genesis
		if gen, err = LoadGenesis(filepath.Join(home, GenesisFile)); err == nil {
			v, err = InitGenesis(db, gen)
		}
	}
	if err != nil {
		n.Close()
		return nil, err
	}
	n.Vault = v.WithLogger(logger)

	if conf.LocalLedger {
		ldb, err := openStore(conf.Backend, filepath.Join(home, dataDir), "ledger", n)
		if err != nil {
			n.Close()
			return nil, err
		}
		n.Ledger = ledger.NewLocalLedger(ldb)
		v.Adapters().Register(ledger.NativeTransferKey, ledger.NewNativeAdapter(n.Ledger.Native(v.ID()), v))
		v.Adapters().Register(ledger.TokenTransferKey, ledger.NewTokenAdapter(n.Ledger.Tokens(v.ID())))
	}

	if conf.EVM.Key != "" {
		a, err := openChains(ctx, conf.EVM)
		if err != nil {
			n.Close()
			return nil, err
		}
		v.WithChains(a)
	}
	logger.Info("vault opened", "vault", v.ID().String(), "adapters", len(v.SupportedAdapters()))
	return n, nil
}

func openStore(backend, dir, name string, n *Node) (vault.CommitKVStore, error) {
	if backend == BackendMemDB {
		return store.MemDBStore(), nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create %s: %s", dir, err)
	}
	if backend == BackendGoLevelDB {
		s, err := store.NewGoLevelDBStore(name, dir)
		if err != nil {
			return nil, err
		}
		n.closers = append(n.closers, s.Close)
		return s, nil
	}
	s, err := iavl.NewCommitStore(dir, name)
	if err != nil {
		return nil, err
	}
	n.closers = append(n.closers, s.Close)
	return s, nil
}

func openChains(ctx context.Context, conf EVMConfig) (*evm.Adapter, error) {
	signer, err := evm.KeySignerFromHex(conf.Key)
	if err != nil {
		return nil, err
	}
	interval, timeout, err := conf.polling()
	if err != nil {
		return nil, err
	}
	clients, err := evm.Dial(ctx, conf.Chains)
	if err != nil {
		return nil, err
	}
	return evm.NewAdapter(signer, conf.Chains, clients).WithPolling(interval, timeout), nil
}

// NewLogger returns a logfmt logger writing to stderr, filtered by level.
func NewLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "log level: %s", err)
	}
	return log.NewFilter(logger, opt), nil
}
