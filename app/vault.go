package app

import (
	"context"
	"sync"
	"time"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/dispatch"
	"github.com/keygate/vault/x/evm"
	"github.com/keygate/vault/x/ledger"
	"github.com/keygate/vault/x/proposal"
	"github.com/keygate/vault/x/signers"
	"github.com/keygate/vault/x/threshold"
	"github.com/keygate/vault/x/txlog"
	"github.com/tendermint/tendermint/libs/log"
)

// Vault is a multi-party custodial account. It is safe for concurrent use.
type Vault struct {
	logger log.Logger
	now    func() time.Time
	store  *CommitStore
	id     vault.Principal

	signers   *signers.Registry
	threshold *threshold.Policy
	proposals *proposal.Store
	txs       *txlog.Log
	book      *ledger.Book
	adapters  *dispatch.Registry
	chains    *evm.Adapter

	// inFlight holds the proposals being executed.
	mu       sync.Mutex
	inFlight map[uint64]struct{}
}

// New loads a vault from the store. The store must have been initialized
// with InitGenesis.
func New(store vault.CommitKVStore) (*Vault, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	var id vault.Principal
	err = cs.View(func(db vault.ReadOnlyKVStore) error {
		id, err = loadVaultID(db)
		return err
	})
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, errors.Wrap(errors.ErrState, "vault not initialized")
	}
	return newVault(cs, id), nil
}

// InitGenesis initializes an empty store from the genesis and returns the
// vault.
func InitGenesis(store vault.CommitKVStore, gen Genesis) (*Vault, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	err = cs.Update(func(db vault.KVStore) error {
		if err := saveVaultID(db, gen.Vault); err != nil {
			return err
		}
		return Initializers().FromGenesis(gen.AppState, db)
	})
	if err != nil {
		return nil, errors.Wrap(err, "genesis")
	}
	return newVault(cs, gen.Vault), nil
}

func newVault(cs *CommitStore, id vault.Principal) *Vault {
	reg := signers.NewRegistry()
	return &Vault{
		logger:    log.NewNopLogger(),
		now:       time.Now,
		store:     cs,
		id:        id,
		signers:   reg,
		threshold: threshold.NewPolicy(reg),
		proposals: proposal.NewStore(reg),
		txs:       txlog.NewLog(),
		book:      ledger.NewBook(id),
		adapters:  dispatch.NewRegistry(),
		inFlight:  make(map[uint64]struct{}),
	}
}

// WithLogger sets the logger of the vault.
func (v *Vault) WithLogger(logger log.Logger) *Vault {
	v.logger = logger
	return v
}

// WithClock sets the time source used to timestamp proposals and
// transactions.
func (v *Vault) WithClock(now func() time.Time) *Vault {
	v.now = now
	return v
}

// WithChains enables the EVM diagnostics of the adapter and registers it.
func (v *Vault) WithChains(a *evm.Adapter) *Vault {
	v.chains = a
	a.Register(v.adapters)
	return v
}

// ID returns the principal of the vault.
func (v *Vault) ID() vault.Principal {
	return v.id
}

// Adapters returns the adapter registry, to register ledger adapters.
func (v *Vault) Adapters() *dispatch.Registry {
	return v.adapters
}

// CommitInfo returns the version and the merkle root of the state, if the
// store computes one.
func (v *Vault) CommitInfo() (vault.CommitID, error) {
	return v.store.CommitInfo()
}

func (v *Vault) context(ctx context.Context) context.Context {
	if vault.GetLogger(ctx) == vault.DefaultLogger {
		ctx = vault.WithLogger(ctx, v.logger)
	}
	if _, ok := vault.RequestTime(ctx); !ok {
		ctx = vault.WithRequestTime(ctx, v.now())
	}
	return ctx
}

// requireAdmin allows changes to the signers and the threshold only to
// signers, except for adding the first signer.
func (v *Vault) requireAdmin(ctx context.Context, db vault.ReadOnlyKVStore) error {
	n, err := v.signers.Len(db)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	caller, ok := vault.GetCaller(ctx)
	if !ok {
		return errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	return v.signers.RequireSigner(db, caller)
}

// AddSigner adds a principal to the signers.
func (v *Vault) AddSigner(ctx context.Context, p vault.Principal) error {
	ctx = v.context(ctx)
	err := v.store.Update(func(db vault.KVStore) error {
		if err := v.requireAdmin(ctx, db); err != nil {
			return err
		}
		return v.signers.Add(db, p)
	})
	if err != nil {
		return err
	}
	vault.GetLogger(ctx).Info("signer added", "signer", p.String())
	return nil
}

// Signers returns the signers in the order they were added.
func (v *Vault) Signers() ([]vault.Principal, error) {
	var res []vault.Principal
	err := v.store.View(func(db vault.ReadOnlyKVStore) (err error) {
		res, err = v.signers.List(db)
		return err
	})
	return res, err
}

// SetThreshold changes the number of approvals a proposal needs.
func (v *Vault) SetThreshold(ctx context.Context, n uint64) error {
	ctx = v.context(ctx)
	err := v.store.Update(func(db vault.KVStore) error {
		if err := v.requireAdmin(ctx, db); err != nil {
			return err
		}
		return v.threshold.Set(db, n)
	})
	if err != nil {
		return err
	}
	vault.GetLogger(ctx).Info("threshold set", "threshold", n)
	return nil
}

// Threshold returns the number of approvals a proposal needs.
func (v *Vault) Threshold() (uint64, error) {
	var n uint64
	err := v.store.View(func(db vault.ReadOnlyKVStore) (err error) {
		n, err = v.threshold.Get(db)
		return err
	})
	return n, err
}

// Propose creates a proposal approved by the caller.
func (v *Vault) Propose(ctx context.Context, args proposal.Args) (*proposal.ProposedTransaction, error) {
	ctx = v.context(ctx)
	var p *proposal.ProposedTransaction
	err := v.store.Update(func(db vault.KVStore) (err error) {
		p, err = v.proposals.Propose(ctx, db, args)
		return err
	})
	return p, err
}

// Proposal returns the proposal with the given ID.
func (v *Vault) Proposal(id uint64) (*proposal.ProposedTransaction, error) {
	var p *proposal.ProposedTransaction
	err := v.store.View(func(db vault.ReadOnlyKVStore) (err error) {
		p, err = v.proposals.Get(db, id)
		return err
	})
	return p, err
}

// Proposals returns all proposals in creation order.
func (v *Vault) Proposals() ([]proposal.ProposedTransaction, error) {
	var ps []proposal.ProposedTransaction
	err := v.store.View(func(db vault.ReadOnlyKVStore) (err error) {
		ps, err = v.proposals.List(db)
		return err
	})
	return ps, err
}

// Approve records the approval of the caller.
func (v *Vault) Approve(ctx context.Context, id uint64) (*proposal.ProposedTransaction, error) {
	ctx = v.context(ctx)
	var p *proposal.ProposedTransaction
	err := v.store.Update(func(db vault.KVStore) (err error) {
		p, err = v.proposals.Approve(ctx, db, id)
		return err
	})
	return p, err
}

// Reject records the rejection of the caller.
func (v *Vault) Reject(ctx context.Context, id uint64) (*proposal.ProposedTransaction, error) {
	ctx = v.context(ctx)
	var p *proposal.ProposedTransaction
	err := v.store.Update(func(db vault.KVStore) (err error) {
		p, err = v.proposals.Reject(ctx, db, id)
		return err
	})
	return p, err
}

// Transactions returns the executed transactions in execution order.
func (v *Vault) Transactions() ([]txlog.Transaction, error) {
	var txs []txlog.Transaction
	err := v.store.View(func(db vault.ReadOnlyKVStore) (err error) {
		txs, err = v.txs.List(db)
		return err
	})
	return txs, err
}

// SupportedAdapters returns the keys of the registered adapters.
func (v *Vault) SupportedAdapters() []string {
	return v.adapters.Keys()
}

// AddSubaccount assigns a fresh subaccount to the token and returns its hex
// account identifier.
func (v *Vault) AddSubaccount(ctx context.Context, token vault.TokenPath) (string, error) {
	ctx = v.context(ctx)
	var id string
	err := v.store.Update(func(db vault.KVStore) (err error) {
		caller, ok := vault.GetCaller(ctx)
		if !ok {
			return errors.Wrap(errors.ErrUnauthorized, "no caller")
		}
		if err := v.signers.RequireSigner(db, caller); err != nil {
			return err
		}
		id, err = v.book.AddSubaccount(db, token)
		return err
	})
	return id, err
}

// GetSubaccount returns the hex account identifier of the subaccount of the
// token.
func (v *Vault) GetSubaccount(token vault.TokenPath) (string, error) {
	var id string
	err := v.store.View(func(db vault.ReadOnlyKVStore) (err error) {
		id, err = v.book.GetSubaccount(db, token)
		return err
	})
	return id, err
}

// Subaccount implements ledger.SubaccountLookup.
func (v *Vault) Subaccount(_ context.Context, token vault.TokenPath) (vault.Subaccount, error) {
	var sub vault.Subaccount
	err := v.store.View(func(db vault.ReadOnlyKVStore) (err error) {
		sub, err = v.book.Subaccount(db, token)
		return err
	})
	return sub, err
}

var _ ledger.SubaccountLookup = (*Vault)(nil)

// NativeAccount returns the hex account identifier of the default ICP
// account of the vault.
func (v *Vault) NativeAccount() string {
	return v.book.NativeAccount().Hex()
}

// TokenAccount returns the default ICRC-1 account of the vault.
func (v *Vault) TokenAccount() string {
	return v.book.TokenAccount().String()
}

// ChainAddress returns the address of the vault on EVM chains.
func (v *Vault) ChainAddress() (string, error) {
	if v.chains == nil {
		return "", errors.Wrap(evm.ErrUnsupportedChain, "no chains configured")
	}
	return v.chains.Address(), nil
}

// ChainBalance returns the ether balance of the vault on the chain.
func (v *Vault) ChainBalance(ctx context.Context, network vault.Network) (vault.Amount, error) {
	if v.chains == nil {
		return "", errors.Wrap(evm.ErrUnsupportedChain, "no chains configured")
	}
	return v.chains.Balance(v.context(ctx), network)
}
