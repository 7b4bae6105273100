package ledger

import (
	"context"
	"sync"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/orm"
)

// NativeContract is the contract name under which ICP balances are kept.
const NativeContract = "icp"

type balance struct {
	Amount uint64
}

func (b *balance) Validate() error { return nil }

// LocalLedger is an in-process ledger service. It serves ICP and any number
// of ICRC-1 contracts, each identified by its name, from a single store.
// Every call is committed atomically. Transfer fees are burned.
type LocalLedger struct {
	mu       sync.Mutex
	db       vault.CommitKVStore
	balances orm.ModelBucket
	blocks   orm.Sequence
	fees     map[string]uint64
}

// NewLocalLedger returns a ledger keeping its state in db. Native transfers
// must pay NativeFee and token transfers TokenFee unless SetFee changes it.
func NewLocalLedger(db vault.CommitKVStore) *LocalLedger {
	return &LocalLedger{
		db:       db,
		balances: orm.NewModelBucket("balance"),
		blocks:   orm.NewSequence("ledger", "block"),
		fees:     map[string]uint64{NativeContract: NativeFee},
	}
}

// SetFee sets the fee expected by a token contract.
func (l *LocalLedger) SetFee(contract string, fee uint64) {
	l.mu.Lock()
	l.fees[contract] = fee
	l.mu.Unlock()
}

func (l *LocalLedger) fee(contract string) uint64 {
	if fee, ok := l.fees[contract]; ok {
		return fee
	}
	return TokenFee
}

func balanceKey(contract string, id vault.AccountIdentifier) []byte {
	return append([]byte(contract+":"), id.Bytes()...)
}

// Mint credits the account with newly created tokens of the contract.
func (l *LocalLedger) Mint(contract string, to vault.AccountIdentifier, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.update(func(db vault.KVStore) error {
		cur, err := l.balance(db, contract, to)
		if err != nil {
			return err
		}
		if cur+amount < cur {
			return errors.Wrap(errors.ErrOverflow, "balance")
		}
		return l.balances.Put(db, balanceKey(contract, to), &balance{Amount: cur + amount})
	})
}

func (l *LocalLedger) update(fn func(db vault.KVStore) error) error {
	cache := l.db.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}
	_, err := l.db.Commit()
	return err
}

// Balance returns the balance of the account.
func (l *LocalLedger) Balance(contract string, id vault.AccountIdentifier) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cache := l.db.CacheWrap()
	defer cache.Discard()
	return l.balance(cache, contract, id)
}

func (l *LocalLedger) balance(db vault.ReadOnlyKVStore, contract string, id vault.AccountIdentifier) (uint64, error) {
	var b balance
	switch err := l.balances.One(db, balanceKey(contract, id), &b); {
	case err == nil:
		return b.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func (l *LocalLedger) transfer(contract string, from, to vault.AccountIdentifier, amount, fee uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if want := l.fee(contract); fee != want {
		return 0, errors.Wrapf(ErrBadFee, "expected fee %d", want)
	}
	cost := amount + fee
	if cost < amount {
		return 0, errors.Wrap(errors.ErrOverflow, "amount")
	}
	var block uint64
	err := l.update(func(db vault.KVStore) error {
		fromBalance, err := l.balance(db, contract, from)
		if err != nil {
			return err
		}
		if fromBalance < cost {
			return errors.Wrapf(ErrInsufficientFunds, "balance %d", fromBalance)
		}
		if err := l.balances.Put(db, balanceKey(contract, from), &balance{Amount: fromBalance - cost}); err != nil {
			return err
		}
		toBalance, err := l.balance(db, contract, to)
		if err != nil {
			return err
		}
		if err := l.balances.Put(db, balanceKey(contract, to), &balance{Amount: toBalance + amount}); err != nil {
			return err
		}
		block, err = l.blocks.Next(db)
		return err
	})
	return block, err
}

// Native returns the ICP ledger as seen by the caller.
func (l *LocalLedger) Native(caller vault.Principal) NativeLedger {
	return localNative{ledger: l, caller: caller}
}

// Tokens returns the ICRC-1 contracts as seen by the caller.
func (l *LocalLedger) Tokens(caller vault.Principal) TokenLedger {
	return localTokens{ledger: l, caller: caller}
}

type localNative struct {
	ledger *LocalLedger
	caller vault.Principal
}

func (n localNative) Transfer(ctx context.Context, args NativeTransfer) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	from := vault.NewAccountIdentifier(n.caller, args.FromSubaccount)
	return n.ledger.transfer(NativeContract, from, args.To, args.Amount, args.Fee)
}

func (n localNative) AccountBalance(ctx context.Context, id vault.AccountIdentifier) (uint64, error) {
	return n.ledger.Balance(NativeContract, id)
}

type localTokens struct {
	ledger *LocalLedger
	caller vault.Principal
}

func (t localTokens) Transfer(ctx context.Context, contract string, args TokenTransfer) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	if contract == NativeContract {
		return 0, errors.Wrapf(errors.ErrInput, "%q is not a token contract", contract)
	}
	from := Account{Owner: t.caller, Subaccount: args.FromSubaccount}
	return t.ledger.transfer(contract, from.Identifier(), args.To.Identifier(), args.Amount, args.Fee)
}

func (t localTokens) BalanceOf(ctx context.Context, contract string, acc Account) (uint64, error) {
	return t.ledger.Balance(contract, acc.Identifier())
}
