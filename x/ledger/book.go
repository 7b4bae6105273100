package ledger

import (
	"math"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/orm"
)

// SubaccountEntry assigns a subaccount of the vault to a token.
type SubaccountEntry struct {
	Token vault.TokenPath
	Nonce uint32
}

// Validate requires a token and a non default subaccount.
func (e *SubaccountEntry) Validate() error {
	if err := e.Token.Validate(); err != nil {
		return errors.Field("Token", err, "")
	}
	if e.Nonce == 0 {
		return errors.Field("Nonce", errors.ErrInput, "nonce 0 is the default subaccount")
	}
	return nil
}

// Book keeps one holding subaccount per token. Nonces are handed out from a
// counter starting at 1, nonce 0 being the default subaccount of the vault.
type Book struct {
	owner  vault.Principal
	bucket orm.ModelBucket
	nonces orm.Sequence
}

// NewBook returns the book of subaccounts owned by the vault principal.
func NewBook(owner vault.Principal) *Book {
	return &Book{
		owner:  owner,
		bucket: orm.NewModelBucket("subaccount"),
		nonces: orm.NewSequence("subaccount", "nonce"),
	}
}

// AddSubaccount allocates a fresh subaccount for the token and returns the
// hex account identifier it can be funded with.
func (b *Book) AddSubaccount(db vault.KVStore, token vault.TokenPath) (string, error) {
	if err := token.Validate(); err != nil {
		return "", err
	}
	if ok, err := b.bucket.Has(db, []byte(token)); err != nil {
		return "", err
	} else if ok {
		return "", errors.Wrapf(errors.ErrDuplicate, "subaccount of %s", token)
	}
	n, err := b.nonces.Next(db)
	if err != nil {
		return "", err
	}
	if n >= math.MaxUint32 {
		return "", errors.Wrap(errors.ErrOverflow, "subaccount nonce")
	}
	entry := SubaccountEntry{Token: token, Nonce: uint32(n + 1)}
	if err := b.bucket.Put(db, []byte(token), &entry); err != nil {
		return "", err
	}
	return b.identifier(entry.Nonce).Hex(), nil
}

// Subaccount returns the subaccount assigned to the token, or ErrNotFound.
func (b *Book) Subaccount(db vault.ReadOnlyKVStore, token vault.TokenPath) (vault.Subaccount, error) {
	var entry SubaccountEntry
	if err := b.bucket.One(db, []byte(token), &entry); err != nil {
		return vault.Subaccount{}, err
	}
	return vault.NewSubaccount(entry.Nonce), nil
}

// GetSubaccount returns the hex account identifier of the subaccount of the
// token.
func (b *Book) GetSubaccount(db vault.ReadOnlyKVStore, token vault.TokenPath) (string, error) {
	sub, err := b.Subaccount(db, token)
	if err != nil {
		return "", errors.Wrap(err, "Subaccount not found")
	}
	return vault.NewAccountIdentifier(b.owner, sub).Hex(), nil
}

// List returns all entries ordered by token.
func (b *Book) List(db vault.ReadOnlyKVStore) ([]SubaccountEntry, error) {
	var entries []SubaccountEntry
	if _, err := b.bucket.All(db, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// NativeAccount returns the account identifier of the default subaccount.
func (b *Book) NativeAccount() vault.AccountIdentifier {
	return b.identifier(0)
}

// TokenAccount returns the default token ledger account of the vault.
func (b *Book) TokenAccount() Account {
	return Account{Owner: b.owner}
}

func (b *Book) identifier(nonce uint32) vault.AccountIdentifier {
	return vault.NewAccountIdentifier(b.owner, vault.NewSubaccount(nonce))
}
