package ledger

import (
	"context"
	"testing"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/store"
	"github.com/keygate/vault/vaulttest"
	"github.com/keygate/vault/x/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bookLookup serves subaccounts from a book stored in db.
type bookLookup struct {
	book *Book
	db   vault.ReadOnlyKVStore
}

func (b bookLookup) Subaccount(_ context.Context, token vault.TokenPath) (vault.Subaccount, error) {
	return b.book.Subaccount(b.db, token)
}

func TestNativeAdapter(t *testing.T) {
	vaultID := vaulttest.SequencePrincipal(1)
	receiver := vault.NewAccountIdentifier(vaulttest.SequencePrincipal(2), vault.DefaultSubaccount)

	cases := map[string]struct {
		withSubaccount bool
		mint           uint64
		req            dispatch.Request
		wantErr        *errors.Error
		wantFrom       vault.Subaccount
		wantLeft       uint64
	}{
		"from the default subaccount": {
			mint:     100000,
			req:      dispatch.Request{To: receiver.Hex(), Token: "icp:native", Amount: "50000", Kind: vault.Transfer},
			wantFrom: vault.DefaultSubaccount,
			wantLeft: 100000 - 50000 - NativeFee,
		},
		"from the token subaccount": {
			withSubaccount: true,
			mint:           100000,
			req:            dispatch.Request{To: receiver.Hex(), Token: "icp:native", Amount: "50000", Kind: vault.Transfer},
			wantFrom:       vault.NewSubaccount(1),
			wantLeft:       100000 - 50000 - NativeFee,
		},
		"fee is not covered": {
			mint:     50000,
			req:      dispatch.Request{To: receiver.Hex(), Token: "icp:native", Amount: "50000", Kind: vault.Transfer},
			wantErr:  ErrInsufficientFunds,
			wantFrom: vault.DefaultSubaccount,
			wantLeft: 50000,
		},
		"malformed destination": {
			mint:     100000,
			req:      dispatch.Request{To: "test", Token: "icp:native", Amount: "1", Kind: vault.Transfer},
			wantErr:  errors.ErrInput,
			wantFrom: vault.DefaultSubaccount,
			wantLeft: 100000,
		},
		"fractional e8s": {
			mint:     100000,
			req:      dispatch.Request{To: receiver.Hex(), Token: "icp:native", Amount: "0.5", Kind: vault.Transfer},
			wantErr:  errors.ErrAmount,
			wantFrom: vault.DefaultSubaccount,
			wantLeft: 100000,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			book := NewBook(vaultID)
			if tc.withSubaccount {
				_, err := book.AddSubaccount(db, "icp:native")
				require.NoError(t, err)
			}
			local := NewLocalLedger(store.MemDBStore())
			from := vault.NewAccountIdentifier(vaultID, tc.wantFrom)
			require.NoError(t, local.Mint(NativeContract, from, tc.mint))

			a := NewNativeAdapter(local.Native(vaultID), bookLookup{book: book, db: db})
			status, err := a.Execute(context.Background(), tc.req)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, vault.Completed("Successfully transferred native ICP."), status)
				got, err := local.Balance(NativeContract, receiver)
				require.NoError(t, err)
				assert.Equal(t, uint64(50000), got)
			}
			left, err := local.Balance(NativeContract, from)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLeft, left)
		})
	}
}

func TestTokenAdapter(t *testing.T) {
	const contract = "mxzaz-hqaaa-aaaar-qaada-cai"
	vaultID := vaulttest.SequencePrincipal(1)
	receiver := Account{Owner: vaulttest.SequencePrincipal(2)}
	local := NewLocalLedger(store.MemDBStore())
	vaultAccount := NewBook(vaultID).TokenAccount()
	require.NoError(t, local.Mint(contract, vaultAccount.Identifier(), 300000000))

	a := NewTokenAdapter(local.Tokens(vaultID))
	req := dispatch.Request{
		To:     receiver.String(),
		Token:  vault.TokenPath("icp:icrc1:" + contract),
		Amount: "100000000",
		Kind:   vault.Transfer,
	}
	status, err := a.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, vault.Completed("Successfully transferred an ICRC-1 token."), status)

	tokens := local.Tokens(vaultID)
	got, err := tokens.BalanceOf(context.Background(), contract, receiver)
	require.NoError(t, err)
	assert.Equal(t, uint64(100000000), got)
	left, err := tokens.BalanceOf(context.Background(), contract, vaultAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(300000000-100000000-TokenFee), left)

	// another contract holds no funds of the vault
	req.Token = "icp:icrc1:ryjl3-tyaaa-aaaaa-aaaba-cai"
	_, err = a.Execute(context.Background(), req)
	assert.True(t, ErrInsufficientFunds.Is(err))

	req.Token = "icp:native"
	_, err = a.Execute(context.Background(), req)
	assert.True(t, errors.ErrInput.Is(err))
}
