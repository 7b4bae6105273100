package signers

import (
	"testing"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/store"
	"github.com/keygate/vault/vaulttest"
	"github.com/keygate/vault/vaulttest/assert"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRegistry(t *testing.T) {
	alice := vaulttest.SequencePrincipal(1)
	bobby := vaulttest.SequencePrincipal(2)
	carol := vaulttest.SequencePrincipal(3)

	cases := map[string]struct {
		add     []vault.Principal
		wantErr []*errors.Error
		want    []vault.Principal
	}{
		"empty": {},
		"insertion order is kept": {
			add:     []vault.Principal{carol, alice, bobby},
			wantErr: []*errors.Error{nil, nil, nil},
			want:    []vault.Principal{carol, alice, bobby},
		},
		"duplicate is rejected": {
			add:     []vault.Principal{alice, bobby, alice},
			wantErr: []*errors.Error{nil, nil, errors.ErrDuplicate},
			want:    []vault.Principal{alice, bobby},
		},
		"empty principal": {
			add:     []vault.Principal{alice, nil},
			wantErr: []*errors.Error{nil, errors.ErrEmpty},
			want:    []vault.Principal{alice},
		},
		"anonymous principal": {
			add:     []vault.Principal{vault.AnonymousPrincipal(), bobby},
			wantErr: []*errors.Error{errors.ErrInput, nil},
			want:    []vault.Principal{bobby},
		},
		"too long principal": {
			add:     []vault.Principal{make(vault.Principal, 30)},
			wantErr: []*errors.Error{errors.ErrLength},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			r := NewRegistry()
			for i, p := range tc.add {
				err := r.Add(db, p)
				if tc.wantErr[i] == nil {
					assert.Nil(t, err)
				} else {
					assert.IsErr(t, tc.wantErr[i], err)
				}
			}
			got, err := r.List(db)
			assert.Nil(t, err)
			assert.Equal(t, len(tc.want), len(got))
			for i := range tc.want {
				assert.Equal(t, true, tc.want[i].Equals(got[i]))
			}
			n, err := r.Len(db)
			assert.Nil(t, err)
			assert.Equal(t, len(tc.want), n)
		})
	}
}

func TestRequireSigner(t *testing.T) {
	db := store.MemStore()
	r := NewRegistry()
	alice := vaulttest.RandomPrincipal(t)
	assert.IsErr(t, errors.ErrUnauthorized, r.RequireSigner(db, alice))

	assert.Nil(t, r.Add(db, alice))
	assert.Nil(t, r.RequireSigner(db, alice))
	assert.IsErr(t, errors.ErrUnauthorized, r.RequireSigner(db, vault.AnonymousPrincipal()))
}

func TestAddedSignerIsListedOnce(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("add then add again", prop.ForAll(
		func(n uint32) bool {
			db := store.MemStore()
			r := NewRegistry()
			p := vaulttest.SequencePrincipal(n)
			if err := r.Add(db, p); err != nil {
				return false
			}
			if !errors.ErrDuplicate.Is(r.Add(db, p)) {
				return false
			}
			list, err := r.List(db)
			return err == nil && len(list) == 1 && list[0].Equals(p)
		},
		gen.UInt32(),
	))
	properties.TestingRun(t)
}
