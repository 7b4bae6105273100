package vault

import (
	"testing"

	"github.com/keygate/vault/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPathKey(t *testing.T) {
	cases := map[string]struct {
		path    string
		kind    TxKind
		wantKey string
		wantErr *errors.Error
	}{
		"native asset": {
			path:    "icp:native",
			kind:    Transfer,
			wantKey: "icp:native:transfer",
		},
		"token contract drops the contract id": {
			path:    "icp:icrc1:mxzaz-hqaaa-aaaar-qaada-cai",
			kind:    Transfer,
			wantKey: "icp:icrc1:transfer",
		},
		"erc20 contract": {
			path:    "eth:erc20:0x0000000000000000000000000000000000000000",
			kind:    Swap,
			wantKey: "eth:erc20:swap",
		},
		"single segment": {
			path:    "test",
			kind:    Transfer,
			wantKey: "test:transfer",
		},
		"empty": {
			path:    "",
			wantErr: errors.ErrEmpty,
		},
		"empty segment": {
			path:    "icp::x",
			wantErr: errors.ErrInput,
		},
		"unknown standard": {
			path:    "icp:nft:abc",
			wantErr: errors.ErrInput,
		},
		"too many segments": {
			path:    "icp:icrc1:abc:def",
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := ParseTokenPath(tc.path)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKey, p.Key(tc.kind))
		})
	}
}

func TestTokenPathContract(t *testing.T) {
	p := TokenPath("icp:icrc1:mxzaz-hqaaa-aaaar-qaada-cai")
	c, err := p.Contract()
	require.NoError(t, err)
	assert.Equal(t, "mxzaz-hqaaa-aaaar-qaada-cai", c)
	assert.Equal(t, "icrc1", p.Standard())
	assert.Equal(t, "icp", p.Network())

	_, err = TokenPath("icp:native").Contract()
	assert.True(t, errors.ErrInput.Is(err))
	assert.Equal(t, "", TokenPath("icp:native").Standard())
}
