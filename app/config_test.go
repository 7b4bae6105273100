package app

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/evm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cases := map[string]struct {
		file    string
		content string
		want    func(c *Config)
		wantErr *errors.Error
	}{
		"json keeps defaults": {
			file:    "config.json",
			content: `{"backend": "goleveldb"}`,
			want:    func(c *Config) { c.Backend = BackendGoLevelDB },
		},
		"yaml": {
			file: "config.yaml",
			content: `
backend: memdb
log_level: debug
local_ledger: false
evm:
  key: "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
  chains:
    - network: eth
      chain_id: 11155111
      rpc: http://localhost:8545
  poll_interval: 1s
  timeout: 10s
`,
			want: func(c *Config) {
				c.Backend = BackendMemDB
				c.LogLevel = "debug"
				c.LocalLedger = false
				c.EVM = EVMConfig{
					Key:          "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
					Chains:       []evm.Chain{{Network: "eth", ID: 11155111, RPC: "http://localhost:8545"}},
					PollInterval: "1s",
					Timeout:      "10s",
				}
			},
		},
		"unknown backend": {
			file:    "bad.json",
			content: `{"backend": "bolt"}`,
			wantErr: errors.ErrInput,
		},
		"timeout shorter than the poll interval": {
			file:    "bad.yml",
			content: "evm:\n  poll_interval: 5s\n  timeout: 1s\n",
			wantErr: errors.ErrInput,
		},
		"malformed": {
			file:    "broken.json",
			content: `{"backend": `,
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			require.NoError(t, ioutil.WriteFile(path, []byte(tc.content), 0600))

			conf, err := LoadConfig(path)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			want := DefaultConfig()
			tc.want(&want)
			assert.Equal(t, want, conf)
		})
	}
}

func TestSaveConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	for _, file := range []string{"config.json", "config.yaml"} {
		path := filepath.Join(dir, file)
		require.NoError(t, SaveConfig(path, DefaultConfig()))
		conf, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), conf, file)
	}
}
