package app

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"time"

	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/evm"
	"gopkg.in/yaml.v3"
)

// Database backends of the vault state.
const (
	BackendIAVL      = "iavl"
	BackendGoLevelDB = "goleveldb"
	BackendMemDB     = "memdb"
)

// Config is the process configuration of a vault node.
type Config struct {
	// Backend is the database of the vault state.
	Backend  string `json:"backend" yaml:"backend"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	// LocalLedger serves ICP and ICRC-1 transfers from an in-process
	// ledger stored next to the vault state.
	LocalLedger bool `json:"local_ledger" yaml:"local_ledger"`

	EVM EVMConfig `json:"evm" yaml:"evm"`
}

// EVMConfig enables transfers on EVM chains when Key is set.
type EVMConfig struct {
	// Key is the hex encoded secp256k1 key of the vault.
	Key          string      `json:"key" yaml:"key"`
	Chains       []evm.Chain `json:"chains" yaml:"chains"`
	PollInterval string      `json:"poll_interval" yaml:"poll_interval"`
	Timeout      string      `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the configuration written by "vaultd init".
func DefaultConfig() Config {
	return Config{
		Backend:     BackendIAVL,
		LogLevel:    "info",
		LocalLedger: true,
		EVM: EVMConfig{
			Chains:       append([]evm.Chain(nil), evm.DefaultChains...),
			PollInterval: "2s",
			Timeout:      "2m",
		},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs error
	switch c.Backend {
	case BackendIAVL, BackendGoLevelDB, BackendMemDB:
	default:
		errs = errors.AppendField(errs, "Backend", errors.Wrapf(errors.ErrInput, "unknown backend %q", c.Backend))
	}
	if _, _, err := c.EVM.polling(); err != nil {
		errs = errors.AppendField(errs, "EVM", err)
	}
	return errs
}

func (c EVMConfig) polling() (interval, timeout time.Duration, err error) {
	if interval, err = time.ParseDuration(c.PollInterval); err != nil {
		return 0, 0, errors.Wrapf(errors.ErrInput, "poll interval: %s", err)
	}
	if timeout, err = time.ParseDuration(c.Timeout); err != nil {
		return 0, 0, errors.Wrapf(errors.ErrInput, "timeout: %s", err)
	}
	if interval <= 0 || timeout < interval {
		return 0, 0, errors.Wrap(errors.ErrInput, "timeout must not be shorter than the poll interval")
	}
	return interval, timeout, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig reads a JSON or, by extension, YAML configuration file. Missing
// values keep their defaults.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "read config: %s", err)
	}
	if isYAML(path) {
		err = yaml.Unmarshal(raw, &conf)
	} else {
		err = json.Unmarshal(raw, &conf)
	}
	if err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "parse config %s: %s", path, err)
	}
	return conf, conf.Validate()
}

// SaveConfig writes the configuration as JSON or YAML, by extension.
func SaveConfig(path string, conf Config) error {
	var (
		raw []byte
		err error
	)
	if isYAML(path) {
		raw, err = yaml.Marshal(conf)
	} else {
		raw, err = json.MarshalIndent(conf, "", "  ")
	}
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "write config: %s", err)
	}
	return nil
}
