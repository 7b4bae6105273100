package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/keygate/vault"
	"github.com/keygate/vault/app"
	"github.com/keygate/vault/crypto"
	"github.com/keygate/vault/errors"
	"github.com/spf13/cobra"
)

// rootFlags are shared by all commands.
type rootFlags struct {
	home   string
	key    string
	caller string
	out    io.Writer
}

// NewRootCmd returns the vaultd command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	f := &rootFlags{out: out}
	root := &cobra.Command{
		Use:          "vaultd",
		Short:        "Custodial multi-party vault",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&f.home, "home", defaultHome(), "directory of the configuration and the state")
	root.PersistentFlags().StringVar(&f.key, "key", "", "file of the private key of the caller")
	root.PersistentFlags().StringVar(&f.caller, "caller", "", "principal of the caller, instead of a key file")

	root.AddCommand(
		initCmd(f),
		keygenCmd(f),
		signersCmd(f),
		addSignerCmd(f),
		thresholdCmd(f),
		proposeCmd(f),
		voteCmd(f, "approve", "Approve a proposal", (*app.Vault).Approve),
		voteCmd(f, "reject", "Reject a proposal", (*app.Vault).Reject),
		executeCmd(f),
		proposalsCmd(f),
		transactionsCmd(f),
		adaptersCmd(f),
		subaccountCmd(f),
		accountsCmd(f),
		mintCmd(f),
		chainAddressCmd(f),
		chainBalanceCmd(f),
		versionCmd(f),
	)
	return root
}

func defaultHome() string {
	if h := os.Getenv("VAULTD_HOME"); h != "" {
		return h
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".vaultd"
	}
	return filepath.Join(dir, ".vaultd")
}

// config reads the configuration of the home directory, or returns the
// default one if there is none.
func (f *rootFlags) config() (app.Config, error) {
	path := filepath.Join(f.home, app.ConfigFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return app.DefaultConfig(), nil
	}
	return app.LoadConfig(path)
}

// open loads the vault of the home directory. The caller must close it.
func (f *rootFlags) open(ctx context.Context) (*app.Node, error) {
	conf, err := f.config()
	if err != nil {
		return nil, err
	}
	logger, err := app.NewLogger(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, f.home, conf, logger)
}

// withCaller returns a context authenticated as the principal of the key
// file, or of the caller flag.
func (f *rootFlags) withCaller(ctx context.Context) (context.Context, error) {
	switch {
	case f.key != "":
		key, err := crypto.LoadPrivateKey(f.key)
		if err != nil {
			return nil, err
		}
		return vault.WithCaller(ctx, key.Principal()), nil
	case f.caller != "":
		p, err := vault.ParsePrincipal(f.caller)
		if err != nil {
			return nil, errors.Wrap(err, "caller")
		}
		return vault.WithCaller(ctx, p), nil
	default:
		return nil, errors.Wrap(errors.ErrUnauthorized, "either --key or --caller is required")
	}
}

// run opens the vault for the duration of fn.
func (f *rootFlags) run(cmd *cobra.Command, fn func(ctx context.Context, n *app.Node) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	n, err := f.open(ctx)
	if err != nil {
		return err
	}
	defer n.Close()
	return fn(ctx, n)
}

// print writes the value as indented JSON.
func (f *rootFlags) print(v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	_, err = f.out.Write(append(raw, '\n'))
	return err
}
