package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keygate/vault"
	"github.com/keygate/vault/app"
	"github.com/keygate/vault/crypto"
	"github.com/keygate/vault/errors"
	"github.com/spf13/cobra"
)

func initCmd(f *rootFlags) *cobra.Command {
	var (
		signers   []string
		threshold uint64
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the configuration and the genesis of a new vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(f.home, 0700); err != nil {
				return errors.Wrapf(errors.ErrDatabase, "create home: %s", err)
			}
			genFile := filepath.Join(f.home, app.GenesisFile)
			if _, err := os.Stat(genFile); err == nil && !force {
				return errors.Wrapf(errors.ErrDuplicate, "%s already exists", genFile)
			}

			principals := make([]vault.Principal, 0, len(signers))
			for _, s := range signers {
				p, err := vault.ParsePrincipal(s)
				if err != nil {
					return errors.Wrapf(err, "signer %q", s)
				}
				principals = append(principals, p)
			}
			gen, err := newGenesis(principals, threshold)
			if err != nil {
				return err
			}
			if err := gen.Save(genFile); err != nil {
				return err
			}
			if err := app.SaveConfig(filepath.Join(f.home, app.ConfigFile), app.DefaultConfig()); err != nil {
				return err
			}
			return f.print(map[string]interface{}{
				"vault":   gen.Vault,
				"genesis": genFile,
			})
		},
	}
	cmd.Flags().StringSliceVar(&signers, "signer", nil, "initial signer, repeat for more")
	cmd.Flags().Uint64Var(&threshold, "threshold", 0, "initial threshold, defaults to one approval")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing genesis")
	return cmd
}

// newGenesis returns the genesis of a vault owned by a fresh principal.
func newGenesis(signers []vault.Principal, threshold uint64) (app.Genesis, error) {
	key, err := crypto.GenPrivKeyEd25519()
	if err != nil {
		return app.Genesis{}, err
	}
	opts := vault.Options{}
	if len(signers) > 0 {
		raw, err := json.Marshal(signers)
		if err != nil {
			return app.Genesis{}, errors.Wrap(errors.ErrInput, err.Error())
		}
		opts["signers"] = raw
	}
	if threshold > 0 {
		opts["conf"] = json.RawMessage(fmt.Sprintf(`{"threshold": {"threshold": %d}}`, threshold))
	}
	return app.Genesis{Vault: key.Principal(), AppState: opts}, nil
}

func keygenCmd(f *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen <file>",
		Short: "Generate a private key and print its principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenPrivKeyEd25519()
			if err != nil {
				return err
			}
			if err := crypto.SavePrivateKey(key, args[0], force); err != nil {
				return err
			}
			return f.print(map[string]interface{}{"principal": key.Principal()})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key file")
	return cmd
}

func versionCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(f.out, vault.Version())
			return err
		},
	}
}
