package main

import (
	"context"
	"strconv"

	"github.com/keygate/vault"
	"github.com/keygate/vault/app"
	"github.com/keygate/vault/errors"
	"github.com/spf13/cobra"
)

func signersCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "signers",
		Short: "List the signers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				signers, err := n.Signers()
				if err != nil {
					return err
				}
				if signers == nil {
					signers = []vault.Principal{}
				}
				return f.print(signers)
			})
		},
	}
}

func addSignerCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add-signer <principal>",
		Short: "Add a signer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := vault.ParsePrincipal(args[0])
			if err != nil {
				return err
			}
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				if ctx, err = f.withCaller(ctx); err != nil {
					return err
				}
				return n.AddSigner(ctx, p)
			})
		},
	}
}

func thresholdCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "threshold [<approvals>]",
		Short: "Print or change the number of approvals a proposal needs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				if len(args) == 1 {
					want, err := strconv.ParseUint(args[0], 10, 64)
					if err != nil {
						return errors.Wrapf(errors.ErrInput, "threshold %q", args[0])
					}
					if ctx, err = f.withCaller(ctx); err != nil {
						return err
					}
					if err := n.SetThreshold(ctx, want); err != nil {
						return err
					}
				}
				got, err := n.Threshold()
				if err != nil {
					return err
				}
				return f.print(map[string]uint64{"threshold": got})
			})
		},
	}
}
