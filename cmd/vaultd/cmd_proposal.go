package main

import (
	"context"
	"strconv"

	"github.com/keygate/vault"
	"github.com/keygate/vault/app"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/proposal"
	"github.com/keygate/vault/x/txlog"
	"github.com/spf13/cobra"
)

func proposeCmd(f *rootFlags) *cobra.Command {
	var (
		args    proposal.Args
		token   string
		network string
		amount  string
		kind    string
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose a transaction, approved by the caller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args.Token = vault.TokenPath(token)
			args.Network = vault.Network(network)
			args.Amount = vault.Amount(amount)
			args.Kind = vault.TxKind(kind)
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				ctx, err := f.withCaller(ctx)
				if err != nil {
					return err
				}
				p, err := n.Propose(ctx, args)
				if err != nil {
					return err
				}
				return f.print(p)
			})
		},
	}
	cmd.Flags().StringVar(&args.To, "to", "", "destination account")
	cmd.Flags().StringVar(&token, "token", "icp:native", "token path, for example icp:icrc1:<canister>")
	cmd.Flags().StringVar(&network, "network", string(vault.NetworkICP), "network of the transfer")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to transfer")
	cmd.Flags().StringVar(&kind, "kind", string(vault.Transfer), "kind of operation")
	return cmd
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "proposal id %q", s)
	}
	return id, nil
}

type voteFn func(v *app.Vault, ctx context.Context, id uint64) (*proposal.ProposedTransaction, error)

func voteCmd(f *rootFlags, use, short string, vote voteFn) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <proposal id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				if ctx, err = f.withCaller(ctx); err != nil {
					return err
				}
				p, err := vote(n.Vault, ctx, id)
				if err != nil {
					return err
				}
				return f.print(p)
			})
		},
	}
}

func executeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "execute <proposal id>",
		Short: "Execute an approved proposal and print its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				return f.print(n.Execute(ctx, id))
			})
		},
	}
}

func proposalsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "proposals",
		Short: "List all proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				ps, err := n.Proposals()
				if err != nil {
					return err
				}
				if ps == nil {
					ps = []proposal.ProposedTransaction{}
				}
				return f.print(ps)
			})
		},
	}
}

func transactionsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "List the executed transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				txs, err := n.Transactions()
				if err != nil {
					return err
				}
				if txs == nil {
					txs = []txlog.Transaction{}
				}
				return f.print(txs)
			})
		},
	}
}

func adaptersCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List the keys of the supported adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				return f.print(n.SupportedAdapters())
			})
		},
	}
}
