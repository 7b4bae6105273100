package main

import (
	"context"
	"strconv"

	"github.com/keygate/vault"
	"github.com/keygate/vault/app"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/ledger"
	"github.com/spf13/cobra"
)

func subaccountCmd(f *rootFlags) *cobra.Command {
	var add bool
	cmd := &cobra.Command{
		Use:   "subaccount <token path>",
		Short: "Print the account identifier of the subaccount of a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := vault.ParseTokenPath(args[0])
			if err != nil {
				return err
			}
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				var id string
				if add {
					if ctx, err = f.withCaller(ctx); err != nil {
						return err
					}
					id, err = n.AddSubaccount(ctx, token)
				} else {
					id, err = n.GetSubaccount(token)
				}
				if err != nil {
					return err
				}
				return f.print(map[string]string{"token": string(token), "account": id})
			})
		},
	}
	cmd.Flags().BoolVar(&add, "add", false, "assign a new subaccount to the token")
	return cmd
}

func accountsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Print the default accounts of the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				return f.print(map[string]string{
					"principal": n.ID().String(),
					"icp":       n.NativeAccount(),
					"icrc1":     n.TokenAccount(),
				})
			})
		},
	}
}

func mintCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mint <contract> <account> <amount>",
		Short: "Credit an account of the local ledger",
		Long: `Credit an account of the local ledger. The contract is "icp" for native
ICP, with a hex account identifier, or the name of an ICRC-1 contract with a
"<principal>[.<hex subaccount>]" account.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "amount %q", args[2])
			}
			id, err := ledgerAccount(args[0], args[1])
			if err != nil {
				return err
			}
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				if n.Ledger == nil {
					return errors.Wrap(errors.ErrState, "local ledger is disabled")
				}
				if err := n.Ledger.Mint(args[0], id, amount); err != nil {
					return err
				}
				balance, err := n.Ledger.Balance(args[0], id)
				if err != nil {
					return err
				}
				return f.print(map[string]uint64{"balance": balance})
			})
		},
	}
}

func ledgerAccount(contract, account string) (vault.AccountIdentifier, error) {
	if contract == ledger.NativeContract {
		return vault.ParseAccountIdentifierHex(account)
	}
	acc, err := ledger.ParseAccount(account)
	if err != nil {
		return vault.AccountIdentifier{}, err
	}
	return acc.Identifier(), nil
}

func chainAddressCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chain-address",
		Short: "Print the address of the vault on EVM chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				addr, err := n.ChainAddress()
				if err != nil {
					return err
				}
				return f.print(map[string]string{"address": addr})
			})
		},
	}
}

func chainBalanceCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chain-balance <network>",
		Short: "Print the ether balance of the vault on an EVM chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, func(ctx context.Context, n *app.Node) error {
				balance, err := n.ChainBalance(ctx, vault.Network(args[0]))
				if err != nil {
					return err
				}
				return f.print(map[string]string{"network": args[0], "balance": string(balance)})
			})
		},
	}
}
