package main

import (
	"context"
	"encoding/json"
	"fmt"
	"multisig-vault/internal/blockchain"
	"multisig-vault/internal/config"
	"multisig-vault/internal/logging"
	"multisig-vault/internal/model"
	"multisig-vault/internal/signkeys"
	"multisig-vault/internal/treasury"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	url     string
	keyFile string
	logger  *zap.Logger
}

func (o *options) client() *blockchain.Client {
	return blockchain.NewClient(o.logger, o.url)
}

func (o *options) keys() (signkeys.UserKeys, error) {
	return signkeys.ReadKeyFile(o.keyFile)
}

func (o *options) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.GetRequestTimeout())
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "multisigctl",
		Short:         "Submit and inspect multisig vault transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(config.GetLogLevel())
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.url, "url", config.GetValidatorRestAPIAddr(), "validator REST API address")
	root.PersistentFlags().StringVar(&opts.keyFile, "key", config.GetKeyFile(), "file with the hex encoded private key")

	root.AddCommand(
		keygenCmd(opts),
		whoamiCmd(opts),
		submitCmd(opts, "add-signer <identity>", "Authorize a signer (owner only)", 1,
			func(ctx context.Context, c *blockchain.Client, keys signkeys.UserKeys, args []string) (string, error) {
				return c.AddSigner(ctx, model.Identity(args[0]), keys.GetSigner())
			}),
		submitCmd(opts, "remove-signer <identity>", "Revoke a signer (owner only)", 1,
			func(ctx context.Context, c *blockchain.Client, keys signkeys.UserKeys, args []string) (string, error) {
				return c.RemoveSigner(ctx, model.Identity(args[0]), keys.GetSigner())
			}),
		submitCmd(opts, "propose <recipient> <amount>", "Propose a transfer out of the vault", 2,
			func(ctx context.Context, c *blockchain.Client, keys signkeys.UserKeys, args []string) (string, error) {
				amount, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return "", errors.Wrapf(model.ErrInvalidAmount, "%q", args[1])
				}
				return c.CreateProposal(ctx, model.Identity(args[0]), amount, keys.GetSigner())
			}),
		submitCmd(opts, "sign <proposalID>", "Endorse a proposal", 1,
			func(ctx context.Context, c *blockchain.Client, keys signkeys.UserKeys, args []string) (string, error) {
				id, err := parseProposalID(args[0])
				if err != nil {
					return "", err
				}
				return c.AddSignature(ctx, id, keys.GetSigner())
			}),
		submitCmd(opts, "execute <proposalID>", "Execute a proposal that reached the quorum", 1,
			func(ctx context.Context, c *blockchain.Client, keys signkeys.UserKeys, args []string) (string, error) {
				id, err := parseProposalID(args[0])
				if err != nil {
					return "", err
				}
				return c.Execute(ctx, id, keys.GetSigner())
			}),
		submitCmd(opts, "deposit <amount>", "Fund the vault (owner only)", 1,
			func(ctx context.Context, c *blockchain.Client, keys signkeys.UserKeys, args []string) (string, error) {
				amount, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return "", errors.Wrapf(model.ErrInvalidAmount, "%q", args[0])
				}
				return c.Deposit(ctx, amount, keys.GetSigner())
			}),
		showCmd(opts),
	)

	return root
}

func parseProposalID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Wrapf(model.ErrProposalNotFound, "invalid proposal ID %q", raw)
	}
	return id, nil
}

func keygenCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signing key and write it to the key file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := signkeys.ReadKeyFile(opts.keyFile); err == nil {
					return errors.Errorf("%s already holds a key, use --force to replace it", opts.keyFile)
				}
			}

			keys, err := signkeys.GenerateKeys()
			if err != nil {
				return err
			}
			if err := signkeys.WriteKeyFile(opts.keyFile, keys); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), keys.Identity())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key file")
	return cmd
}

func whoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the identity of the key file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := opts.keys()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), keys.Identity())
			return nil
		},
	}
}

type submitFunc func(ctx context.Context, c *blockchain.Client, keys signkeys.UserKeys, args []string) (batchID string, err error)

// submitCmd signs the action with the key file and waits for the batch to commit
func submitCmd(opts *options, use, short string, nargs int, submit submitFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := opts.keys()
			if err != nil {
				return err
			}

			ctx, cancel := opts.context()
			defer cancel()

			batchID, err := submit(ctx, opts.client(), keys, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "committed batch", batchID)
			return nil
		},
	}
}

func showCmd(opts *options) *cobra.Command {
	show := &cobra.Command{
		Use:   "show",
		Short: "Read the vault state from the chain",
	}

	printJSON := func(cmd *cobra.Command, v interface{}) error {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	show.AddCommand(
		&cobra.Command{
			Use:   "proposal <proposalID>",
			Short: "Show a proposal with its signatures",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseProposalID(args[0])
				if err != nil {
					return err
				}
				ctx, cancel := opts.context()
				defer cancel()

				client := opts.client()
				proposal, err := client.GetProposal(ctx, id)
				if err != nil {
					return err
				}
				signatures, err := client.GetSignatures(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, struct {
					model.Proposal
					Signatures []model.Identity `json:"signatures"`
				}{proposal, signatures})
			},
		},
		&cobra.Command{
			Use:   "signers",
			Short: "List the authorized signers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := opts.context()
				defer cancel()

				signers, err := opts.client().GetSigners(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, signers)
			},
		},
		&cobra.Command{
			Use:   "balance [account]",
			Short: "Show the balance of an account, the vault by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				account := treasury.VaultAccount
				if len(args) == 1 {
					account = model.Identity(args[0])
				}
				ctx, cancel := opts.context()
				defer cancel()

				balance, err := opts.client().Balance(ctx, account)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), account, balance)
				return nil
			},
		},
		&cobra.Command{
			Use:   "last-proposal",
			Short: "Print the most recently allocated proposal ID",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := opts.context()
				defer cancel()

				id, err := opts.client().LastProposalID(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			},
		},
	)

	return show
}
