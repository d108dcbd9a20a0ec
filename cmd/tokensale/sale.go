package main

import (
	"fmt"
	"io"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libtokensale-go/config"
	"github.com/bitfsorg/libtokensale-go/sale"
	"github.com/bitfsorg/libtokensale-go/store"
)

func initCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Initializes the sale; the signing key becomes the owner",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			path, err := flags.GetString(DeploymentKey)
			if err != nil {
				return err
			}
			params, err := config.LoadDeployment(path)
			if err != nil {
				return err
			}
			call, err := a.authenticate(flags, methodNew, "0")
			if err != nil {
				return err
			}
			owner := call.Caller

			s, err := a.openStore()
			if err != nil {
				return err
			}
			if ok, err := s.Exists(); err != nil {
				return err
			} else if ok {
				return store.ErrAlreadyInitialized
			}

			contract, err := sale.New(sale.Call{Caller: owner, Now: call.At}, params, sale.WithLogger(a.log))
			if err != nil {
				return err
			}
			snap, err := contract.Snapshot()
			if err != nil {
				return err
			}
			if err := s.Init(snap, call.Nonce); err != nil {
				return err
			}
			w, _ := contract.SaleWindow()
			fmt.Fprintf(c.OutOrStdout(), "initialized %s (%s) owned by %s, sale open until %s\n",
				params.Metadata.Name, params.Metadata.Symbol, owner, w.End().Format(time.RFC3339))
			return nil
		},
	}
	flags := c.Flags()
	flags.String(DeploymentKey, "", "Deployment parameters file (required)")
	AddSignerFlags(flags)
	_ = c.MarkFlagRequired(DeploymentKey)
	return c
}

func depositCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "deposit",
		Short: "Buys sale tokens with the attached value",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			raw, err := flags.GetString(ValueKey)
			if err != nil {
				return err
			}
			value, err := uint256.FromDecimal(raw)
			if err != nil {
				return fmt.Errorf("--%s %q: %w", ValueKey, raw, err)
			}
			call, err := a.authenticate(flags, methodDepositForSale, value.Dec())
			if err != nil {
				return err
			}

			s, contract, err := a.loadContract()
			if err != nil {
				return err
			}
			if err := checkNonce(s, call); err != nil {
				return err
			}
			p, err := contract.DepositForSale(sale.Call{Caller: call.Caller, Now: call.At, Value: value})
			if err != nil {
				return err
			}
			if err := s.SaveContract(contract, call.Nonce); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%s bought %s tokens (change %s), %s pending\n",
				p.AccountID, p.Tokens.Dec(), p.Change.Dec(), p.Owed.Dec())
			return nil
		},
	}
	flags := c.Flags()
	flags.String(ValueKey, "", "Attached value in base currency units (required)")
	AddSignerFlags(flags)
	_ = c.MarkFlagRequired(ValueKey)
	return c
}

func distributeCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "distribute",
		Short: "Pays out shareholders or buyers (owner only)",
	}
	c.AddCommand(
		distributeSubcommand(a, "shareholders", methodDistributeToShareholders, (*sale.Contract).DistributeToShareholders),
		distributeSubcommand(a, "buyers", methodDistributeToBuyers, (*sale.Contract).DistributeToBuyers),
	)
	return c
}

func distributeSubcommand(a *app, use, method string, distribute func(*sale.Contract, sale.Call) ([]sale.Payout, error)) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: "Distributes tokens to " + use,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			call, err := a.authenticate(flags, method, "0")
			if err != nil {
				return err
			}

			s, contract, err := a.loadContract()
			if err != nil {
				return err
			}
			if err := checkNonce(s, call); err != nil {
				return err
			}
			payouts, err := distribute(contract, sale.Call{Caller: call.Caller, Now: call.At})
			if err != nil {
				return err
			}
			if err := s.SaveContract(contract, call.Nonce); err != nil {
				return err
			}
			printPayouts(c.OutOrStdout(), payouts)
			return nil
		},
	}
	AddSignerFlags(c.Flags())
	return c
}

func printPayouts(w io.Writer, payouts []sale.Payout) {
	if len(payouts) == 0 {
		fmt.Fprintln(w, "nothing to distribute")
		return
	}
	for _, p := range payouts {
		fmt.Fprintf(w, "%s\t%s\n", p.AccountID, p.Amount.Dec())
	}
}
