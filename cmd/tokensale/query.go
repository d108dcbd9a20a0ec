package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libtokensale-go/identity"
	"github.com/bitfsorg/libtokensale-go/sale"
)

func queryCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "query",
		Short: "Reads sale state",
	}
	c.AddCommand(
		queryStatusCommand(a),
		querySubcommand(a, "whitelist", "Lists pending buyer credits", cobra.NoArgs, queryWhitelist),
		querySubcommand(a, "tokennomic", "Lists shareholders and the sale percentage", cobra.NoArgs, queryTokennomic),
		querySubcommand(a, "price", "Prints the price of one token in base units", cobra.NoArgs, queryPrice),
		querySubcommand(a, "my-tokens ACCOUNT", "Prints an account's pending credit", cobra.ExactArgs(1), queryMyTokens),
		querySubcommand(a, "balance ACCOUNT", "Prints an account's token balance", cobra.ExactArgs(1), queryBalance),
	)
	return c
}

type queryFunc func(c *cobra.Command, contract *sale.Contract, args []string) error

func querySubcommand(a *app, use, short string, args cobra.PositionalArgs, fn queryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(c *cobra.Command, args []string) error {
			_, contract, err := a.loadContract()
			if err != nil {
				return err
			}
			return fn(c, contract, args)
		},
	}
}

func queryStatusCommand(a *app) *cobra.Command {
	c := querySubcommand(a, "status", "Prints the sale summary", cobra.NoArgs,
		func(c *cobra.Command, contract *sale.Contract, _ []string) error {
			at, err := now(c.Flags())
			if err != nil {
				return err
			}
			return queryStatus(c, contract, at)
		})
	c.Flags().String(NowKey, "", "Evaluate the sale phase at this RFC 3339 time (default now)")
	return c
}

func queryStatus(c *cobra.Command, contract *sale.Contract, at time.Time) error {
	owner, err := contract.Owner()
	if err != nil {
		return err
	}
	meta, err := contract.Metadata()
	if err != nil {
		return err
	}
	supply, err := contract.TotalSupply()
	if err != nil {
		return err
	}
	phase, err := contract.Phase(at)
	if err != nil {
		return err
	}
	w, err := contract.SaleWindow()
	if err != nil {
		return err
	}
	strategy, err := contract.PriceStrategy()
	if err != nil {
		return err
	}
	distributed, err := contract.DistributedStatus()
	if err != nil {
		return err
	}
	saleSupply, err := contract.SaleSupply()
	if err != nil {
		return err
	}
	sold, err := contract.SoldTokens()
	if err != nil {
		return err
	}
	remaining, err := contract.RemainingTokens()
	if err != nil {
		return err
	}
	raised, err := contract.Raised()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "token:\t%s (%s), %d decimals\n", meta.Name, meta.Symbol, meta.Decimals)
	fmt.Fprintf(tw, "owner:\t%s\n", owner)
	fmt.Fprintf(tw, "total supply:\t%s\n", supply.Dec())
	fmt.Fprintf(tw, "phase:\t%s\n", phase)
	fmt.Fprintf(tw, "sale window:\t%s to %s\n", w.Start.Format(time.RFC3339), w.End().Format(time.RFC3339))
	fmt.Fprintf(tw, "price:\t%s\n", strategy)
	fmt.Fprintf(tw, "shareholders distributed:\t%t\n", distributed)
	fmt.Fprintf(tw, "sale supply:\t%s\n", saleSupply.Dec())
	fmt.Fprintf(tw, "sold:\t%s\n", sold.Dec())
	fmt.Fprintf(tw, "remaining:\t%s\n", remaining.Dec())
	fmt.Fprintf(tw, "raised:\t%s\n", raised.Dec())
	return tw.Flush()
}

func queryWhitelist(c *cobra.Command, contract *sale.Contract, _ []string) error {
	list, err := contract.Whitelist()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\n", e.AccountID, e.Amount.Dec())
	}
	return tw.Flush()
}

func queryTokennomic(c *cobra.Command, contract *sale.Contract, _ []string) error {
	holders, err := contract.Tokennomic()
	if err != nil {
		return err
	}
	pct, err := contract.PercentForSale()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, h := range holders {
		fmt.Fprintf(tw, "%s\t%s%%\n", h.AccountID, h.PercentOfToken)
	}
	fmt.Fprintf(tw, "for sale\t%s%%\n", pct)
	return tw.Flush()
}

func queryPrice(c *cobra.Command, contract *sale.Contract, _ []string) error {
	price, err := contract.Price()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), price.Dec())
	return nil
}

func queryMyTokens(c *cobra.Command, contract *sale.Contract, args []string) error {
	if err := identity.ValidateAccountID(args[0]); err != nil {
		return err
	}
	owed, err := contract.MyTokens(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), owed.Dec())
	return nil
}

func queryBalance(c *cobra.Command, contract *sale.Contract, args []string) error {
	if err := identity.ValidateAccountID(args[0]); err != nil {
		return err
	}
	bal, err := contract.BalanceOf(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), bal.Dec())
	return nil
}
