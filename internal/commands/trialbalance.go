package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/trialbalance"
)

func newTrialBalanceCommand(opts *rootOptions) *cobra.Command {
	var from, to string
	var byCategory bool

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Show debit and credit totals per account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := dateRange(from, to)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				lines, err := a.journal.AllLedgerLines(cmd.Context(), r)
				if err != nil {
					return err
				}
				tb, err := trialbalance.ComputeTrialBalance(lines)
				if err != nil {
					a.logger.Error("trial balance failed", "error", err)
					return err
				}
				if !byCategory {
					return printTrialBalance(cmd, a, tb)
				}
				cats, err := trialbalance.GroupByCategory(tb, a.chart)
				if err != nil {
					a.logger.Error("grouping trial balance failed", "error", err)
					return err
				}
				return printCategories(cmd, a, cats)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&byCategory, "by-category", false, "group by account type with income statement and balance sheet")

	return cmd
}

func printTrialBalance(cmd *cobra.Command, a *app, tb trialbalance.TrialBalance) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tNAME\tDEBITS\tCREDITS\tBALANCE")
	for _, row := range tb.Rows {
		name := ""
		if acct, ok := a.chart.Get(row.AccountID); ok {
			name = acct.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.AccountID, name,
			a.format.amount(row.TotalDebits), a.format.amount(row.TotalCredits), a.format.amount(row.Balance))
	}
	debits, credits, balance := tb.Totals()
	fmt.Fprintf(tw, "TOTAL\t\t%s\t%s\t%s\n", a.format.amount(debits), a.format.amount(credits), a.format.amount(balance))
	return tw.Flush()
}

func printCategories(cmd *cobra.Command, a *app, cats trialbalance.Categories) error {
	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tACCOUNTS\tDEBITS\tCREDITS\tBALANCE")
	for _, c := range cats.All() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", c.Type, c.Accounts,
			a.format.amount(c.TotalDebits), a.format.amount(c.TotalCredits), a.format.amount(c.Balance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	is := trialbalance.NewIncomeStatement(cats)
	bs := trialbalance.NewBalanceSheet(cats)
	fmt.Fprintf(out, "\nIncome statement\n  revenue     %s\n  expenses    %s\n  net income  %s\n",
		a.format.amount(is.Revenue), a.format.amount(is.Expenses), a.format.amount(is.NetIncome))
	fmt.Fprintf(out, "\nBalance sheet\n  assets       %s\n  liabilities  %s\n  equity       %s\n  net income   %s\n",
		a.format.amount(bs.Assets), a.format.amount(bs.Liabilities), a.format.amount(bs.Equity), a.format.amount(bs.NetIncome))
	if bs.Balanced() {
		fmt.Fprintln(out, "  balanced")
	} else {
		fmt.Fprintln(out, "  NOT BALANCED")
	}
	return nil
}
