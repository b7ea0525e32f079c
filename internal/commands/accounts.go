package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/model"
)

func newAccountsCommand(opts *rootOptions) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Chart of accounts",
	}
	accountsCmd.AddCommand(newAccountsListCommand(opts))
	return accountsCmd
}

func newAccountsListCommand(opts *rootOptions) *cobra.Command {
	var (
		typ  string
		tree bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				accts := a.chart.All()
				if typ != "" {
					t, err := model.ParseAccountType(typ)
					if err != nil {
						return err
					}
					accts = a.chart.ByType(t)
				}

				if tree {
					for _, acct := range accts {
						if acct.ParentID == "" {
							printAccountTree(cmd.OutOrStdout(), a, acct, 0)
						}
					}
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPARENT")
				for _, acct := range accts {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", acct.ID, acct.Name, acct.Type, acct.ParentID)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only accounts of this type (asset, liability, equity, revenue, expense)")
	cmd.Flags().BoolVar(&tree, "tree", false, "show accounts nested under their parents")

	return cmd
}

func printAccountTree(w io.Writer, a *app, acct model.Account, depth int) {
	fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", depth), acct.ID, acct.Name)
	for _, child := range a.chart.Children(acct.ID) {
		printAccountTree(w, a, child, depth+1)
	}
}
