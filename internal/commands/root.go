package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "books",
		Short:   "Double-entry bookkeeping and bank reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.repoDir, "repo", ".", "books directory containing books.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(opts),
		newJournalCommand(opts),
		newLedgerCommand(opts),
		newTrialBalanceCommand(opts),
		newReconcileCommand(opts),
		newAuditCommand(opts),
	)

	return rootCmd
}

// withApp opens the app for cmd, runs fn, and closes the app.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) (err error) {
	a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}
