package commands

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/audit"
)

func newAuditCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit [resource-prefix]",
		Short: "Show the audit log",
		Long:  "Show the audit log, optionally only the records whose resource ID starts with the given prefix.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(opts.repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			records, err := audit.Read(dir)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				records = audit.Filter(records, args[0])
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tACTOR\tACTION\tRESOURCE\tDETAILS")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Timestamp.Local().Format(time.DateTime), r.Actor, r.Action, r.ResourceID, r.Details)
			}
			return tw.Flush()
		},
	}
}
