package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/audit"
	"github.com/cleared-dev/books/internal/importer"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/reconciliation"
)

func newReconcileCommand(opts *rootOptions) *cobra.Command {
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile bank statements against the ledger",
	}
	reconcileCmd.AddCommand(
		newReconcileCreateCommand(opts),
		newReconcileMatchCommand(opts),
		newReconcileLockCommand(opts),
		newReconcileReportCommand(opts),
		newReconcileListCommand(opts),
	)
	return reconcileCmd
}

func newReconcileCreateCommand(opts *rootOptions) *cobra.Command {
	var statementDate, closingBalance, businessID string

	cmd := &cobra.Command{
		Use:   "create <account>",
		Short: "Start a reconciliation for an account",
		Long:  "Start a reconciliation for an account. The account may be a ledger account ID or a bank_accounts name from books.yaml.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate("statement-date", statementDate)
			if err != nil {
				return err
			}
			closing, err := parseAmount("closing-balance", closingBalance)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				rec, err := a.recon.CreateReconciliation(cmd.Context(), reconciliation.CreateInput{
					AccountID:      a.cfg.ResolveAccount(args[0]),
					StatementDate:  date,
					ClosingBalance: closing,
					BusinessID:     businessID,
				})
				if err != nil {
					return err
				}
				a.record(audit.ActionReconciliationCreated, rec.ID, fmt.Sprintf("account %s, statement %s, closing %s",
					rec.AccountID, formatDate(rec.StatementDate), rec.ClosingBalance.StringFixed(2)))
				fmt.Fprintf(cmd.OutOrStdout(), "Created reconciliation %s for %s\n", rec.ID, accountLabel(a, rec.AccountID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statementDate, "statement-date", "", "statement closing date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("statement-date")
	cmd.Flags().StringVar(&closingBalance, "closing-balance", "", "statement closing balance (required)")
	_ = cmd.MarkFlagRequired("closing-balance")
	cmd.Flags().StringVar(&businessID, "business", "", "owning business identifier")

	return cmd
}

func newReconcileMatchCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "match <reconciliation-id> <statement-file>",
		Short: "Match a statement against the ledger and store the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := importer.DefaultRegistry().ParseFile(args[1], format)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				report, err := a.recon.RunMatching(cmd.Context(), args[0], lines)
				if err != nil {
					return err
				}
				s := report.Summary
				a.record(audit.ActionReconciliationMatched, args[0], fmt.Sprintf("%s: %d matched, %d adjusted, %d unmatched, %d rejected",
					filepath.Base(args[1]), s.Matched, s.Adjusted, s.Unmatched, s.Rejected))
				out := cmd.OutOrStdout()
				if err := printMatches(out, a, report); err != nil {
					return err
				}
				printSummary(out, a, report.Summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "statement file format")

	return cmd
}

func newReconcileLockCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lock <reconciliation-id>",
		Short: "Lock a reconciliation; no further matching is allowed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				rec, err := a.recon.Lock(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.record(audit.ActionReconciliationLocked, rec.ID, "")
				fmt.Fprintf(cmd.OutOrStdout(), "Locked reconciliation %s\n", rec.ID)
				return nil
			})
		},
	}
}

func newReconcileReportCommand(opts *rootOptions) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "report <reconciliation-id>",
		Short: "Show a reconciliation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				r, err := a.recon.GenerateReport(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				rec := r.Reconciliation
				state := "unlocked"
				if rec.IsLocked {
					state = "locked"
				}
				fmt.Fprintf(out, "Reconciliation %s (%s)\n", rec.ID, state)
				fmt.Fprintf(out, "  account          %s\n", accountLabel(a, rec.AccountID))
				fmt.Fprintf(out, "  statement date   %s\n", formatDate(rec.StatementDate))
				fmt.Fprintf(out, "  closing balance  %s\n", a.format.amount(rec.ClosingBalance))
				fmt.Fprintf(out, "  opening balance  %s\n", a.format.amount(r.OpeningBalance))
				fmt.Fprintf(out, "  pending          %s\n", a.format.amount(r.PendingAdjustments))
				fmt.Fprintf(out, "  adjusted balance %s\n", a.format.amount(r.AdjustedBalance))
				fmt.Fprintf(out, "  outstanding      %s\n", a.format.amount(r.Outstanding))
				if r.Balanced {
					fmt.Fprintln(out, "  balanced")
				} else {
					fmt.Fprintln(out, "  NOT BALANCED")
				}
				if rec.Report == nil {
					fmt.Fprintln(out, "No matching run stored.")
					return nil
				}
				printSummary(out, a, r.Summary)
				if details {
					return printMatches(out, a, *rec.Report)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&details, "details", false, "list every statement line")

	return cmd
}

func newReconcileListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [account]",
		Short: "List reconciliations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				accountID := ""
				if len(args) > 0 {
					accountID = a.cfg.ResolveAccount(args[0])
				}
				recs, err := a.recon.List(cmd.Context(), accountID)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tACCOUNT\tSTATEMENT DATE\tCLOSING\tLOCKED")
				for _, r := range recs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", r.ID, r.AccountID, formatDate(r.StatementDate), a.format.amount(r.ClosingBalance), r.IsLocked)
				}
				return tw.Flush()
			})
		},
	}
}

func printMatches(out io.Writer, a *app, report model.MatchReport) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDATE\tDESCRIPTION\tAMOUNT\tMATCH\tCONFIDENCE\tLEDGER LINE\tDELTA")
	for _, group := range [][]model.Match{report.Matched, report.Adjustments, report.Unmatched} {
		for _, m := range group {
			ledger, delta := "", ""
			if m.Ledger != nil {
				ledger = m.Ledger.LineID
				delta = a.format.blankZero(m.Delta())
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", m.Position+1, formatDate(m.Statement.Date),
				m.Statement.Description, a.format.amount(m.Statement.SignedAmount()), m.Type, m.Confidence, ledger, delta)
		}
	}
	return tw.Flush()
}

func printSummary(out io.Writer, a *app, s model.MatchSummary) {
	fmt.Fprintf(out, "%d lines: %d matched, %d need review, %d unmatched, %d rejected\n",
		s.TotalItems, s.Matched, s.Adjusted, s.Unmatched, s.Rejected)
	fmt.Fprintf(out, "bank %s, ledger %s, difference %s\n",
		a.format.amount(s.BankBalance), a.format.amount(s.LedgerBalance), a.format.amount(s.Difference))
	for _, e := range s.Errors {
		fmt.Fprintf(out, "line %d rejected: %s\n", e.Position+1, e.Message)
	}
}
