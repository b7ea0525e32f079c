package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/audit"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/model"
)

func newJournalCommand(opts *rootOptions) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Journal entries",
	}
	journalCmd.AddCommand(
		newJournalAddCommand(opts),
		newJournalImportCommand(opts),
		newJournalShowCommand(opts),
	)
	return journalCmd
}

type journalAddOptions struct {
	date        string
	description string
	reference   string
	adjusting   bool
	debits      []string
	credits     []string
}

func newJournalAddCommand(opts *rootOptions) *cobra.Command {
	var o journalAddOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a balanced journal entry",
		Example: `  books journal add --date 2025-01-15 --description "Invoice 1042" \
    --debit 1010=3500.00 --credit 4010=3500.00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := o.input()
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				entry, err := a.journal.CreateJournalEntry(cmd.Context(), in)
				if err != nil {
					return err
				}
				a.record(audit.ActionEntryCreated, entry.ID, fmt.Sprintf("%s, %d lines", entry.Description, len(entry.Lines)))
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d lines)\n", entry.ID, len(entry.Lines))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&o.date, "date", "", "entry date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&o.description, "description", "", "entry description")
	cmd.Flags().StringVar(&o.reference, "reference", "", "external reference")
	cmd.Flags().BoolVar(&o.adjusting, "adjusting", false, "mark as an adjusting entry")
	cmd.Flags().StringArrayVar(&o.debits, "debit", nil, "debit line ACCOUNT=AMOUNT[:MEMO] (repeatable)")
	cmd.Flags().StringArrayVar(&o.credits, "credit", nil, "credit line ACCOUNT=AMOUNT[:MEMO] (repeatable)")

	return cmd
}

func (o journalAddOptions) input() (journal.EntryInput, error) {
	date, err := parseDate("date", o.date)
	if err != nil {
		return journal.EntryInput{}, err
	}
	in := journal.EntryInput{
		Date:        date,
		Description: o.description,
		Reference:   o.reference,
		IsAdjusting: o.adjusting,
	}
	for _, v := range o.debits {
		l, amount, err := parseLineFlag("debit", v)
		if err != nil {
			return journal.EntryInput{}, err
		}
		l.Debit = amount
		in.Lines = append(in.Lines, l)
	}
	for _, v := range o.credits {
		l, amount, err := parseLineFlag("credit", v)
		if err != nil {
			return journal.EntryInput{}, err
		}
		l.Credit = amount
		in.Lines = append(in.Lines, l)
	}
	return in, nil
}

// parseLineFlag parses ACCOUNT=AMOUNT[:MEMO].
func parseLineFlag(flag, v string) (journal.LineInput, decimal.Decimal, error) {
	acct, rest, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(acct) == "" {
		return journal.LineInput{}, decimal.Decimal{}, fmt.Errorf("--%s: expected ACCOUNT=AMOUNT, got %q", flag, v)
	}
	amount, memo, _ := strings.Cut(rest, ":")
	d, err := parseAmount(flag, amount)
	if err != nil {
		return journal.LineInput{}, decimal.Decimal{}, err
	}
	return journal.LineInput{AccountID: strings.TrimSpace(acct), Description: memo}, d, nil
}

func newJournalImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import journal entries from CSV",
		Long: "Import journal entries from a CSV with header\n  " + journal.ImportHeader + "\n" +
			"Rows sharing an entry_ref form one entry. Invalid entries are reported and skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			batch, err := journal.ReadEntries(f)
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(a *app) error {
				results, err := a.journal.ImportEntries(cmd.Context(), batch)
				out := cmd.OutOrStdout()
				rejected := 0
				for _, r := range results {
					if r.Err != nil {
						rejected++
						fmt.Fprintf(out, "row %d: rejected: %v\n", r.Row, r.Err)
						continue
					}
					a.record(audit.ActionEntryCreated, r.EntryID, fmt.Sprintf("imported from %s row %d", filepath.Base(args[0]), r.Row))
					fmt.Fprintf(out, "row %d: created %s\n", r.Row, r.EntryID)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Imported %d of %d entries\n", len(results)-rejected, len(batch))
				if rejected > 0 {
					return fmt.Errorf("%d entries rejected", rejected)
				}
				return nil
			})
		},
	}
}

func newJournalShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				e, err := a.journal.GetEntry(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s  %s  %s\n", e.ID, formatDate(e.Date), e.Description)
				if e.Reference != "" {
					fmt.Fprintf(out, "reference: %s\n", e.Reference)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "LINE\tACCOUNT\tDEBIT\tCREDIT\t")
				for _, l := range e.Lines {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", l.ID, accountLabel(a, l.AccountID), a.format.blankZero(l.Debit), a.format.blankZero(l.Credit))
				}
				debits, credits := e.Totals()
				fmt.Fprintf(tw, "\t\t%s\t%s\t\n", a.format.amount(debits), a.format.amount(credits))
				return tw.Flush()
			})
		},
	}
}

func accountLabel(a *app, accountID string) string {
	if acct, ok := a.chart.Get(accountID); ok {
		return acct.ID + " " + acct.Name
	}
	return accountID
}

func newLedgerCommand(opts *rootOptions) *cobra.Command {
	var from, to string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "ledger <account>",
		Short: "Show the ledger lines of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := dateRange(from, to)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				accountID := a.cfg.ResolveAccount(args[0])
				lines, err := a.journal.GetLedgerLines(cmd.Context(), accountID, r)
				if err != nil {
					return err
				}
				if asCSV {
					return journal.WriteLedgerLines(cmd.OutOrStdout(), lines)
				}
				return printLedger(cmd, a, lines)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")

	return cmd
}

func printLedger(cmd *cobra.Command, a *app, lines []model.LedgerLine) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tLINE\tDESCRIPTION\tDEBIT\tCREDIT\tBALANCE")
	running := decimal.Zero
	for _, l := range lines {
		running = running.Add(l.Amount)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			formatDate(l.Date), l.LineID, l.Description,
			a.format.blankZero(l.Debit), a.format.blankZero(l.Credit), a.format.amount(running))
	}
	return tw.Flush()
}

func dateRange(from, to string) (model.DateRange, error) {
	f, err := parseDate("from", from)
	if err != nil {
		return model.DateRange{}, err
	}
	t, err := parseDate("to", to)
	if err != nil {
		return model.DateRange{}, err
	}
	return model.DateRange{From: f, To: t}, nil
}
