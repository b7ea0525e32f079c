package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/audit"
	"github.com/cleared-dev/books/internal/config"
	"github.com/cleared-dev/books/internal/store"
)

// chartFile is where init writes the chart of accounts, relative to the books directory.
var chartFile = filepath.Join("accounts", "chart-of-accounts.csv")

type initOptions struct {
	name       string
	entityType string
	currency   string
	chartPath  string
}

func newInitCommand() *cobra.Command {
	var o initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new books directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, o)
		},
	}

	cmd.Flags().StringVar(&o.name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&o.entityType, "entity-type", "llc_single_member", "entity type")
	cmd.Flags().StringVar(&o.currency, "currency", "USD", "ISO 4217 currency used for display")
	cmd.Flags().StringVar(&o.chartPath, "chart", "", "chart of accounts CSV to use instead of the default chart")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir string, o initOptions) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	for _, d := range []string{"accounts", "import"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	chart := accounts.NewService(accounts.DefaultChart(o.entityType))
	if o.chartPath != "" {
		var err error
		if chart, err = accounts.LoadFile(o.chartPath); err != nil {
			return err
		}
	}
	if len(chart.All()) == 0 {
		return errors.New("chart of accounts is empty")
	}

	cfg := config.Default(o.name, o.entityType)
	cfg.Business.Currency = o.currency
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, chartFile))
	if err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	if err := accounts.WriteAccounts(f, chart.All()); err != nil {
		f.Close()
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	gitignore := cfg.Database.Path + "\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	st, err := store.Open(filepath.Join(dir, cfg.Database.Path))
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SaveAccounts(ctx, chart.All()); err != nil {
		return err
	}

	err = audit.Append(dir, audit.Record{
		Timestamp: time.Now(),
		Actor:     config.Actor(),
		Action:    audit.ActionInit,
		Details:   fmt.Sprintf("%s, %d accounts", o.name, len(chart.All())),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Initialized books for %s at %s (%d accounts)\n", o.name, dir, len(chart.All()))
	return nil
}
