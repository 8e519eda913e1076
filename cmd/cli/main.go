package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/kakeibu/pkg/config"
	"github.com/yurifrl/kakeibu/pkg/csv"
	"github.com/yurifrl/kakeibu/pkg/executors"
	"github.com/yurifrl/kakeibu/pkg/importer"
	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/plan"
	"github.com/yurifrl/kakeibu/pkg/totals"
	"github.com/yurifrl/kakeibu/pkg/ynab"
)

var (
	cliFilters filters
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "kakeibu-cli",
	Short: "kakeibu command-line interface",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

// setup loads configuration and tables and builds the importer.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, *importer.Importer, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "kakeibu-cli",
		Level:           cfg.Level(),
	})
	tables, err := cfg.LoadTables()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, importer.New(logger, tables), nil
}

func runImport(cmd *cobra.Command, args []string) (*importer.Batch, *config.Config, error) {
	if err := cliFilters.validate(); err != nil {
		return nil, nil, err
	}
	cfg, logger, imp, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	files, err := collectFiles(args)
	if err != nil {
		return nil, nil, err
	}
	batch, err := imp.Import(files, func(current, total int) {
		logger.Debug("progress", "file", current, "of", total)
	})
	if err != nil {
		return nil, nil, err
	}
	sort.SliceStable(batch.Transactions, func(i, j int) bool {
		return batch.Transactions[i].At().Before(batch.Transactions[j].At())
	})
	return batch, cfg, nil
}

var importCmd = &cobra.Command{
	Use:   "import [flags] <path>...",
	Short: "Import statements and print the deduplicated ledger as CSV",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, cfg, err := runImport(cmd, args)
		if err != nil {
			return err
		}

		out := csv.Create(batch.Transactions, cliFilters.toFilterFunc())
		if cfg.Output == "" {
			fmt.Print(string(out))
			return nil
		}
		return os.WriteFile(cfg.Output, out, 0644)
	},
}

var (
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var totalsCmd = &cobra.Command{
	Use:   "totals [flags] <path>...",
	Short: "Print monthly income and expense totals",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")
		if month < 1 || month > 12 {
			return fmt.Errorf("invalid month %d", month)
		}

		batch, _, err := runImport(cmd, args)
		if err != nil {
			return err
		}
		keep := cliFilters.toFilterFunc()
		var selected []*models.Transaction
		for _, tx := range batch.Transactions {
			if keep(tx) {
				selected = append(selected, tx)
			}
		}

		t := totals.ForMonth(selected, year, time.Month(month))
		fmt.Printf("%04d-%02d (%d transactions)\n", year, month, len(t.Transactions))
		fmt.Println(incomeStyle.Render(fmt.Sprintf("  income   ¥%.0f", t.Income)))
		fmt.Println(expenseStyle.Render(fmt.Sprintf("  expenses ¥%.0f", t.Expenses)))
		fmt.Printf("  net      ¥%.0f\n", t.Net())
		return nil
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Dump the source descriptor table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		tables, err := cfg.LoadTables()
		if err != nil {
			return err
		}
		for _, d := range tables.Sources.Descriptors {
			pp.Println(d)
		}
		return nil
	},
}

func newExecutor(cmd *cobra.Command, p *plan.Plan) (*executors.Executor, error) {
	cfg, logger, imp, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	tokenEnv := p.YNAB.TokenEnv
	if tokenEnv == "" {
		tokenEnv = cfg.YNAB.TokenEnv
	}
	token := os.Getenv(tokenEnv)
	if token == "" {
		return nil, fmt.Errorf("YNAB token not set in $%s", tokenEnv)
	}
	return executors.New(logger, cfg, imp, ynab.New(token)), nil
}

var planCmd = &cobra.Command{
	Use:   "plan <plan_file>",
	Short: "Preview which ledger transactions would be pushed to YNAB (dry-run)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		exec, err := newExecutor(cmd, p)
		if err != nil {
			return err
		}

		fmt.Printf("Plan preview for %s\n", args[0])
		p.Print(os.Stdout)
		changes, err := exec.Plan(p)
		if err != nil {
			return err
		}
		fmt.Println("Summary of changes:")
		for _, c := range changes {
			fmt.Printf("  - account %s : create %d transactions\n", c.AccountID, c.ToCreate)
		}
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan_file>",
	Short: "Push missing ledger transactions to YNAB",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		exec, err := newExecutor(cmd, p)
		if err != nil {
			return err
		}
		changes, err := exec.Apply(p)
		for _, c := range changes {
			fmt.Printf("  - account %s : created %d transactions\n", c.AccountID, c.ToCreate)
		}
		return err
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is kakeibu.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("sources", "", "Source descriptor table (default: built in)")
	rootCmd.PersistentFlags().String("categories", "", "Category mapping table (default: built in)")
	rootCmd.PersistentFlags().String("keywords", "", "Transfer/fee keyword table (default: built in)")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "End date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.minAmount, "min", 0, "Minimum amount")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.maxAmount, "max", 0, "Maximum amount")
	rootCmd.PersistentFlags().StringVar(&cliFilters.shop, "shop", "", "Filter by description (case insensitive)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.category, "category", "", "Filter by category id")
	rootCmd.PersistentFlags().StringVar(&cliFilters.txType, "type", "", "Filter by type (income or expense)")

	importCmd.Flags().StringP("output", "o", "", "Write the ledger to this file instead of stdout")

	now := time.Now()
	totalsCmd.Flags().Int("year", now.Year(), "Year")
	totalsCmd.Flags().Int("month", int(now.Month()), "Month (1-12)")

	applyCmd.Flags().Bool("use-custom-id", true, "Match YNAB transactions by the id stored in the memo")
	planCmd.Flags().Bool("use-custom-id", true, "Match YNAB transactions by the id stored in the memo")
	for _, c := range []*cobra.Command{planCmd, applyCmd} {
		c.Flags().String("budget", "", "YNAB budget id (overrides the config file)")
	}

	rootCmd.AddCommand(importCmd, totalsCmd, sourcesCmd, planCmd, applyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
