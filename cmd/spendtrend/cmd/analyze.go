package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendtrend/internal/amqp"
	"spendtrend/internal/cli"
	"spendtrend/internal/config"
	"spendtrend/internal/core"
	"spendtrend/internal/ingest"
	"spendtrend/internal/services"
	"spendtrend/internal/sources"
)

// filterFlags are shared by every analysis command.
type filterFlags struct {
	start    string
	end      string
	category string
	json     bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.category, "category", "", "only include this category")
	cmd.Flags().BoolVar(&f.json, "json", false, "print machine readable JSON")
}

// params turns the flags into report parameters. Threshold and horizon
// start from the configured defaults.
func (f *filterFlags) params(cfg *config.Config) (services.Params, error) {
	p := services.Params{
		Category:  f.category,
		Threshold: cfg.DefaultBudget,
		Horizon:   cfg.DefaultHorizon,
	}
	if f.start != "" {
		d, err := core.ParseISODate(f.start)
		if err != nil {
			return p, fmt.Errorf("--start: %w", err)
		}
		p.Start = &d
	}
	if f.end != "" {
		d, err := core.ParseISODate(f.end)
		if err != nil {
			return p, fmt.Errorf("--end: %w", err)
		}
		p.End = &d
	}
	return p, nil
}

// run is the loaded state an analysis command works on.
type run struct {
	cfg     *config.Config
	ledger  core.Ledger
	stats   ingest.Stats
	reports *services.ReportService
	params  services.Params
	close   func()
}

// prepare loads configuration and every ledger source, then wires the
// report service. Budget alerts are published when AMQP_URL is set.
func prepare(ctx context.Context, flags *filterFlags) (*run, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	p, err := flags.params(cfg)
	if err != nil {
		return nil, err
	}

	aliases, err := cli.LoadAliases(cfg.AliasFile)
	if err != nil {
		return nil, err
	}

	srcs, closeSources, err := cli.OpenSources(ctx, cfg, ledgerFiles, logger)
	if err != nil {
		return nil, err
	}
	ledger, stats, err := sources.LoadAll(ctx, srcs, aliases, logger)
	if err != nil {
		closeSources()
		return nil, err
	}

	closers := []func(){closeSources}
	var publisher services.AlertPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Budget alerts disabled, AMQP unavailable", "error", err)
		} else {
			publisher = client
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	p.Source = sourceLabel(srcs)
	return &run{
		cfg:     cfg,
		ledger:  ledger,
		stats:   stats,
		reports: services.NewReportService(publisher, logger),
		params:  p,
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

func sourceLabel(srcs []sources.Source) string {
	if len(srcs) == 1 {
		return srcs[0].Name()
	}
	return fmt.Sprintf("%d sources", len(srcs))
}

var (
	summaryFlags    filterFlags
	categoriesFlags filterFlags
	budgetFlags     filterFlags
	forecastFlags   filterFlags
	reportFlags     filterFlags

	budgetThreshold string
	forecastMonths  int
	reportThreshold string
	reportMonths    int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show total, monthly average and top category",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := prepare(cmd.Context(), &summaryFlags)
		if err != nil {
			return err
		}
		defer r.close()

		s, err := r.reports.Summary(r.ledger, r.params)
		if err != nil {
			return err
		}
		if summaryFlags.json {
			return writeJSON(os.Stdout, s)
		}
		return printSummary(os.Stdout, s, r.stats)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Rank categories by total spend",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := prepare(cmd.Context(), &categoriesFlags)
		if err != nil {
			return err
		}
		defer r.close()

		cats, err := r.reports.Categories(r.ledger, r.params)
		if err != nil {
			return err
		}
		if categoriesFlags.json {
			return writeJSON(os.Stdout, cats)
		}
		return printCategories(os.Stdout, cats)
	},
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Check the latest month against a spending threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := prepare(cmd.Context(), &budgetFlags)
		if err != nil {
			return err
		}
		defer r.close()

		if err := applyThreshold(&r.params, budgetThreshold); err != nil {
			return err
		}
		v, err := r.reports.Budget(cmd.Context(), r.ledger, r.params)
		if err != nil {
			return err
		}
		if budgetFlags.json {
			return writeJSON(os.Stdout, v)
		}
		return printVerdict(os.Stdout, v)
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project monthly spend with a linear trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := prepare(cmd.Context(), &forecastFlags)
		if err != nil {
			return err
		}
		defer r.close()

		if cmd.Flags().Changed("months") {
			r.params.Horizon = forecastMonths
		}
		res, model, err := r.reports.Forecast(r.ledger, r.params)
		if err != nil {
			return err
		}
		if forecastFlags.json {
			return writeJSON(os.Stdout, res)
		}
		return printForecast(os.Stdout, res, model.RSquared())
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print every analysis at once",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := prepare(cmd.Context(), &reportFlags)
		if err != nil {
			return err
		}
		defer r.close()

		if err := applyThreshold(&r.params, reportThreshold); err != nil {
			return err
		}
		if cmd.Flags().Changed("months") {
			r.params.Horizon = reportMonths
		}
		rep, err := r.reports.Build(cmd.Context(), r.ledger, r.params)
		if err != nil {
			return err
		}
		if reportFlags.json {
			return writeJSON(os.Stdout, rep)
		}
		return printReport(os.Stdout, rep, r.stats)
	},
}

// applyThreshold overrides the configured budget when raw is set.
func applyThreshold(p *services.Params, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := core.ParseAmount(raw)
	if err != nil {
		return fmt.Errorf("--threshold %q: %w", raw, err)
	}
	if d.IsNegative() {
		return core.ErrNegativeThreshold
	}
	p.Threshold = d
	return nil
}

func init() {
	summaryFlags.register(summaryCmd)
	categoriesFlags.register(categoriesCmd)
	budgetFlags.register(budgetCmd)
	forecastFlags.register(forecastCmd)
	reportFlags.register(reportCmd)

	budgetCmd.Flags().StringVar(&budgetThreshold, "threshold", "", "monthly budget (default DEFAULT_BUDGET)")
	forecastCmd.Flags().IntVar(&forecastMonths, "months", 3, "months to project (1-12, default DEFAULT_HORIZON)")
	reportCmd.Flags().StringVar(&reportThreshold, "threshold", "", "monthly budget (default DEFAULT_BUDGET)")
	reportCmd.Flags().IntVar(&reportMonths, "months", 3, "months to project (1-12, default DEFAULT_HORIZON)")
}
