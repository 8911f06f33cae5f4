package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"spendtrend/internal/budget"
	"spendtrend/internal/core"
	"spendtrend/internal/forecast"
	"spendtrend/internal/ingest"
	"spendtrend/internal/services"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func printStats(w io.Writer, s ingest.Stats) {
	fmt.Fprintf(w, "Rows read: %d, kept: %d, dropped: %d", s.Read, s.Kept, s.Dropped)
	if s.Dropped > 0 {
		fmt.Fprintf(w, " (date %d, amount %d, category %d", s.InvalidDate, s.InvalidAmount, s.InvalidCategory)
		if s.Malformed > 0 {
			fmt.Fprintf(w, ", malformed %d", s.Malformed)
		}
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, s core.Summary, stats ingest.Stats) error {
	fmt.Fprintln(w, "=== Summary ===")
	tw := newTable(w)
	fmt.Fprintf(tw, "Total spending\t%s\t\n", core.FormatAmount(s.Total))
	fmt.Fprintf(tw, "Average per month\t%s\t\n", core.FormatAmount(s.AverageMonthly))
	fmt.Fprintf(tw, "Top category\t%s (%s)\t\n", s.Top.Category, core.FormatAmount(s.Top.Total))
	fmt.Fprintf(tw, "Transactions\t%d\t\n", s.Transactions)
	fmt.Fprintf(tw, "Months\t%d\t\n", s.Months)
	if err := tw.Flush(); err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printCategories(w io.Writer, cats []core.CategoryTotal) error {
	fmt.Fprintln(w, "=== Categories ===")
	tw := newTable(w)
	for i, c := range cats {
		fmt.Fprintf(tw, "%d.\t%s\t%s\t\n", i+1, c.Category, core.FormatAmount(c.Total))
	}
	return tw.Flush()
}

func printMonthly(w io.Writer, series []core.MonthTotal) error {
	fmt.Fprintln(w, "=== Monthly ===")
	tw := newTable(w)
	for _, m := range series {
		fmt.Fprintf(tw, "%s\t%s\t\n", m.Month, core.FormatAmount(m.Total))
	}
	return tw.Flush()
}

func printVerdict(w io.Writer, v budget.Verdict) error {
	fmt.Fprintln(w, "=== Budget ===")
	month := "(no data)"
	if v.Month != nil {
		month = v.Month.String()
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Month\t%s\t\n", month)
	fmt.Fprintf(tw, "Spent\t%s\t\n", core.FormatAmount(v.Spent))
	fmt.Fprintf(tw, "Threshold\t%s\t\n", core.FormatAmount(v.Threshold))
	if v.IsOver() {
		fmt.Fprintf(tw, "Over budget by\t%s\t\n", core.FormatAmount(v.Delta))
	} else {
		fmt.Fprintf(tw, "Within budget, headroom\t%s\t\n", core.FormatAmount(v.Delta))
	}
	return tw.Flush()
}

func printForecast(w io.Writer, res forecast.Result, r2 float64) error {
	fmt.Fprintln(w, "=== Forecast ===")
	tw := newTable(w)
	fmt.Fprintf(tw, "Month\tPrediction\tLower\tUpper\t\n")
	for _, p := range res.Points {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", p.Month, money(p.Prediction), money(p.Lower), money(p.Upper))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Trend: %s per month, R² %.3f\n", money(res.Slope), r2)
	return nil
}

func printReport(w io.Writer, rep services.Report, stats ingest.Stats) error {
	steps := []func() error{
		func() error { return printSummary(w, rep.Summary, stats) },
		func() error { return printCategories(w, rep.Categories) },
		func() error { return printMonthly(w, rep.Monthly) },
		func() error { return printVerdict(w, rep.Budget) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if rep.Forecast == nil {
		fmt.Fprintf(w, "=== Forecast ===\nunavailable: %s\n", rep.ForecastError)
		return nil
	}
	var r2 float64
	if rep.RSquared != nil {
		r2 = *rep.RSquared
	}
	return printForecast(w, *rep.Forecast, r2)
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
