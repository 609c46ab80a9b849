package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"portfolioanalyzer/api"
	"portfolioanalyzer/cmd"
	"portfolioanalyzer/internal/app"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/logger"
	"portfolioanalyzer/internal/util"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var handler *api.ApiHandler

	root := &cobra.Command{
		Use:   "analyzer",
		Short: "portfolio valuation, risk metrics and progressive tax estimates",
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			h, err := cmd.InitializeDependencies()
			if err != nil {
				return err
			}
			handler = h
			return nil
		},
		SilenceUsage: true,
	}

	root.AddCommand(
		newPortfolioCmd(func() *api.ApiHandler { return handler }),
		newTaxCmd(func() *api.ApiHandler { return handler }),
		newServeCmd(func() *api.ApiHandler { return handler }),
	)
	return root
}

func newPortfolioCmd(handler func() *api.ApiHandler) *cobra.Command {
	var (
		in      app.PortfolioInput
		csvPath string
	)
	c := &cobra.Command{
		Use:   "portfolio",
		Short: "value holdings and compute volatility / sharpe ratio",
		RunE: func(c *cobra.Command, args []string) error {
			req, err := app.ParsePortfolioInput(in, util.Today())
			if err != nil {
				return err
			}

			h := handler()
			ctx := logger.WithLogger(context.Background(), h.Logger)
			report, err := h.PortfolioHandler.Analyze(ctx, *req)
			if err != nil {
				return err
			}

			printPortfolio(c.OutOrStdout(), report)

			if csvPath != "" {
				return writeFile(csvPath, func(w io.Writer) error {
					return app.WritePortfolioCSV(w, report.Portfolio)
				})
			}
			return nil
		},
	}
	c.Flags().StringVar(&in.Tickers, "tickers", "AAPL, MSFT, TSLA", "comma separated stock symbols")
	c.Flags().StringVar(&in.Shares, "shares", "10, 5, 8", "comma separated share counts, one per ticker")
	c.Flags().StringVar(&in.PurchasePrices, "prices", "150, 250, 700", "comma separated purchase prices, one per ticker")
	c.Flags().StringVar(&in.Start, "start", "2023-01-01", "start date (YYYY-MM-DD)")
	c.Flags().StringVar(&in.End, "end", "", "end date (YYYY-MM-DD), defaults to today")
	c.Flags().StringVar(&csvPath, "csv", "", "also write the valuation table to this csv file")
	return c
}

func newTaxCmd(handler func() *api.ApiHandler) *cobra.Command {
	var (
		income, deductions, credits float64
		status, csvPath             string
	)
	c := &cobra.Command{
		Use:   "tax",
		Short: "estimate income tax on a progressive bracket schedule",
		RunE: func(c *cobra.Command, args []string) error {
			report, err := handler().TaxHandler.Calculate(income, deductions, credits, status)
			if err != nil {
				return err
			}
			printTax(c.OutOrStdout(), report)

			if csvPath != "" {
				return writeFile(csvPath, func(w io.Writer) error {
					return app.WriteTaxBreakdownCSV(w, report.Breakdown)
				})
			}
			return nil
		},
	}
	c.Flags().Float64Var(&income, "income", 50_000, "annual income")
	c.Flags().Float64Var(&deductions, "deductions", 5_000, "deductions")
	c.Flags().Float64Var(&credits, "credits", 1_000, "tax credits")
	c.Flags().StringVar(&status, "status", "single", "filing status (single or married)")
	c.Flags().StringVar(&csvPath, "csv", "", "also write the tax breakdown to this csv file")
	return c
}

func newServeCmd(handler func() *api.ApiHandler) *cobra.Command {
	var port int
	c := &cobra.Command{
		Use:   "serve",
		Short: "serve the json api",
		RunE: func(c *cobra.Command, args []string) error {
			return handler().StartApi(port)
		},
	}
	c.Flags().IntVar(&port, "port", 3009, "port to listen on")
	return c
}

// writeFile creates path and hands it to write. the close error is
// returned too, since that is where a failed flush shows up
func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func formatRatio(f float64, percent bool) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "N/A"
	}
	if percent {
		return fmt.Sprintf("%.2f%%", f*100)
	}
	return fmt.Sprintf("%.2f", f)
}

func printPortfolio(out io.Writer, report *app.PortfolioReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Ticker\tShares\tPurchase Price\tCurrent Price\tInvestment\tCurrent Value\tProfit/Loss\tReturn\tAllocation\t")
	for _, row := range report.Portfolio.Rows {
		fmt.Fprintf(w, "%s\t%d\t$%s\t$%s\t$%s\t$%s\t$%s\t%s\t%s\t\n",
			row.Holding.Symbol,
			row.Holding.Shares,
			row.Holding.PurchasePrice.StringFixed(2),
			row.CurrentPrice.StringFixed(2),
			row.Investment.StringFixed(2),
			row.CurrentValue.StringFixed(2),
			row.ProfitLoss.StringFixed(2),
			row.ReturnPct,
			report.Allocation[row.Holding.Symbol],
		)
	}
	total := report.Portfolio.Total
	fmt.Fprintf(w, "TOTAL\t\t\t\t$%s\t$%s\t$%s\t%s\t\t\n",
		total.Investment.StringFixed(2),
		total.CurrentValue.StringFixed(2),
		total.ProfitLoss.StringFixed(2),
		total.ReturnPct,
	)
	w.Flush()

	fmt.Fprintln(out)
	for _, e := range report.FetchErrors {
		fmt.Fprintf(out, "skipped %s: %s\n", e.Symbol, e.Error())
	}
	fmt.Fprintf(out, "Portfolio Volatility: %s\n", formatRatio(report.Risk.Volatility, true))
	fmt.Fprintf(out, "Sharpe Ratio: %s\n", formatRatio(report.Risk.SharpeRatio, false))
}

func printTax(out io.Writer, report *app.TaxReport) {
	r := report.Result
	fmt.Fprintf(out, "Filing Status: %s\n", r.Input.Status)
	fmt.Fprintf(out, "Taxable Income: $%.2f\n", r.TaxableIncome)
	fmt.Fprintf(out, "Tax Due: $%.2f\n", r.TaxDue)
	fmt.Fprintf(out, "Effective Rate: %s\n", r.EffectiveRate())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nBracket\tRate\tTaxed Amount\tTax\t")
	for _, b := range r.Brackets {
		bound := fmt.Sprintf("up to $%.0f", b.Bracket.UpperBound)
		if math.IsInf(b.Bracket.UpperBound, 1) {
			bound = "above"
		}
		fmt.Fprintf(w, "%s\t%s\t$%.2f\t$%.2f\t\n", bound, domain.Percent(b.Bracket.Rate*100), b.Amount, b.Tax)
	}
	w.Flush()
}
