package app

import (
	"fmt"
	"io"
	"portfolioanalyzer/internal/domain"

	"github.com/gocarina/gocsv"
)

type valuationCsvRow struct {
	Ticker        string `csv:"Ticker"`
	Shares        int64  `csv:"Shares"`
	PurchasePrice string `csv:"Purchase Price"`
	CurrentPrice  string `csv:"Current Price"`
	Investment    string `csv:"Investment"`
	CurrentValue  string `csv:"Current Value"`
	ProfitLoss    string `csv:"Profit/Loss"`
	ReturnPct     string `csv:"Return (%)"`
}

func returnCell(p domain.Percent) string {
	if !p.Defined() {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", float64(p))
}

// WritePortfolioCSV writes one row per holding followed by the total row
func WritePortfolioCSV(w io.Writer, portfolio *domain.Portfolio) error {
	rows := make([]valuationCsvRow, 0, len(portfolio.Rows)+1)
	for _, row := range portfolio.Rows {
		rows = append(rows, valuationCsvRow{
			Ticker:        string(row.Holding.Symbol),
			Shares:        row.Holding.Shares,
			PurchasePrice: row.Holding.PurchasePrice.StringFixed(2),
			CurrentPrice:  row.CurrentPrice.StringFixed(2),
			Investment:    row.Investment.StringFixed(2),
			CurrentValue:  row.CurrentValue.StringFixed(2),
			ProfitLoss:    row.ProfitLoss.StringFixed(2),
			ReturnPct:     returnCell(row.ReturnPct),
		})
	}
	rows = append(rows, valuationCsvRow{
		Ticker:       "TOTAL",
		Investment:   portfolio.Total.Investment.StringFixed(2),
		CurrentValue: portfolio.Total.CurrentValue.StringFixed(2),
		ProfitLoss:   portfolio.Total.ProfitLoss.StringFixed(2),
		ReturnPct:    returnCell(portfolio.Total.ReturnPct),
	})

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write portfolio csv: %w", err)
	}
	return nil
}

// WriteTaxBreakdownCSV writes the summary chart series
func WriteTaxBreakdownCSV(w io.Writer, breakdown domain.TaxBreakdown) error {
	points := append([]domain.ChartPoint{}, breakdown.Summary...)
	points = append(points, breakdown.Split...)
	if err := gocsv.Marshal(points, w); err != nil {
		return fmt.Errorf("failed to write tax csv: %w", err)
	}
	return nil
}
