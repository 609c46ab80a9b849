package api

import (
	"fmt"
	"math"
	"portfolioanalyzer/internal/app"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type portfolioRequest struct {
	Tickers        []string  `json:"tickers"`
	Shares         []int64   `json:"shares"`
	PurchasePrices []float64 `json:"purchasePrices"`
	Start          string    `json:"start"`
	End            string    `json:"end"`
}

type valuationRowJson struct {
	Symbol        string         `json:"symbol"`
	Shares        int64          `json:"shares"`
	PurchasePrice float64        `json:"purchasePrice"`
	CurrentPrice  float64        `json:"currentPrice"`
	Investment    float64        `json:"investment"`
	CurrentValue  float64        `json:"currentValue"`
	ProfitLoss    float64        `json:"profitLoss"`
	ReturnPct     domain.Percent `json:"returnPct"`
}

type valuationTotalJson struct {
	Investment   float64        `json:"investment"`
	CurrentValue float64        `json:"currentValue"`
	ProfitLoss   float64        `json:"profitLoss"`
	ReturnPct    domain.Percent `json:"returnPct"`
}

type fetchErrorJson struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

type riskMetricsJson struct {
	Volatility  *float64 `json:"volatility"`
	SharpeRatio *float64 `json:"sharpeRatio"`
}

type priceMatrixJson struct {
	Dates   []string              `json:"dates"`
	Columns map[string][]*float64 `json:"columns"`
}

type portfolioResponse struct {
	Holdings    []valuationRowJson        `json:"holdings"`
	Total       valuationTotalJson        `json:"total"`
	Dropped     []string                  `json:"dropped"`
	FetchErrors []fetchErrorJson          `json:"fetchErrors"`
	Allocation  map[string]domain.Percent `json:"allocation"`
	Risk        riskMetricsJson           `json:"risk"`
	PriceMatrix priceMatrixJson           `json:"priceMatrix"`
}

// json can't carry NaN
func floatPtr(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (m ApiHandler) portfolio(c *gin.Context) {
	var requestBody portfolioRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}

	start, err := util.ParseDate(requestBody.Start)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	end, err := util.ParseDate(requestBody.End)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	prices := make([]decimal.Decimal, len(requestBody.PurchasePrices))
	for i, p := range requestBody.PurchasePrices {
		prices[i] = decimal.NewFromFloat(p)
	}

	req, err := app.NewPortfolioRequest(requestBody.Tickers, requestBody.Shares, prices, start, end, util.Today())
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	report, err := m.PortfolioHandler.Analyze(c.Request.Context(), *req)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, portfolioResponseFromReport(report))
}

func portfolioResponseFromReport(report *app.PortfolioReport) portfolioResponse {
	out := portfolioResponse{
		Holdings:    []valuationRowJson{},
		Dropped:     domain.TickerStrings(report.Dropped),
		FetchErrors: []fetchErrorJson{},
		Allocation:  map[string]domain.Percent{},
		Risk: riskMetricsJson{
			Volatility:  floatPtr(report.Risk.Volatility),
			SharpeRatio: floatPtr(report.Risk.SharpeRatio),
		},
		PriceMatrix: priceMatrixJson{
			Dates:   []string{},
			Columns: map[string][]*float64{},
		},
	}

	for _, row := range report.Portfolio.Rows {
		out.Holdings = append(out.Holdings, valuationRowJson{
			Symbol:        string(row.Holding.Symbol),
			Shares:        row.Holding.Shares,
			PurchasePrice: row.Holding.PurchasePrice.InexactFloat64(),
			CurrentPrice:  row.CurrentPrice.InexactFloat64(),
			Investment:    row.Investment.InexactFloat64(),
			CurrentValue:  row.CurrentValue.InexactFloat64(),
			ProfitLoss:    row.ProfitLoss.InexactFloat64(),
			ReturnPct:     row.ReturnPct,
		})
	}
	total := report.Portfolio.Total
	out.Total = valuationTotalJson{
		Investment:   total.Investment.InexactFloat64(),
		CurrentValue: total.CurrentValue.InexactFloat64(),
		ProfitLoss:   total.ProfitLoss.InexactFloat64(),
		ReturnPct:    total.ReturnPct,
	}

	for _, e := range report.FetchErrors {
		out.FetchErrors = append(out.FetchErrors, fetchErrorJson{
			Symbol: string(e.Symbol),
			Kind:   string(e.Kind),
			Error:  e.Error(),
		})
	}
	for symbol, pct := range report.Allocation {
		out.Allocation[string(symbol)] = pct
	}

	for _, d := range report.Matrix.Dates {
		out.PriceMatrix.Dates = append(out.PriceMatrix.Dates, d.Format(time.DateOnly))
	}
	for symbol, col := range report.Matrix.Columns {
		values := make([]*float64, len(col))
		for i, v := range col {
			values[i] = floatPtr(v)
		}
		out.PriceMatrix.Columns[string(symbol)] = values
	}

	return out
}
