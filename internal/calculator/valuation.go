package calculator

import (
	"fmt"
	"portfolioanalyzer/internal/domain"

	"github.com/shopspring/decimal"
)

// ValuePortfolio values every holding at the most recent price of its
// series. holdings without a usable series are dropped and returned in
// input order. if nothing survives, domain.ErrNoData is returned
func ValuePortfolio(holdings []domain.Holding, prices map[domain.Ticker]domain.PriceSeries) (*domain.Portfolio, []domain.Ticker, error) {
	currentPrices := map[domain.Ticker]decimal.Decimal{}
	for _, h := range holdings {
		series, ok := prices[h.Symbol]
		if !ok {
			continue
		}
		latest, ok := series.Latest()
		if !ok {
			continue
		}
		currentPrices[h.Symbol] = decimal.NewFromFloat(latest.Price)
	}

	return valuePortfolio(holdings, currentPrices)
}

// ValuePortfolioFromLatest is ValuePortfolio for prices that are already
// resolved to a single current value
func ValuePortfolioFromLatest(holdings []domain.Holding, latest map[domain.Ticker]float64) (*domain.Portfolio, []domain.Ticker, error) {
	currentPrices := map[domain.Ticker]decimal.Decimal{}
	for symbol, price := range latest {
		if price > 0 {
			currentPrices[symbol] = decimal.NewFromFloat(price)
		}
	}
	return valuePortfolio(holdings, currentPrices)
}

func valuePortfolio(holdings []domain.Holding, currentPrices map[domain.Ticker]decimal.Decimal) (*domain.Portfolio, []domain.Ticker, error) {
	portfolio := &domain.Portfolio{
		Rows: []domain.ValuationRow{},
	}
	dropped := []domain.Ticker{}

	totalInvestment := decimal.Zero
	totalValue := decimal.Zero
	for _, h := range holdings {
		price, ok := currentPrices[h.Symbol]
		if !ok {
			dropped = append(dropped, h.Symbol)
			continue
		}

		investment := h.Investment()
		currentValue := price.Mul(decimal.NewFromInt(h.Shares))
		profitLoss := currentValue.Sub(investment)

		portfolio.Rows = append(portfolio.Rows, domain.ValuationRow{
			Holding:      h,
			CurrentPrice: price,
			Investment:   investment,
			CurrentValue: currentValue,
			ProfitLoss:   profitLoss,
			ReturnPct:    domain.ReturnPercent(profitLoss, investment),
		})

		totalInvestment = totalInvestment.Add(investment)
		totalValue = totalValue.Add(currentValue)
	}

	if len(portfolio.Rows) == 0 {
		return nil, dropped, fmt.Errorf("cannot value portfolio of %d holding(s): %w", len(holdings), domain.ErrNoData)
	}

	totalProfitLoss := totalValue.Sub(totalInvestment)
	portfolio.Total = domain.ValuationTotal{
		Investment:   totalInvestment,
		CurrentValue: totalValue,
		ProfitLoss:   totalProfitLoss,
		ReturnPct:    domain.ReturnPercent(totalProfitLoss, totalInvestment),
	}

	return portfolio, dropped, nil
}
