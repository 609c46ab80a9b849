package app

import (
	"context"
	"fmt"
	"portfolioanalyzer/internal/calculator"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/logger"
	l1_service "portfolioanalyzer/internal/service/l1"
)

type PortfolioHandler struct {
	PriceHistoryStore l1_service.PriceHistoryStore
}

type PortfolioReport struct {
	Request     PortfolioRequest
	Portfolio   *domain.Portfolio
	Dropped     []domain.Ticker
	FetchErrors []*domain.FetchError
	Matrix      domain.PriceMatrix
	Risk        domain.RiskMetrics
	Allocation  map[domain.Ticker]domain.Percent
}

// Analyze fetches price history for the request, values the holdings and
// derives risk metrics from every ticker that resolved
func (h PortfolioHandler) Analyze(ctx context.Context, req PortfolioRequest) (*PortfolioReport, error) {
	log := logger.FromContext(ctx)
	profile := domain.GetProfile(ctx)

	endSpan := profile.StartSpan("get price history")
	batch := h.PriceHistoryStore.Get(ctx, req.Symbols(), req.Start, req.End)
	endSpan()

	if batch.Err != nil {
		return nil, fmt.Errorf("no ticker in %v resolved: %w", req.Symbols(), domain.ErrNoData)
	}
	fetchErrors := batch.Errors()
	for _, e := range fetchErrors {
		log.Warnf("dropping %s: %s", e.Symbol, e.Kind)
	}

	endSpan = profile.StartSpan("value portfolio")
	prices := batch.Series()
	portfolio, dropped, err := calculator.ValuePortfolio(req.Holdings, prices)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to value portfolio: %w", err)
	}

	endSpan = profile.StartSpan("risk metrics")
	matrix := domain.NewPriceMatrix(prices)
	risk := calculator.CalculateRiskMetrics(matrix)
	endSpan()

	return &PortfolioReport{
		Request:     req,
		Portfolio:   portfolio,
		Dropped:     dropped,
		FetchErrors: fetchErrors,
		Matrix:      matrix,
		Risk:        risk,
		Allocation:  portfolio.Allocation(),
	}, nil
}
