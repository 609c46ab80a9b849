package app

import (
	"context"
	"errors"
	"math"
	"portfolioanalyzer/internal/domain"
	mock_repository "portfolioanalyzer/internal/repository/mocks"
	l1_service "portfolioanalyzer/internal/service/l1"
	"portfolioanalyzer/internal/util"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func seriesResult(t *testing.T, symbol domain.Ticker, prices ...float64) domain.QuoteResult {
	points := []domain.PricePoint{}
	for i, p := range prices {
		points = append(points, domain.PricePoint{
			Date:  util.NewDate(2023, 1, 2).AddDate(0, 0, i),
			Price: p,
		})
	}
	s, err := domain.NewPriceSeries(symbol, points)
	require.NoError(t, err)
	return domain.QuoteResult{Series: s}
}

func TestPortfolioHandler_Analyze(t *testing.T) {
	today := util.NewDate(2023, 3, 1)
	req, err := ParsePortfolioInput(PortfolioInput{
		Tickers:        "aapl, ZZZZ",
		Shares:         "10, 3",
		PurchasePrices: "150, 20",
		Start:          "2023-01-01",
	}, today)
	require.NoError(t, err)

	t.Run("missing ticker isolation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
		quoteRepository.EXPECT().
			Fetch(gomock.Any(), []domain.Ticker{"AAPL", "ZZZZ"}, util.NewDate(2023, 1, 1), today).
			Return(domain.NewQuoteBatch(map[domain.Ticker]domain.QuoteResult{
				"AAPL": seriesResult(t, "AAPL", 190, 195, 200),
				"ZZZZ": {Err: domain.NewFetchError("ZZZZ", domain.FetchErrorInvalidSymbol, nil)},
			})).
			Times(1)

		handler := PortfolioHandler{
			PriceHistoryStore: l1_service.NewPriceHistoryStore(quoteRepository),
		}
		ctx, profile := domain.NewCtxWithProfile(context.Background())
		report, err := handler.Analyze(ctx, *req)
		require.NoError(t, err)

		require.Equal(t, []domain.Ticker{"ZZZZ"}, report.Dropped)
		require.Len(t, report.FetchErrors, 1)
		require.Equal(t, domain.FetchErrorInvalidSymbol, report.FetchErrors[0].Kind)
		require.Equal(t, []domain.Ticker{"AAPL"}, report.Portfolio.Symbols())
		require.True(t, report.Portfolio.Total.CurrentValue.Equal(decimal.NewFromInt(2000)))
		require.Equal(t, []domain.Ticker{"AAPL"}, report.Matrix.Symbols)
		require.Equal(t, 3, report.Matrix.Len())
		require.False(t, math.IsNaN(report.Risk.Volatility))
		require.InDelta(t, 100, float64(report.Allocation["AAPL"]), 1e-9)
		require.Equal(t, []string{"get price history", "value portfolio", "risk metrics"}, profile.SpanNames())

		// second run is served from the store
		_, err = handler.Analyze(context.Background(), *req)
		require.NoError(t, err)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
		quoteRepository.EXPECT().
			Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.NewQuoteBatch(map[domain.Ticker]domain.QuoteResult{
				"AAPL": {Err: domain.NewFetchError("AAPL", domain.FetchErrorTimeout, nil)},
				"ZZZZ": {Err: domain.NewFetchError("ZZZZ", domain.FetchErrorInvalidSymbol, nil)},
			}))

		handler := PortfolioHandler{
			PriceHistoryStore: l1_service.NewPriceHistoryStore(quoteRepository),
		}
		_, err := handler.Analyze(context.Background(), *req)
		require.True(t, errors.Is(err, domain.ErrNoData))
	})
}

func TestTaxHandler_Calculate(t *testing.T) {
	handler := TaxHandler{Brackets: domain.DefaultTaxBrackets()}

	report, err := handler.Calculate(50_000, 5_000, 1_000, " Single ")
	require.NoError(t, err)
	require.InDelta(t, 45_000, report.Result.TaxableIncome, 1e-9)
	require.InDelta(t, 6_000, report.Result.TaxDue, 1e-9)
	require.Equal(t, "Tax Paid", report.Breakdown.Split[1].Label)

	_, err = handler.Calculate(50_000, 0, 0, "head of household")
	require.True(t, domain.IsConfigurationError(err, domain.ConfigUnknownFilingStatus))
}
