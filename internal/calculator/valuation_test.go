package calculator

import (
	"errors"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/util"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func holding(symbol string, shares int64, price float64) domain.Holding {
	return domain.Holding{
		Symbol:        domain.Ticker(symbol),
		Shares:        shares,
		PurchasePrice: decimal.NewFromFloat(price),
	}
}

func series(t *testing.T, symbol string, prices ...float64) domain.PriceSeries {
	points := []domain.PricePoint{}
	for i, p := range prices {
		points = append(points, domain.PricePoint{
			Date:  util.NewDate(2023, 1, 2).AddDate(0, 0, i),
			Price: p,
		})
	}
	s, err := domain.NewPriceSeries(domain.Ticker(symbol), points)
	require.NoError(t, err)
	return *s
}

func requireDecimal(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.NewFromFloat(expected).Equal(actual), "expected %v, got %s", expected, actual.String())
}

func TestValuePortfolio(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		holdings := []domain.Holding{
			holding("AAPL", 10, 150),
			holding("MSFT", 5, 250),
		}
		prices := map[domain.Ticker]domain.PriceSeries{
			"AAPL": series(t, "AAPL", 180, 190, 200),
			"MSFT": series(t, "MSFT", 310, 300),
		}

		portfolio, dropped, err := ValuePortfolio(holdings, prices)
		require.NoError(t, err)
		require.Empty(t, dropped)
		require.Len(t, portfolio.Rows, 2)

		aapl := portfolio.Rows[0]
		requireDecimal(t, 200, aapl.CurrentPrice)
		requireDecimal(t, 1500, aapl.Investment)
		requireDecimal(t, 2000, aapl.CurrentValue)
		requireDecimal(t, 500, aapl.ProfitLoss)
		require.InDelta(t, 33.33, float64(aapl.ReturnPct), 0.01)

		msft := portfolio.Rows[1]
		requireDecimal(t, 1250, msft.Investment)
		requireDecimal(t, 1500, msft.CurrentValue)
		requireDecimal(t, 250, msft.ProfitLoss)
		require.InDelta(t, 20.0, float64(msft.ReturnPct), 0.01)

		requireDecimal(t, 2750, portfolio.Total.Investment)
		requireDecimal(t, 3500, portfolio.Total.CurrentValue)
		requireDecimal(t, 750, portfolio.Total.ProfitLoss)
		require.InDelta(t, 27.27, float64(portfolio.Total.ReturnPct), 0.01)

		allocation := portfolio.Allocation()
		require.InDelta(t, 57.14, float64(allocation["AAPL"]), 0.01)
		require.InDelta(t, 42.86, float64(allocation["MSFT"]), 0.01)
	})

	t.Run("missing ticker is dropped", func(t *testing.T) {
		holdings := []domain.Holding{
			holding("AAPL", 10, 150),
			holding("ZZZZ", 3, 10),
			holding("EMPTY", 1, 10),
		}
		prices := map[domain.Ticker]domain.PriceSeries{
			"AAPL":  series(t, "AAPL", 200),
			"EMPTY": {Symbol: "EMPTY"},
		}

		portfolio, dropped, err := ValuePortfolio(holdings, prices)
		require.NoError(t, err)
		require.Equal(t, []domain.Ticker{"ZZZZ", "EMPTY"}, dropped)
		require.Equal(t, []domain.Ticker{"AAPL"}, portfolio.Symbols())
		requireDecimal(t, 1500, portfolio.Total.Investment)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		_, dropped, err := ValuePortfolio(
			[]domain.Holding{holding("ZZZZ", 1, 1)},
			map[domain.Ticker]domain.PriceSeries{},
		)
		require.True(t, errors.Is(err, domain.ErrNoData))
		require.Equal(t, []domain.Ticker{"ZZZZ"}, dropped)
	})

	t.Run("zero investment row", func(t *testing.T) {
		holdings := []domain.Holding{
			holding("GIFT", 10, 0),
			holding("AAPL", 10, 150),
		}
		portfolio, _, err := ValuePortfolioFromLatest(holdings, map[domain.Ticker]float64{
			"GIFT": 5,
			"AAPL": 150,
		})
		require.NoError(t, err)
		require.False(t, portfolio.Rows[0].ReturnPct.Defined())
		require.Equal(t, "N/A", portfolio.Rows[0].ReturnPct.String())
		require.True(t, portfolio.Total.ReturnPct.Defined())
		require.InDelta(t, 3.33, float64(portfolio.Total.ReturnPct), 0.01)
	})

	t.Run("sole zero investment holding", func(t *testing.T) {
		portfolio, _, err := ValuePortfolioFromLatest(
			[]domain.Holding{holding("GIFT", 10, 0)},
			map[domain.Ticker]float64{"GIFT": 5},
		)
		require.NoError(t, err)
		require.False(t, portfolio.Total.ReturnPct.Defined())
	})
}
