package calculator

import (
	"math"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func matrixOf(t *testing.T, in map[string][]float64) domain.PriceMatrix {
	out := map[domain.Ticker]domain.PriceSeries{}
	for symbol, prices := range in {
		out[domain.Ticker(symbol)] = series(t, symbol, prices...)
	}
	return domain.NewPriceMatrix(out)
}

func TestCalculateRiskMetrics(t *testing.T) {
	t.Run("flat series", func(t *testing.T) {
		metrics := CalculateRiskMetrics(matrixOf(t, map[string][]float64{
			"FLAT": {100, 100, 100, 100},
		}))
		require.Equal(t, 0.0, metrics.Volatility)
		require.True(t, math.IsNaN(metrics.SharpeRatio))
	})

	t.Run("single series", func(t *testing.T) {
		metrics := CalculateRiskMetrics(matrixOf(t, map[string][]float64{
			"AAPL": {100, 110, 99},
		}))
		// returns are +0.1 and -0.1
		expectedStdev := math.Sqrt(0.02)
		require.InDelta(t, expectedStdev*math.Sqrt(252), metrics.Volatility, 1e-9)
		require.InDelta(t, 0, metrics.SharpeRatio, 1e-9)
	})

	t.Run("averages across tickers on aligned dates", func(t *testing.T) {
		d := func(day int) time.Time { return util.NewDate(2023, 1, day) }
		a, err := domain.NewPriceSeries("A", []domain.PricePoint{
			{Date: d(2), Price: 100},
			{Date: d(3), Price: 101},
			{Date: d(4), Price: 102},
			{Date: d(5), Price: 103},
		})
		require.NoError(t, err)
		b, err := domain.NewPriceSeries("B", []domain.PricePoint{
			{Date: d(2), Price: 50},
			{Date: d(3), Price: 55},
			{Date: d(5), Price: 60},
		})
		require.NoError(t, err)
		matrix := domain.NewPriceMatrix(map[domain.Ticker]domain.PriceSeries{"A": *a, "B": *b})

		metrics := CalculateRiskMetrics(matrix)

		// jan 4 is dropped, so A's prices are 100, 101, 103
		a1, a2 := 0.01, 103.0/101-1
		b1, b2 := 0.1, 60.0/55-1
		// sample stdev of two values is |x - y| / sqrt(2)
		stdevA := math.Abs(a1-a2) / math.Sqrt2
		stdevB := math.Abs(b1-b2) / math.Sqrt2
		avgMean := ((a1+a2)/2 + (b1+b2)/2) / 2
		avgStdev := (stdevA + stdevB) / 2

		require.InDelta(t, avgStdev*math.Sqrt(252), metrics.Volatility, 1e-9)
		require.InDelta(t, avgMean*math.Sqrt(252)/avgStdev, metrics.SharpeRatio, 1e-6)
	})

	t.Run("single return has no spread", func(t *testing.T) {
		metrics := CalculateRiskMetrics(matrixOf(t, map[string][]float64{
			"AAPL": {100, 105},
		}))
		require.Equal(t, 0.0, metrics.Volatility)
		require.True(t, math.IsNaN(metrics.SharpeRatio))
	})

	t.Run("fewer than two aligned dates", func(t *testing.T) {
		metrics := CalculateRiskMetrics(matrixOf(t, map[string][]float64{
			"AAPL": {100},
		}))
		require.True(t, math.IsNaN(metrics.Volatility))
		require.True(t, math.IsNaN(metrics.SharpeRatio))

		metrics = CalculateRiskMetrics(domain.PriceMatrix{})
		require.True(t, math.IsNaN(metrics.Volatility))
	})
}

func Test_dailyReturns(t *testing.T) {
	require.Equal(t, []float64{}, dailyReturns([]float64{100}))
	returns := dailyReturns([]float64{100, 110, 121})
	require.Len(t, returns, 2)
	require.InDelta(t, 0.1, returns[0], 1e-12)
	require.InDelta(t, 0.1, returns[1], 1e-12)
}
