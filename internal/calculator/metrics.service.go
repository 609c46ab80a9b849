package calculator

import (
	"math"
	"portfolioanalyzer/internal/domain"

	"github.com/montanaflynn/stats"
)

type tickerReturnStats struct {
	mean  float64
	stdev float64
}

// CalculateRiskMetrics derives annualized volatility and a Sharpe ratio
// from the dates every ticker in the matrix has a price on.
//
//	volatility = avg(daily stdev) * sqrt(252)
//	sharpe     = avg(daily mean) * sqrt(252) / avg(daily stdev)
//
// there is no risk free rate in the sharpe ratio. stdev is the sample
// stdev (n-1). NaN marks an undefined value
func CalculateRiskMetrics(matrix domain.PriceMatrix) domain.RiskMetrics {
	aligned := matrix.Aligned()
	if aligned.Len() < 2 || len(aligned.Symbols) == 0 {
		return domain.UndefinedRiskMetrics()
	}

	perTicker := make([]tickerReturnStats, 0, len(aligned.Symbols))
	for _, symbol := range aligned.Symbols {
		s, err := returnStats(dailyReturns(aligned.Columns[symbol]))
		if err != nil {
			continue
		}
		perTicker = append(perTicker, s)
	}
	if len(perTicker) == 0 {
		return domain.UndefinedRiskMetrics()
	}

	means := make([]float64, len(perTicker))
	stdevs := make([]float64, len(perTicker))
	for i, s := range perTicker {
		means[i] = s.mean
		stdevs[i] = s.stdev
	}
	avgMean, _ := stats.Mean(means)
	avgStdev, _ := stats.Mean(stdevs)

	magicNumber := math.Sqrt(domain.TradingDaysPerYear)
	volatility := avgStdev * magicNumber

	sharpeRatio := math.NaN()
	if volatility != 0 {
		sharpeRatio = avgMean * magicNumber / avgStdev
	}

	return domain.RiskMetrics{
		Volatility:  volatility,
		SharpeRatio: sharpeRatio,
	}
}

// dailyReturns is (p_t - p_t-1) / p_t-1, so n prices give n-1 returns
func dailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}

// returnStats treats a single return as having no spread
func returnStats(returns []float64) (tickerReturnStats, error) {
	mean, err := stats.Mean(returns)
	if err != nil {
		return tickerReturnStats{}, err
	}
	if len(returns) == 1 {
		return tickerReturnStats{mean: mean}, nil
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return tickerReturnStats{}, err
	}
	return tickerReturnStats{
		mean:  mean,
		stdev: stdev,
	}, nil
}
