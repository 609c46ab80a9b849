package domain

import "math"

// TradingDaysPerYear is the annualization horizon for daily data
const TradingDaysPerYear = 252

// RiskMetrics values are NaN when undefined
type RiskMetrics struct {
	Volatility  float64
	SharpeRatio float64
}

func UndefinedRiskMetrics() RiskMetrics {
	return RiskMetrics{
		Volatility:  math.NaN(),
		SharpeRatio: math.NaN(),
	}
}
