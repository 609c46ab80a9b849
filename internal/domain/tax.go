package domain

import (
	"math"
	"strings"
)

type FilingStatus string

const (
	FilingStatusSingle  FilingStatus = "single"
	FilingStatusMarried FilingStatus = "married"
)

func ParseFilingStatus(s string) (FilingStatus, error) {
	switch FilingStatus(strings.ToLower(strings.TrimSpace(s))) {
	case FilingStatusSingle:
		return FilingStatusSingle, nil
	case FilingStatusMarried:
		return FilingStatusMarried, nil
	}
	return "", NewConfigurationError(ConfigUnknownFilingStatus, "filing status", "%q is not one of single, married", s)
}

// TaxBracket taxes income up to UpperBound at Rate. the top bracket of a
// table has an infinite bound
type TaxBracket struct {
	UpperBound float64 `yaml:"upperBound"`
	Rate       float64 `yaml:"rate"`
}

type TaxBracketTable map[FilingStatus][]TaxBracket

func DefaultTaxBrackets() TaxBracketTable {
	return TaxBracketTable{
		FilingStatusSingle: {
			{UpperBound: 10_000, Rate: 0.10},
			{UpperBound: 30_000, Rate: 0.15},
			{UpperBound: 70_000, Rate: 0.20},
			{UpperBound: math.Inf(1), Rate: 0.25},
		},
		FilingStatusMarried: {
			{UpperBound: 20_000, Rate: 0.10},
			{UpperBound: 60_000, Rate: 0.15},
			{UpperBound: 140_000, Rate: 0.20},
			{UpperBound: math.Inf(1), Rate: 0.25},
		},
	}
}

// Validate checks every schedule is strictly increasing and ends in an
// unbounded bracket
func (t TaxBracketTable) Validate() error {
	for status, brackets := range t {
		if len(brackets) == 0 {
			return NewConfigurationError(ConfigInvalidBrackets, string(status), "no brackets")
		}
		prev := 0.0
		for i, b := range brackets {
			if math.IsNaN(b.UpperBound) || b.UpperBound <= prev {
				return NewConfigurationError(ConfigInvalidBrackets, string(status), "bracket %d bound %v is not above %v", i, b.UpperBound, prev)
			}
			if b.Rate < 0 || b.Rate > 1 || math.IsNaN(b.Rate) {
				return NewConfigurationError(ConfigInvalidBrackets, string(status), "bracket %d rate %v out of [0, 1]", i, b.Rate)
			}
			prev = b.UpperBound
		}
		if !math.IsInf(prev, 1) {
			return NewConfigurationError(ConfigInvalidBrackets, string(status), "top bracket must be unbounded")
		}
	}
	return nil
}

type TaxInput struct {
	Income     float64
	Deductions float64
	Credits    float64
	Status     FilingStatus
}

type BracketContribution struct {
	Bracket TaxBracket
	Amount  float64
	Tax     float64
}

type TaxResult struct {
	Input         TaxInput
	TaxableIncome float64
	GrossTax      float64
	TaxDue        float64
	Brackets      []BracketContribution
}

// EffectiveRate is tax due over total income, undefined with no income
func (r TaxResult) EffectiveRate() Percent {
	if r.Input.Income == 0 {
		return UndefinedPercent()
	}
	return Percent(r.TaxDue / r.Input.Income * 100)
}

type ChartPoint struct {
	Label string  `csv:"label" json:"label"`
	Value float64 `csv:"value" json:"value"`
}

type TaxBreakdown struct {
	Split   []ChartPoint `json:"split"`
	Summary []ChartPoint `json:"summary"`
}

func (r TaxResult) Breakdown() TaxBreakdown {
	return TaxBreakdown{
		Split: []ChartPoint{
			{Label: "Income After Tax", Value: r.Input.Income - r.TaxDue},
			{Label: "Tax Paid", Value: r.TaxDue},
		},
		Summary: []ChartPoint{
			{Label: "Total Income", Value: r.Input.Income},
			{Label: "Taxable Income", Value: r.TaxableIncome},
			{Label: "Tax Due", Value: r.TaxDue},
		},
	}
}
