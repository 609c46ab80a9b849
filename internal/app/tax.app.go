package app

import (
	"portfolioanalyzer/internal/calculator"
	"portfolioanalyzer/internal/domain"
)

type TaxHandler struct {
	Brackets domain.TaxBracketTable
}

type TaxReport struct {
	Result    *domain.TaxResult
	Breakdown domain.TaxBreakdown
}

func (h TaxHandler) Calculate(income, deductions, credits float64, status string) (*TaxReport, error) {
	filingStatus, err := domain.ParseFilingStatus(status)
	if err != nil {
		return nil, err
	}

	result, err := calculator.CalculateTax(domain.TaxInput{
		Income:     income,
		Deductions: deductions,
		Credits:    credits,
		Status:     filingStatus,
	}, h.Brackets)
	if err != nil {
		return nil, err
	}

	return &TaxReport{
		Result:    result,
		Breakdown: result.Breakdown(),
	}, nil
}
