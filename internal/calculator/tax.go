package calculator

import (
	"math"
	"portfolioanalyzer/internal/domain"
)

// CalculateTax applies the filing status' marginal schedule to taxable
// income, then subtracts credits. credits never make tax due negative and
// any excess is discarded
func CalculateTax(in domain.TaxInput, table domain.TaxBracketTable) (*domain.TaxResult, error) {
	if err := validateTaxInput(in); err != nil {
		return nil, err
	}
	brackets, ok := table[in.Status]
	if !ok {
		return nil, domain.NewConfigurationError(domain.ConfigUnknownFilingStatus, "filing status", "no bracket table for %q", in.Status)
	}

	taxableIncome := math.Max(0, in.Income-in.Deductions)

	grossTax := 0.0
	contributions := []domain.BracketContribution{}
	prevLimit := 0.0
	for _, b := range brackets {
		if taxableIncome <= prevLimit {
			break
		}
		amount := math.Min(taxableIncome, b.UpperBound) - prevLimit
		tax := amount * b.Rate
		grossTax += tax
		contributions = append(contributions, domain.BracketContribution{
			Bracket: b,
			Amount:  amount,
			Tax:     tax,
		})
		prevLimit = b.UpperBound
	}

	return &domain.TaxResult{
		Input:         in,
		TaxableIncome: taxableIncome,
		GrossTax:      grossTax,
		TaxDue:        math.Max(0, grossTax-in.Credits),
		Brackets:      contributions,
	}, nil
}

func validateTaxInput(in domain.TaxInput) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"income", in.Income},
		{"deductions", in.Deductions},
		{"tax credits", in.Credits},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return domain.NewConfigurationError(domain.ConfigInvalidAmount, f.name, "must be a non-negative amount, got %v", f.value)
		}
	}
	return nil
}
