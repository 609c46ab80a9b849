package api

import (
	"fmt"
	"portfolioanalyzer/internal/domain"

	"github.com/gin-gonic/gin"
)

type taxRequest struct {
	Income       float64 `json:"income"`
	Deductions   float64 `json:"deductions"`
	TaxCredits   float64 `json:"taxCredits"`
	FilingStatus string  `json:"filingStatus"`
}

type bracketJson struct {
	UpperBound *float64 `json:"upperBound"`
	Rate       float64  `json:"rate"`
	Amount     float64  `json:"amount"`
	Tax        float64  `json:"tax"`
}

type taxResponse struct {
	TaxableIncome float64             `json:"taxableIncome"`
	GrossTax      float64             `json:"grossTax"`
	TaxDue        float64             `json:"taxDue"`
	EffectiveRate domain.Percent      `json:"effectiveRate"`
	Brackets      []bracketJson       `json:"brackets"`
	Breakdown     domain.TaxBreakdown `json:"breakdown"`
}

func (m ApiHandler) tax(c *gin.Context) {
	var requestBody taxRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}

	report, err := m.TaxHandler.Calculate(
		requestBody.Income,
		requestBody.Deductions,
		requestBody.TaxCredits,
		requestBody.FilingStatus,
	)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	brackets := []bracketJson{}
	for _, b := range report.Result.Brackets {
		brackets = append(brackets, bracketJson{
			// null for the unbounded top bracket
			UpperBound: floatPtr(b.Bracket.UpperBound),
			Rate:       b.Bracket.Rate,
			Amount:     b.Amount,
			Tax:        b.Tax,
		})
	}

	c.JSON(200, taxResponse{
		TaxableIncome: report.Result.TaxableIncome,
		GrossTax:      report.Result.GrossTax,
		TaxDue:        report.Result.TaxDue,
		EffectiveRate: report.Result.EffectiveRate(),
		Brackets:      brackets,
		Breakdown:     report.Breakdown,
	})
}
