package domain

import (
	"github.com/shopspring/decimal"
)

// Holding is an immutable input position
type Holding struct {
	Symbol        Ticker
	Shares        int64
	PurchasePrice decimal.Decimal
}

func (h Holding) Investment() decimal.Decimal {
	return h.PurchasePrice.Mul(decimal.NewFromInt(h.Shares))
}

type ValuationRow struct {
	Holding      Holding
	CurrentPrice decimal.Decimal
	Investment   decimal.Decimal
	CurrentValue decimal.Decimal
	ProfitLoss   decimal.Decimal
	ReturnPct    Percent
}

type ValuationTotal struct {
	Investment   decimal.Decimal
	CurrentValue decimal.Decimal
	ProfitLoss   decimal.Decimal
	ReturnPct    Percent
}

// Portfolio holds one row per holding that had a current price, in input
// order, plus the aggregate row
type Portfolio struct {
	Rows  []ValuationRow
	Total ValuationTotal
}

// ReturnPercent is pl / investment * 100, undefined on zero investment
func ReturnPercent(profitLoss, investment decimal.Decimal) Percent {
	if investment.IsZero() {
		return UndefinedPercent()
	}
	return Percent(profitLoss.Div(investment).Mul(decimal.NewFromInt(100)).InexactFloat64())
}

func (p Portfolio) Symbols() []Ticker {
	out := make([]Ticker, len(p.Rows))
	for i, row := range p.Rows {
		out[i] = row.Holding.Symbol
	}
	return out
}

// Allocation is each row's share of the total current value
func (p Portfolio) Allocation() map[Ticker]Percent {
	out := make(map[Ticker]Percent, len(p.Rows))
	for _, row := range p.Rows {
		if p.Total.CurrentValue.IsZero() {
			out[row.Holding.Symbol] = UndefinedPercent()
			continue
		}
		out[row.Holding.Symbol] = Percent(
			row.CurrentValue.Div(p.Total.CurrentValue).Mul(decimal.NewFromInt(100)).InexactFloat64(),
		)
	}
	return out
}
