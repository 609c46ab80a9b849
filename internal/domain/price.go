package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type PricePoint struct {
	Date  time.Time
	Price float64
}

// PriceSeries is a per-ticker adjusted close history, ascending by date.
// use NewPriceSeries to build one so the ordering invariants hold
type PriceSeries struct {
	Symbol Ticker
	Points []PricePoint
}

// DateOf drops the time of day so points from different sources line up
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// NewPriceSeries sorts the points and drops invalid prices. two points on
// the same date are a data integrity error, not something to pick from
func NewPriceSeries(symbol Ticker, points []PricePoint) (*PriceSeries, error) {
	cleaned := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if !validPrice(p.Price) {
			continue
		}
		cleaned = append(cleaned, PricePoint{
			Date:  DateOf(p.Date),
			Price: p.Price,
		})
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Date.Before(cleaned[j].Date)
	})
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i].Date.Equal(cleaned[i-1].Date) {
			return nil, fmt.Errorf("%s on %s: %w", symbol, cleaned[i].Date.Format(time.DateOnly), ErrDuplicateDate)
		}
	}

	return &PriceSeries{
		Symbol: symbol,
		Points: cleaned,
	}, nil
}

func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Latest returns the most recent point in the series
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

func (s PriceSeries) Copy() PriceSeries {
	points := make([]PricePoint, len(s.Points))
	copy(points, s.Points)
	return PriceSeries{
		Symbol: s.Symbol,
		Points: points,
	}
}

// PriceMatrix lines up several series on the union of their dates. a
// ticker with no point on a date has NaN in that row
type PriceMatrix struct {
	Dates   []time.Time
	Symbols []Ticker
	Columns map[Ticker][]float64
}

func NewPriceMatrix(series map[Ticker]PriceSeries) PriceMatrix {
	dateSet := map[time.Time]bool{}
	symbols := []Ticker{}
	for symbol, s := range series {
		symbols = append(symbols, symbol)
		for _, p := range s.Points {
			dateSet[p.Date] = true
		}
	}
	symbols = SortedTickers(symbols)

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	rowIndex := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rowIndex[d] = i
	}

	columns := make(map[Ticker][]float64, len(symbols))
	for _, symbol := range symbols {
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		for _, p := range series[symbol].Points {
			col[rowIndex[p.Date]] = p.Price
		}
		columns[symbol] = col
	}

	return PriceMatrix{
		Dates:   dates,
		Symbols: symbols,
		Columns: columns,
	}
}

func (m PriceMatrix) Len() int {
	return len(m.Dates)
}

// Aligned returns a new matrix keeping only the dates on which every
// ticker has a price
func (m PriceMatrix) Aligned() PriceMatrix {
	keep := []int{}
	for i := range m.Dates {
		complete := true
		for _, symbol := range m.Symbols {
			if math.IsNaN(m.Columns[symbol][i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	dates := make([]time.Time, len(keep))
	for j, i := range keep {
		dates[j] = m.Dates[i]
	}
	columns := make(map[Ticker][]float64, len(m.Symbols))
	for _, symbol := range m.Symbols {
		col := make([]float64, len(keep))
		for j, i := range keep {
			col[j] = m.Columns[symbol][i]
		}
		columns[symbol] = col
	}
	symbols := make([]Ticker, len(m.Symbols))
	copy(symbols, m.Symbols)

	return PriceMatrix{
		Dates:   dates,
		Symbols: symbols,
		Columns: columns,
	}
}
