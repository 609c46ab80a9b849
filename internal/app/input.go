package app

import (
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/util"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioInput is the raw form input: comma separated lists lined up by
// position, plus YYYY-MM-DD dates
type PortfolioInput struct {
	Tickers        string
	Shares         string
	PurchasePrices string
	Start          string
	End            string
}

type PortfolioRequest struct {
	Holdings []domain.Holding
	Start    time.Time
	End      time.Time
}

func (r PortfolioRequest) Symbols() []domain.Ticker {
	out := make([]domain.Ticker, len(r.Holdings))
	for i, h := range r.Holdings {
		out[i] = h.Symbol
	}
	return out
}

// splitList keeps every position, blank ones included, so a missing entry
// shows up as a blank or a length mismatch instead of shifting the rest
func splitList(in string) []string {
	if strings.TrimSpace(in) == "" {
		return []string{}
	}
	parts := strings.Split(in, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParsePortfolioInput validates the raw lists before anything is fetched.
// today is used when End is empty
func ParsePortfolioInput(in PortfolioInput, today time.Time) (*PortfolioRequest, error) {
	tickers := splitList(in.Tickers)
	shareStrs := splitList(in.Shares)
	priceStrs := splitList(in.PurchasePrices)
	if err := validateShape(tickers, len(shareStrs), len(priceStrs)); err != nil {
		return nil, err
	}

	shares := make([]int64, len(shareStrs))
	for i, s := range shareStrs {
		if s == "" {
			return nil, domain.NewConfigurationError(domain.ConfigInvalidAmount, "shares", "share count %d is blank", i+1)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, domain.NewConfigurationError(domain.ConfigInvalidAmount, "shares", "%q is not a whole number", s)
		}
		shares[i] = n
	}

	prices := make([]decimal.Decimal, len(priceStrs))
	for i, s := range priceStrs {
		if s == "" {
			return nil, domain.NewConfigurationError(domain.ConfigInvalidAmount, "purchase prices", "purchase price %d is blank", i+1)
		}
		p, err := decimal.NewFromString(s)
		if err != nil {
			return nil, domain.NewConfigurationError(domain.ConfigInvalidAmount, "purchase prices", "%q is not a number", s)
		}
		prices[i] = p
	}

	start, err := util.ParseDate(in.Start)
	if err != nil {
		return nil, domain.NewConfigurationError(domain.ConfigInvalidDateRange, "start", "%s", err.Error())
	}
	end, err := util.ParseDate(in.End)
	if err != nil {
		return nil, domain.NewConfigurationError(domain.ConfigInvalidDateRange, "end", "%s", err.Error())
	}

	return NewPortfolioRequest(tickers, shares, prices, start, end, today)
}

// NewPortfolioRequest lines up tickers, shares and purchase prices by
// position. lists of different lengths are rejected. a ticker listed more
// than once becomes one holding with the shares summed and the purchase
// price averaged by shares, so the total investment is unchanged
func NewPortfolioRequest(tickers []string, shares []int64, prices []decimal.Decimal, start, end, today time.Time) (*PortfolioRequest, error) {
	if err := validateShape(tickers, len(shares), len(prices)); err != nil {
		return nil, err
	}

	if end.IsZero() {
		end = today
	}
	start = domain.DateOf(start)
	end = domain.DateOf(end)
	if start.IsZero() || start.After(end) {
		return nil, domain.NewConfigurationError(
			domain.ConfigInvalidDateRange,
			"date range",
			"start %s must be on or before end %s",
			start.Format(time.DateOnly),
			end.Format(time.DateOnly),
		)
	}

	holdings := []domain.Holding{}
	index := map[domain.Ticker]int{}
	for i, raw := range tickers {
		symbol := domain.NormalizeTicker(raw)
		if symbol == "" {
			return nil, domain.NewConfigurationError(domain.ConfigEmptyTickers, "tickers", "ticker %d is blank", i+1)
		}
		if shares[i] <= 0 {
			return nil, domain.NewConfigurationError(domain.ConfigInvalidAmount, "shares", "%s has %d shares, must be positive", symbol, shares[i])
		}
		if !prices[i].IsPositive() {
			return nil, domain.NewConfigurationError(domain.ConfigInvalidAmount, "purchase prices", "%s bought at %s, must be positive", symbol, prices[i].String())
		}

		h := domain.Holding{
			Symbol:        symbol,
			Shares:        shares[i],
			PurchasePrice: prices[i],
		}
		if j, ok := index[symbol]; ok {
			holdings[j] = mergeHoldings(holdings[j], h)
			continue
		}
		index[symbol] = len(holdings)
		holdings = append(holdings, h)
	}

	return &PortfolioRequest{
		Holdings: holdings,
		Start:    start,
		End:      end,
	}, nil
}

// validateShape checks the lists line up position by position
func validateShape(tickers []string, numShares, numPrices int) error {
	if len(tickers) == 0 || allBlank(tickers) {
		return domain.NewConfigurationError(domain.ConfigEmptyTickers, "tickers", "at least one ticker is required")
	}
	if numShares != len(tickers) {
		return domain.NewConfigurationError(domain.ConfigLengthMismatch, "shares", "got %d share counts for %d tickers", numShares, len(tickers))
	}
	if numPrices != len(tickers) {
		return domain.NewConfigurationError(domain.ConfigLengthMismatch, "purchase prices", "got %d purchase prices for %d tickers", numPrices, len(tickers))
	}
	return nil
}

func allBlank(in []string) bool {
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

func mergeHoldings(a, b domain.Holding) domain.Holding {
	shares := a.Shares + b.Shares
	investment := a.Investment().Add(b.Investment())
	return domain.Holding{
		Symbol:        a.Symbol,
		Shares:        shares,
		PurchasePrice: investment.Div(decimal.NewFromInt(shares)),
	}
}
