package repository

import (
	"context"
	"fmt"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/logger"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type alpacaBarsClient interface {
	GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error)
}

type alpacaQuoteRepositoryHandler struct {
	MdClient alpacaBarsClient
	timeout  time.Duration
}

// NewAlpacaQuoteRepository resolves every ticker in a single multi-bar
// request, with split and dividend adjusted closes
func NewAlpacaQuoteRepository(apiKey, apiSecret, endpoint string, timeout time.Duration) QuoteRepository {
	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		BaseURL:   endpoint,
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &alpacaQuoteRepositoryHandler{
		MdClient: mdClient,
		timeout:  timeout,
	}
}

func (h alpacaQuoteRepositoryHandler) Fetch(ctx context.Context, symbols []domain.Ticker, start, end time.Time) domain.QuoteBatch {
	log := logger.FromContext(ctx)
	endSpan := domain.GetProfile(ctx).StartSpan("alpaca fetch")
	defer endSpan()

	results := make(map[domain.Ticker]domain.QuoteResult, len(symbols))
	if len(symbols) == 0 {
		return domain.NewQuoteBatch(results)
	}

	bars, err := callWithTimeout(ctx, h.timeout, func() (map[string][]marketdata.Bar, error) {
		return h.MdClient.GetMultiBars(domain.TickerStrings(symbols), marketdata.GetBarsRequest{
			TimeFrame:  marketdata.OneDay,
			Adjustment: marketdata.All,
			Start:      start,
			End:        end.AddDate(0, 0, 1),
		})
	})
	if err != nil {
		kind := domain.FetchErrorUpstreamFailure
		if isContextError(err) {
			kind = domain.FetchErrorTimeout
		}
		log.Warnf("failed to get bars for %v: %s", symbols, err.Error())
		for _, symbol := range symbols {
			results[symbol] = domain.QuoteResult{Err: domain.NewFetchError(symbol, kind, err)}
		}
		return domain.NewQuoteBatch(results)
	}

	for _, symbol := range symbols {
		results[symbol] = alpacaResult(symbol, bars[string(symbol)])
		if results[symbol].Err != nil {
			log.Warnf("failed to fetch prices for %s: %s", symbol, results[symbol].Err.Error())
		}
	}

	return domain.NewQuoteBatch(results)
}

func alpacaResult(symbol domain.Ticker, bars []marketdata.Bar) domain.QuoteResult {
	if len(bars) == 0 {
		return domain.QuoteResult{Err: domain.NewFetchError(symbol, domain.FetchErrorNoData, nil)}
	}
	points := make([]domain.PricePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, domain.PricePoint{
			Date:  bar.Timestamp.UTC(),
			Price: bar.Close,
		})
	}
	series, err := domain.NewPriceSeries(symbol, points)
	if err != nil {
		return domain.QuoteResult{Err: domain.NewFetchError(symbol, domain.FetchErrorUpstreamFailure, err)}
	}
	if series.Len() == 0 {
		return domain.QuoteResult{Err: domain.NewFetchError(
			symbol,
			domain.FetchErrorMissingField,
			fmt.Errorf("no positive close in %d bars", len(bars)),
		)}
	}
	return domain.QuoteResult{Series: series}
}
