package repository

import (
	"context"
	"errors"
	"fmt"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/logger"
	"strings"
	"sync"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// QuoteRepository resolves daily adjusted close histories. every ticker
// resolves on its own; a failure on one never fails the others. symbols
// are expected to be normalized already
type QuoteRepository interface {
	Fetch(ctx context.Context, symbols []domain.Ticker, start, end time.Time) domain.QuoteBatch
}

type barFetcher func(symbol string, start, end time.Time) ([]finance.ChartBar, error)

type yahooQuoteRepositoryHandler struct {
	fetchBars   barFetcher
	timeout     time.Duration
	concurrency int
}

func NewYahooQuoteRepository(timeout time.Duration, concurrency int) QuoteRepository {
	return &yahooQuoteRepositoryHandler{
		fetchBars:   getChartBars,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

func getChartBars(symbol string, start, end time.Time) ([]finance.ChartBar, error) {
	// end is exclusive upstream
	end = end.AddDate(0, 0, 1)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	bars := []finance.ChartBar{}
	for iter.Next() {
		bars = append(bars, *iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

func (h yahooQuoteRepositoryHandler) Fetch(ctx context.Context, symbols []domain.Ticker, start, end time.Time) domain.QuoteBatch {
	log := logger.FromContext(ctx)
	endSpan := domain.GetProfile(ctx).StartSpan("yahoo fetch")
	defer endSpan()

	numGoroutines := h.concurrency
	if numGoroutines <= 0 || numGoroutines > len(symbols) {
		numGoroutines = len(symbols)
	}

	inputCh := make(chan domain.Ticker, len(symbols))
	for _, s := range symbols {
		inputCh <- s
	}
	close(inputCh)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[domain.Ticker]domain.QuoteResult, len(symbols))
	)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range inputCh {
				result := h.fetchOne(ctx, symbol, start, end)
				if result.Err != nil {
					log.Warnf("failed to fetch prices for %s: %s", symbol, result.Err.Error())
				}
				mu.Lock()
				results[symbol] = result
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return domain.NewQuoteBatch(results)
}

func (h yahooQuoteRepositoryHandler) fetchOne(ctx context.Context, symbol domain.Ticker, start, end time.Time) domain.QuoteResult {
	bars, err := callWithTimeout(ctx, h.timeout, func() ([]finance.ChartBar, error) {
		return h.fetchBars(string(symbol), start, end)
	})
	if err != nil {
		return domain.QuoteResult{Err: classifyFetchError(symbol, err)}
	}
	if len(bars) == 0 {
		return domain.QuoteResult{Err: domain.NewFetchError(symbol, domain.FetchErrorNoData, nil)}
	}

	points := make([]domain.PricePoint, 0, len(bars))
	for _, bar := range bars {
		if bar.AdjClose.IsZero() {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  time.Unix(int64(bar.Timestamp), 0).UTC(),
			Price: bar.AdjClose.InexactFloat64(),
		})
	}
	if len(points) == 0 {
		return domain.QuoteResult{Err: domain.NewFetchError(
			symbol,
			domain.FetchErrorMissingField,
			fmt.Errorf("no adjusted close in %d bars", len(bars)),
		)}
	}

	series, err := domain.NewPriceSeries(symbol, points)
	if err != nil {
		return domain.QuoteResult{Err: domain.NewFetchError(symbol, domain.FetchErrorUpstreamFailure, err)}
	}
	if series.Len() == 0 {
		return domain.QuoteResult{Err: domain.NewFetchError(symbol, domain.FetchErrorNoData, nil)}
	}
	return domain.QuoteResult{Series: series}
}

// callWithTimeout bounds a blocking upstream call. the upstream clients
// don't take a context, so on timeout the call is abandoned and its result
// dropped
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{value: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// isContextError reports whether the call was cut short rather than
// answered. a caller that gives up counts as a timeout, not as an upstream
// failure
func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func classifyFetchError(symbol domain.Ticker, err error) *domain.FetchError {
	if isContextError(err) {
		return domain.NewFetchError(symbol, domain.FetchErrorTimeout, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "no data found"),
		strings.Contains(msg, "delisted"),
		strings.Contains(msg, "invalid symbol"):
		return domain.NewFetchError(symbol, domain.FetchErrorInvalidSymbol, err)
	}
	return domain.NewFetchError(symbol, domain.FetchErrorUpstreamFailure, err)
}
