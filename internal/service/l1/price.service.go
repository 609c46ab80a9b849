package l1_service

import (
	"context"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/logger"
	"portfolioanalyzer/internal/repository"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

/**

behavior - price history is fetched at most once per (tickers, start, end)
for the lifetime of the store. there is no expiry; Reset drops everything.

concurrent Gets on the same key share a single upstream fetch. the shared
fetch runs detached from any one caller's context, bounded only by the
adapter's per-fetch timeout, and each caller stops waiting when its own
context is done.

a batch in which any ticker timed out is handed back but never stored, so
the next Get for that key fetches again. every other outcome, including
invalid symbols and missing data, is memoized

*/

type PriceHistoryStore interface {
	Get(ctx context.Context, tickers []domain.Ticker, start, end time.Time) domain.QuoteBatch
	Reset()
	Len() int
}

type priceHistoryStoreHandler struct {
	QuoteRepository repository.QuoteRepository

	mu         sync.Mutex
	cache      map[string]domain.QuoteBatch
	generation uint64
	group      singleflight.Group
}

// NewPriceHistoryStore is meant to be created once per session and passed
// around, not kept as a package global
func NewPriceHistoryStore(quoteRepository repository.QuoteRepository) PriceHistoryStore {
	return &priceHistoryStoreHandler{
		QuoteRepository: quoteRepository,
		cache:           map[string]domain.QuoteBatch{},
	}
}

func cacheKey(tickers []domain.Ticker, start, end time.Time) string {
	symbols := domain.TickerStrings(domain.SortedTickers(tickers))
	return strings.Join(symbols, ",") + "|" + start.Format(time.DateOnly) + "|" + end.Format(time.DateOnly)
}

func (h *priceHistoryStoreHandler) lookup(key string) (domain.QuoteBatch, uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	batch, ok := h.cache[key]
	return batch, h.generation, ok
}

// Get returns a copy of the cached batch, fetching it on first use
func (h *priceHistoryStoreHandler) Get(ctx context.Context, tickers []domain.Ticker, start, end time.Time) domain.QuoteBatch {
	log := logger.FromContext(ctx)
	key := cacheKey(tickers, start, end)

	if batch, _, ok := h.lookup(key); ok {
		log.Debugf("price history cache hit %s", key)
		return batch.Copy()
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := h.group.DoChan(key, func() (interface{}, error) {
		// a fetch for this key may have finished between the lookup above
		// and joining the group
		batch, generation, ok := h.lookup(key)
		if ok {
			return batch, nil
		}

		batch = h.QuoteRepository.Fetch(fetchCtx, domain.SortedTickers(tickers), start, end)

		if hasTimeout(batch) {
			log.Warnf("not caching price history for %s: fetch timed out", key)
			return batch, nil
		}
		h.mu.Lock()
		if h.generation == generation {
			h.cache[key] = batch
		}
		h.mu.Unlock()
		return batch, nil
	})

	select {
	case res := <-ch:
		return res.Val.(domain.QuoteBatch).Copy()
	case <-ctx.Done():
		log.Warnf("stopped waiting for price history %s: %s", key, ctx.Err().Error())
		return abandonedBatch(tickers, ctx.Err())
	}
}

func hasTimeout(batch domain.QuoteBatch) bool {
	for _, result := range batch.Results {
		if result.Err != nil && result.Err.Kind == domain.FetchErrorTimeout {
			return true
		}
	}
	return false
}

// abandonedBatch is what a caller gets back when it stops waiting on a
// fetch. it is never stored
func abandonedBatch(tickers []domain.Ticker, err error) domain.QuoteBatch {
	results := map[domain.Ticker]domain.QuoteResult{}
	for _, symbol := range domain.SortedTickers(tickers) {
		results[symbol] = domain.QuoteResult{Err: domain.NewFetchError(symbol, domain.FetchErrorTimeout, err)}
	}
	return domain.NewQuoteBatch(results)
}

func (h *priceHistoryStoreHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache = map[string]domain.QuoteBatch{}
	h.generation++
}

func (h *priceHistoryStoreHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.cache)
}
