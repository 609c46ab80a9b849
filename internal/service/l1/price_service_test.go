package l1_service

import (
	"context"
	"errors"
	"fmt"
	"portfolioanalyzer/internal/domain"
	mock_repository "portfolioanalyzer/internal/repository/mocks"
	"portfolioanalyzer/internal/util"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type countingQuoteRepository struct {
	calls   atomic.Int32
	release chan struct{}

	// number of leading calls in which every ticker times out
	timeouts int32

	// ctx.Err() seen by the adapter once it is released
	ctxErr atomic.Value
}

func (c *countingQuoteRepository) Fetch(ctx context.Context, symbols []domain.Ticker, start, end time.Time) domain.QuoteBatch {
	call := c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	c.ctxErr.Store(fmt.Sprint(ctx.Err()))
	results := map[domain.Ticker]domain.QuoteResult{}
	for _, s := range symbols {
		if call <= c.timeouts {
			results[s] = domain.QuoteResult{Err: domain.NewFetchError(s, domain.FetchErrorTimeout, context.DeadlineExceeded)}
			continue
		}
		if s == "ZZZZ" {
			results[s] = domain.QuoteResult{Err: domain.NewFetchError(s, domain.FetchErrorInvalidSymbol, nil)}
			continue
		}
		series, _ := domain.NewPriceSeries(s, []domain.PricePoint{
			{Date: start, Price: 100},
			{Date: end, Price: 110},
		})
		results[s] = domain.QuoteResult{Series: series}
	}
	return domain.NewQuoteBatch(results)
}

func Test_priceHistoryStoreHandler_Get(t *testing.T) {
	start := util.NewDate(2023, 1, 2)
	end := util.NewDate(2023, 1, 6)

	t.Run("identical requests fetch once", func(t *testing.T) {
		adapter := &countingQuoteRepository{}
		store := NewPriceHistoryStore(adapter)

		first := store.Get(context.Background(), []domain.Ticker{"MSFT", "AAPL", "ZZZZ"}, start, end)
		// same set in another order is the same key
		second := store.Get(context.Background(), []domain.Ticker{"ZZZZ", "AAPL", "MSFT"}, start, end)

		require.Equal(t, int32(1), adapter.calls.Load())
		require.Equal(t, "", cmp.Diff(first, second))
		require.Equal(t, 1, store.Len())
		require.Equal(t, domain.FetchErrorInvalidSymbol, second.Results["ZZZZ"].Err.Kind)
	})

	t.Run("different range is a different key", func(t *testing.T) {
		adapter := &countingQuoteRepository{}
		store := NewPriceHistoryStore(adapter)

		store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)
		store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end.AddDate(0, 0, 1))
		store.Get(context.Background(), []domain.Ticker{"AAPL", "MSFT"}, start, end)

		require.Equal(t, int32(3), adapter.calls.Load())
		require.Equal(t, 3, store.Len())
	})

	t.Run("concurrent callers share one fetch", func(t *testing.T) {
		adapter := &countingQuoteRepository{release: make(chan struct{})}
		store := NewPriceHistoryStore(adapter)

		var wg sync.WaitGroup
		results := make([]domain.QuoteBatch, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)
			}(i)
		}
		time.Sleep(10 * time.Millisecond)
		close(adapter.release)
		wg.Wait()

		require.Equal(t, int32(1), adapter.calls.Load())
		for _, r := range results {
			require.Equal(t, 2, r.Results["AAPL"].Series.Len())
		}
	})

	t.Run("returned batches don't alias the cache", func(t *testing.T) {
		store := NewPriceHistoryStore(&countingQuoteRepository{})

		first := store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)
		first.Results["AAPL"].Series.Points[0].Price = -1
		delete(first.Results, "AAPL")

		second := store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)
		require.Equal(t, 100.0, second.Results["AAPL"].Series.Points[0].Price)
	})
}

func Test_priceHistoryStoreHandler_Get_callerContext(t *testing.T) {
	start := util.NewDate(2023, 1, 2)
	end := util.NewDate(2023, 1, 6)

	t.Run("cancelled caller does not poison the key", func(t *testing.T) {
		adapter := &countingQuoteRepository{release: make(chan struct{})}
		store := NewPriceHistoryStore(adapter)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan domain.QuoteBatch)
		go func() {
			done <- store.Get(ctx, []domain.Ticker{"AAPL"}, start, end)
		}()
		time.Sleep(10 * time.Millisecond)
		cancel()

		abandoned := <-done
		require.Equal(t, domain.FetchErrorTimeout, abandoned.Results["AAPL"].Err.Kind)
		require.True(t, errors.Is(abandoned.Results["AAPL"].Err, context.Canceled))
		require.Equal(t, 0, store.Len())

		close(adapter.release)
		batch := store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)

		require.Nil(t, batch.Err)
		require.Nil(t, batch.Results["AAPL"].Err)
		require.Equal(t, 2, batch.Results["AAPL"].Series.Len())
		require.Equal(t, int32(1), adapter.calls.Load())
		require.Equal(t, "<nil>", adapter.ctxErr.Load())
		require.Equal(t, 1, store.Len())
	})

	t.Run("waiting caller gives up on its own deadline", func(t *testing.T) {
		adapter := &countingQuoteRepository{release: make(chan struct{})}
		defer close(adapter.release)
		store := NewPriceHistoryStore(adapter)

		go store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)
		time.Sleep(10 * time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		batch := store.Get(ctx, []domain.Ticker{"AAPL"}, start, end)

		require.NotNil(t, batch.Err)
		require.True(t, errors.Is(batch.Results["AAPL"].Err, context.DeadlineExceeded))
		require.Equal(t, int32(1), adapter.calls.Load())
	})

	t.Run("timeout is not memoized", func(t *testing.T) {
		adapter := &countingQuoteRepository{timeouts: 1}
		store := NewPriceHistoryStore(adapter)

		first := store.Get(context.Background(), []domain.Ticker{"AAPL", "MSFT"}, start, end)
		require.Equal(t, domain.FetchErrorTimeout, first.Results["AAPL"].Err.Kind)
		require.Equal(t, 0, store.Len())

		second := store.Get(context.Background(), []domain.Ticker{"AAPL", "MSFT"}, start, end)
		require.Nil(t, second.Err)
		require.Len(t, second.Series(), 2)
		require.Equal(t, int32(2), adapter.calls.Load())
		require.Equal(t, 1, store.Len())

		store.Get(context.Background(), []domain.Ticker{"AAPL", "MSFT"}, start, end)
		require.Equal(t, int32(2), adapter.calls.Load())
	})
}

func Test_priceHistoryStoreHandler_Reset(t *testing.T) {
	start := util.NewDate(2023, 1, 2)
	end := util.NewDate(2023, 1, 6)
	ctrl := gomock.NewController(t)
	quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)

	batch := domain.NewQuoteBatch(map[domain.Ticker]domain.QuoteResult{
		"AAPL": {Err: domain.NewFetchError("AAPL", domain.FetchErrorInvalidSymbol, nil)},
	})
	quoteRepository.EXPECT().
		Fetch(gomock.Any(), []domain.Ticker{"AAPL"}, start, end).
		Return(batch).
		Times(2)

	store := NewPriceHistoryStore(quoteRepository)
	store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)
	store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)
	require.Equal(t, 1, store.Len())

	store.Reset()
	require.Equal(t, 0, store.Len())

	out := store.Get(context.Background(), []domain.Ticker{"AAPL"}, start, end)
	require.Equal(t, domain.FetchErrorNoData, out.Err.Kind)
}
