package domain

// QuoteResult is what a single ticker resolved to. exactly one of Series
// and Err is set
type QuoteResult struct {
	Series *PriceSeries
	Err    *FetchError
}

// QuoteBatch is the per-ticker outcome of one fetch. Err is only set for
// batch level failures, i.e. when nothing resolved
type QuoteBatch struct {
	Results map[Ticker]QuoteResult
	Err     *FetchError
}

func NewQuoteBatch(results map[Ticker]QuoteResult) QuoteBatch {
	batch := QuoteBatch{
		Results: results,
	}
	if len(batch.Series()) == 0 {
		batch.Err = NewFetchError("", FetchErrorNoData, nil)
	}
	return batch
}

// Series returns every ticker that resolved to a non-empty series
func (b QuoteBatch) Series() map[Ticker]PriceSeries {
	out := map[Ticker]PriceSeries{}
	for symbol, result := range b.Results {
		if result.Err == nil && result.Series != nil && result.Series.Len() > 0 {
			out[symbol] = *result.Series
		}
	}
	return out
}

// Errors lists per-ticker failures sorted by ticker
func (b QuoteBatch) Errors() []*FetchError {
	symbols := []Ticker{}
	for symbol, result := range b.Results {
		if result.Err != nil {
			symbols = append(symbols, symbol)
		}
	}
	out := []*FetchError{}
	for _, symbol := range SortedTickers(symbols) {
		out = append(out, b.Results[symbol].Err)
	}
	return out
}

// Copy deep copies the batch so cached results can be handed out safely
func (b QuoteBatch) Copy() QuoteBatch {
	results := make(map[Ticker]QuoteResult, len(b.Results))
	for symbol, result := range b.Results {
		out := QuoteResult{}
		if result.Series != nil {
			s := result.Series.Copy()
			out.Series = &s
		}
		if result.Err != nil {
			e := *result.Err
			out.Err = &e
		}
		results[symbol] = out
	}
	var batchErr *FetchError
	if b.Err != nil {
		e := *b.Err
		batchErr = &e
	}
	return QuoteBatch{
		Results: results,
		Err:     batchErr,
	}
}
