package cmd

import (
	"fmt"
	"portfolioanalyzer/api"
	"portfolioanalyzer/internal/app"
	"portfolioanalyzer/internal/logger"
	"portfolioanalyzer/internal/repository"
	l1_service "portfolioanalyzer/internal/service/l1"
	"portfolioanalyzer/internal/util"
)

func NewQuoteRepository(cfg util.Config) repository.QuoteRepository {
	if cfg.Provider == util.ProviderAlpaca {
		return repository.NewAlpacaQuoteRepository(
			cfg.Alpaca.ApiKey,
			cfg.Alpaca.ApiSecret,
			cfg.Alpaca.Endpoint,
			cfg.FetchTimeout,
		)
	}
	return repository.NewYahooQuoteRepository(cfg.FetchTimeout, cfg.Concurrency)
}

// InitializeDependencies wires one session: a single price history store
// shared by everything built from the returned handler
func InitializeDependencies() (*api.ApiHandler, error) {
	cfg, err := util.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	quoteRepository := NewQuoteRepository(*cfg)
	priceHistoryStore := l1_service.NewPriceHistoryStore(quoteRepository)

	return &api.ApiHandler{
		PortfolioHandler: app.PortfolioHandler{
			PriceHistoryStore: priceHistoryStore,
		},
		TaxHandler: app.TaxHandler{
			Brackets: cfg.TaxBrackets,
		},
		Logger: logger.New(),
	}, nil
}
