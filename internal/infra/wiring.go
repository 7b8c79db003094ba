package infra

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cryptosim/configs"
	"cryptosim/internal/adapter"
	"cryptosim/internal/database"
	"cryptosim/internal/domain"
	"cryptosim/internal/repository"
)

// NewQuoteProvider builds the quote feed selected by MARKET_PROVIDER
func NewQuoteProvider(cfg configs.MarketConfig) (domain.QuoteProvider, error) {
	assets := adapter.ParseAssets(cfg.Assets)

	switch cfg.Provider {
	case "coindesk":
		return adapter.NewCoinDeskClient(cfg.CoinDeskBaseURL, assets), nil
	case "binance":
		return adapter.NewBinanceQuoteProvider(cfg.BinanceAPIKey, cfg.BinanceSecretKey, assets), nil
	case "static":
		return adapter.NewStaticQuoteProvider(cfg.QuotesFile), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Provider)
	}
}

// NewAccountRepository opens the account store selected by STORAGE_DRIVER.
// The returned func releases it.
func NewAccountRepository(ctx context.Context, cfg configs.StorageConfig, logger *zap.Logger) (domain.AccountRepository, func(), error) {
	switch cfg.Driver {
	case "file":
		repo, err := repository.NewFileAccountRepository(cfg.DataDir, logger.Named("store"))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file account store", zap.String("dir", cfg.DataDir))
		return repo, func() {}, nil

	case "postgres":
		pool, err := NewDatabase(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgresAccountRepository(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
