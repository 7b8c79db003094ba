package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cryptosim/configs"
	httpdelivery "cryptosim/internal/delivery/http"
	"cryptosim/internal/delivery/ops"
	"cryptosim/internal/domain"
	"cryptosim/internal/infra"
	"cryptosim/internal/middleware"
	"cryptosim/internal/service"
	"cryptosim/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *configs.Config, logger *zap.Logger) error {
	ctx := context.Background()

	repo, release, err := infra.NewAccountRepository(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open account store: %w", err)
	}
	defer release()

	provider, err := infra.NewQuoteProvider(cfg.Market)
	if err != nil {
		return err
	}
	market := service.NewMarketDataService(provider, logger)

	creds, err := service.NewCredentialPolicy(cfg.Auth.PasswordStorage)
	if err != nil {
		return err
	}

	ledger := usecase.NewLedgerService(
		repo,
		market,
		creds,
		domain.TradeExecutor{PriceTolerance: cfg.Trading.PriceTolerance},
		cfg.Auth.AdminUsernames,
		logger,
	)

	scheduler := infra.NewScheduler(market, cfg.Market.RefreshCron, logger)
	if err := scheduler.RunNow(ctx); err != nil {
		logger.Warn("initial market refresh failed; trading waits for the next refresh", zap.Error(err))
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	jwt := middleware.NewJWTManager(cfg.Auth.JWTSecret)

	e := echo.New()
	e.HideBanner = true
	httpdelivery.SetupRoutes(e, &httpdelivery.RouterConfig{
		AuthHandler:    httpdelivery.NewAuthHandler(ledger, jwt),
		AccountHandler: httpdelivery.NewAccountHandler(ledger),
		MarketHandler:  httpdelivery.NewMarketHandler(ledger),
		AdminHandler:   httpdelivery.NewAdminHandler(ledger, market),
		JWT:            jwt,
		Market:         market,
	})

	apiSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	opsSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.OpsPort),
		Handler:      ops.NewRouter(market, logger.Named("ops")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 2)
	for _, srv := range []*http.Server{apiSrv, opsSrv} {
		go func(srv *http.Server) {
			logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	logger.Info("cryptosim started",
		zap.String("env", cfg.Server.Env),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("provider", provider.Name()),
		zap.String("refresh", cfg.Market.RefreshCron),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
		logger.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, srv := range []*http.Server{apiSrv, opsSrv} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("forced shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}

	logger.Info("server exited")
	return runErr
}
