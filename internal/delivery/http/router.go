package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "cryptosim/internal/middleware"
	"cryptosim/internal/usecase"
)

// SnapshotStatus reports market data readiness for the health check
type SnapshotStatus interface {
	usecase.SnapshotSource
	ProviderName() string
}

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler    *AuthHandler
	AccountHandler *AccountHandler
	MarketHandler  *MarketHandler
	AdminHandler   *AdminHandler
	JWT            *custommiddleware.JWTManager
	Market         SnapshotStatus
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Validator = NewRequestValidator()

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	e.GET("/health", func(c echo.Context) error {
		status := map[string]interface{}{
			"status":   "healthy",
			"service":  "cryptosim-api",
			"provider": config.Market.ProviderName(),
		}
		if snap, err := config.Market.Snapshot(); err == nil {
			status["quotes"] = snap.Len()
			status["snapshot_at"] = snap.FetchedAt().Format(time.RFC3339)
		} else {
			status["status"] = "degraded"
		}
		return SuccessResponse(c, status)
	})

	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", config.AuthHandler.Register)
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
	}

	protected := api.Group("", config.JWT.AuthMiddleware)

	account := protected.Group("/account")
	{
		account.GET("", config.AccountHandler.GetAccount)
		account.POST("/deposit", config.AccountHandler.Deposit)
		account.POST("/withdraw", config.AccountHandler.Withdraw)
		account.POST("/trade", config.AccountHandler.Trade)
	}

	protected.GET("/market", config.MarketHandler.ListMarket)
	protected.GET("/market/:symbol", config.MarketHandler.GetQuote)
	protected.GET("/leaderboard", config.MarketHandler.GetLeaderboard)

	admin := protected.Group("/admin", custommiddleware.AdminMiddleware)
	{
		admin.GET("/accounts", config.AdminHandler.ListAccounts)
		admin.POST("/reset", config.AdminHandler.ResetAll)
		admin.POST("/market/refresh", config.AdminHandler.RefreshMarket)
	}
}
