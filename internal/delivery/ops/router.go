// Package ops serves the operator listener: liveness and a manual market
// refresh, kept off the public API port.
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"cryptosim/internal/domain"
)

// Market is the view of the market data service the ops endpoints need
type Market interface {
	Snapshot() (*domain.Snapshot, error)
	Refresh(ctx context.Context) (*domain.Snapshot, error)
	ProviderName() string
}

// NewRouter builds the ops handler
func NewRouter(market Market, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", handleHealth(market))
	r.Post("/market/refresh", handleRefresh(market, logger))

	return r
}

func handleHealth(market Market) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":    "healthy",
			"service":   "cryptosim-ops",
			"provider":  market.ProviderName(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		status := http.StatusOK
		snap, err := market.Snapshot()
		if err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			body["quotes"] = snap.Len()
			body["snapshot_at"] = snap.FetchedAt().UTC().Format(time.RFC3339)
		}

		writeJSON(w, status, body)
	}
}

func handleRefresh(market Market, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Info("manual market refresh requested", zap.String("request_id", middleware.GetReqID(r.Context())))

		snap, err := market.Refresh(r.Context())
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"provider": market.ProviderName(),
			"quotes":   snap.Len(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
