package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
	"github.com/shandysiswandi/otpbite/internal/pkg/kvstore"
	"github.com/shandysiswandi/otpbite/internal/pkg/router"
)

const healthPingTimeout = 2 * time.Second

type healthResponse struct {
	Status string `json:"status" example:"ok"`
}

// healthHandler reports whether the key-value store answers a ping.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} router.errorResponse "KV store unreachable"
// @Router /health [get]
func healthHandler(store kvstore.Store) router.Handler {
	return func(r *router.Request) (any, error) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "health check failed", "error", err)
			return nil, goerror.NewUnavailable(err, "Service unavailable")
		}

		return healthResponse{Status: "ok"}, nil
	}
}
