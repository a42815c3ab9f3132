package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/otpbite/internal/pkg/config"
)

const (
	healthPath        = "/health"
	maintenanceRetry  = "120"
	maintenanceReason = "service is under maintenance"
)

// middlewareMaintenance rejects routes listed in app.maintenance.endpoints, or
// every route but /health while app.maintenance.all is set. Both keys are read
// per request so a reloaded config file applies immediately.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if underMaintenance(cfg, matchedRoutePath(r)) {
				w.Header().Set("Retry-After", maintenanceRetry)
				writeError(w, maintenanceReason, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(cfg config.Config, route string) bool {
	if route == healthPath {
		return false
	}
	if cfg.GetBool("app.maintenance.all") {
		return true
	}
	return slices.Contains(cfg.GetArray("app.maintenance.endpoints"), route)
}
