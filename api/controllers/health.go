package controllers

import (
	"context"
	"net/http"

	"github.com/rajivmenon/tailorbooks-backend/api/responses"
	"github.com/rajivmenon/tailorbooks-backend/pkg/config"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TailorBooks-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency. Nil pingers are skipped so the
// API can run without optional infrastructure in dev.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TailorBooks-Env", cfg.App.Env)

		statuses := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "skipped"
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				statuses[name] = "down"
				healthy = false
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "health.dependency_down", err)
				}
				continue
			}
			statuses[name] = "ok"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
	}
}

// ReadyDeps assembles the dependency map for HealthReady without forcing
// callers to name the unexported pinger type.
func ReadyDeps(db, cache, broker pinger) map[string]pinger {
	return map[string]pinger{
		"db":     db,
		"redis":  cache,
		"pubsub": broker,
	}
}
