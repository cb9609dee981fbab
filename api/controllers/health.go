package controllers

import (
	"net/http"

	"github.com/angelmondragon/miniapp-storefront/api/responses"
	"github.com/angelmondragon/miniapp-storefront/pkg/config"
	"github.com/angelmondragon/miniapp-storefront/pkg/db"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MiniShop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MiniShop-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
