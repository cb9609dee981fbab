package controllers

import (
	"net/http"

	"github.com/angelmondragon/miniapp-storefront/api/responses"
	"github.com/angelmondragon/miniapp-storefront/api/validators"
	"github.com/angelmondragon/miniapp-storefront/internal/shop"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

// ListCategories returns the catalog filter chips.
func ListCategories(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, categories)
	}
}

// ListProducts returns the product grid, optionally filtered by category.
func ListProducts(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		limit, err := validators.ParseQueryLimit(r, "limit", 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListProducts(r.Context(), r.URL.Query().Get("category_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if limit > 0 && len(products) > limit {
			products = products[:limit]
		}

		responses.WriteSuccess(w, products)
	}
}
