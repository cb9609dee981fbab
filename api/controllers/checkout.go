package controllers

import (
	"net/http"

	"github.com/angelmondragon/miniapp-storefront/api/responses"
	"github.com/angelmondragon/miniapp-storefront/api/validators"
	"github.com/angelmondragon/miniapp-storefront/internal/shop"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

type checkoutRequest struct {
	Items  []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	UserID string                `json:"user_id,omitempty"`
}

type checkoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name,omitempty"`
	UnitPrice string `json:"unit_price,omitempty"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateCheckout prices the cart server-side, records the order and returns
// the payment session URL. Client-supplied names and prices are ignored.
func CreateCheckout(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := shop.CheckoutInput{UserID: payload.UserID}
		for _, item := range payload.Items {
			input.Items = append(input.Items, shop.CheckoutItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		result, err := svc.CreateCheckout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
