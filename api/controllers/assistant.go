package controllers

import (
	"net/http"

	"github.com/angelmondragon/miniapp-storefront/api/responses"
	"github.com/angelmondragon/miniapp-storefront/api/validators"
	"github.com/angelmondragon/miniapp-storefront/internal/shop"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

type assistantRequest struct {
	Message string `json:"message" validate:"required"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

// AssistantReply answers a shopper's question.
func AssistantReply(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		var payload assistantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := svc.Reply(r.Context(), validators.SanitizeString(payload.Message, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assistantResponse{Reply: reply})
	}
}
