package controllers

import (
	"net/http"
	"strconv"

	"github.com/angelmondragon/miniapp-storefront/api/responses"
	"github.com/angelmondragon/miniapp-storefront/internal/telegram"
	"github.com/angelmondragon/miniapp-storefront/pkg/config"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

const initDataHeader = "X-Telegram-Init-Data"

type telegramUserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// ResolveTelegramUser verifies the signed init data and returns the embedded
// profile. A valid payload without a user block resolves to null.
func ResolveTelegramUser(cfg config.TelegramConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := telegram.VerifyInitData(r.Header.Get(initDataHeader), cfg.BotToken, cfg.InitDataTTL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if data.User == nil {
			responses.WriteSuccess(w, nil)
			return
		}

		responses.WriteSuccess(w, telegramUserResponse{
			ID:        strconv.FormatInt(data.User.ID, 10),
			Username:  data.User.Username,
			FirstName: data.User.FirstName,
		})
	}
}
