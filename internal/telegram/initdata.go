package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
)

// webAppDataKey is the fixed HMAC key Telegram derives the bot secret from.
const webAppDataKey = "WebAppData"

// InitDataUser is the user block embedded in signed init data.
type InitDataUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// InitData is the verified payload the container hands to the mini app.
type InitData struct {
	QueryID  string
	User     *InitDataUser
	AuthDate time.Time
}

// VerifyInitData checks the init-data signature against the bot token and
// rejects payloads older than maxAge (when maxAge > 0). The verification
// recomputes HMAC-SHA256 over the sorted key=value lines, keyed with
// HMAC-SHA256("WebAppData", botToken), per the platform contract.
func VerifyInitData(raw, botToken string, maxAge time.Duration) (*InitData, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "init data is required")
	}
	if strings.TrimSpace(botToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bot token is not configured")
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed init data")
	}

	providedHash := values.Get("hash")
	if providedHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "init data hash missing")
	}

	if !hmac.Equal([]byte(computeHash(values, botToken)), []byte(providedHash)) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "init data signature mismatch")
	}

	data := &InitData{QueryID: values.Get("query_id")}

	if authDate := values.Get("auth_date"); authDate != "" {
		seconds, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed auth_date")
		}
		data.AuthDate = time.Unix(seconds, 0)
		if maxAge > 0 && time.Since(data.AuthDate) > maxAge {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "init data expired")
		}
	}

	if rawUser := values.Get("user"); rawUser != "" {
		var user InitDataUser
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed init data user")
		}
		data.User = &user
	}

	return data, nil
}

func computeHash(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s=%s", key, values.Get(key)))
	}
	checkString := strings.Join(lines, "\n")

	secretMac := hmac.New(sha256.New, []byte(webAppDataKey))
	secretMac.Write([]byte(botToken))
	secret := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(checkString))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignInitData produces a signed init-data payload. Dev/test helper for
// exercising the verification path without a real container.
func SignInitData(values url.Values, botToken string) string {
	values.Del("hash")
	values.Set("hash", computeHash(values, botToken))
	return values.Encode()
}
