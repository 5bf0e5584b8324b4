package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/response"
)

// TimeTokenTTL is how long a time token stays valid after it was issued.
const TimeTokenTTL = 5 * time.Minute

// RequireAPIKey guards a handler with a fixed key, normally the
// INTERNAL_API_KEY loaded by config.Load.
//
// Every request must carry the key in X-API-Key and a fernet token in
// X-Time-Token, produced by GenerateTimeToken with the same key and no
// older than TimeTokenTTL.
func RequireAPIKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			checkAPIKey(w, r, next, apiKey)
		})
	}
}

func checkAPIKey(w http.ResponseWriter, r *http.Request, next http.Handler, apiKey string) {
	if apiKey == "" {
		log.Error().Msg("API key middleware installed without a key")
		response.RespondError(w, http.StatusInternalServerError, "internal server error", "Authentication not loaded")
		return
	}

	provided := r.Header.Get("X-API-Key")
	if provided == "" {
		response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
		return
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
		response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
		return
	}

	token := r.Header.Get("X-Time-Token")
	if token == "" {
		response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
		return
	}
	if fernet.VerifyAndDecrypt([]byte(token), TimeTokenTTL, []*fernet.Key{tokenKey(apiKey)}) == nil {
		response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
		return
	}

	next.ServeHTTP(w, r)
}

// GenerateTimeToken issues a time token for apiKey. The token embeds the
// issue time, which fernet checks against TimeTokenTTL on verification.
func GenerateTimeToken(apiKey string) string {
	tok, err := fernet.EncryptAndSign([]byte(strconv.FormatInt(time.Now().Unix(), 10)), tokenKey(apiKey))
	if err != nil {
		log.Error().Err(err).Msg("failed to generate time token")
		return ""
	}
	return string(tok)
}

// tokenKey derives the fernet key from the API key.
func tokenKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}
