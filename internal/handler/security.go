package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/nutallis/storefront/internal/domain/auth"
)

const apiKeyHeader = "X-API-Key"

type apiKeyCtxKey struct{}

// APIKeyFrom returns the authenticated key identity stored by RequireAPIKey,
// or nil when the request is unauthenticated.
func APIKeyFrom(ctx context.Context) *auth.APIKeyInfo {
	info, _ := ctx.Value(apiKeyCtxKey{}).(*auth.APIKeyInfo)
	return info
}

// RequireAPIKey authenticates admin requests via HMAC-SHA256 hashed API keys.
// The raw key from the X-API-Key header is hashed with the server pepper and
// looked up by hash; the HMAC makes the lookup itself timing-safe.
func RequireAPIKey(apikeys auth.Repository, pepper []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(apiKeyHeader)
			if key == "" {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "missing API key")
				return
			}

			mac := hmac.New(sha256.New, pepper)
			mac.Write([]byte(key))
			hash := mac.Sum(nil)

			info, err := apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyCtxKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
