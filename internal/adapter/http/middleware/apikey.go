package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/opsboard/opsboard/internal/adapter/http/response"
)

// APIKeyHeader carries the static key for the external ingestion endpoint.
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware authenticates machine callers against a configured
// allow-list of static keys. It replaces session auth on the ingestion
// route; no actor is placed in the context and the policy engine is never
// consulted downstream.
type APIKeyMiddleware struct {
	keys []string
}

func NewAPIKeyMiddleware(keys []string) *APIKeyMiddleware {
	return &APIKeyMiddleware{keys: keys}
}

func (m *APIKeyMiddleware) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			response.Unauthorized(w, "API key required")
			return
		}

		for _, allowed := range m.keys {
			if subtle.ConstantTimeCompare([]byte(key), []byte(allowed)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}

		response.Unauthorized(w, "Invalid API key")
	})
}
