package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/creatorscout/internal/logger"
)

// apiKeyHeader carries the key for clients that cannot set Authorization.
const apiKeyHeader = "X-API-Key"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keySet matches tokens in constant time.
type keySet [][]byte

func newKeySet(apiKeys []string) keySet {
	ks := make(keySet, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			ks = append(ks, []byte(k))
		}
	}
	return ks
}

func (ks keySet) contains(token string) bool {
	match := 0
	for _, k := range ks {
		match |= subtle.ConstantTimeCompare(k, []byte(token))
	}
	return match == 1
}

// BearerAuthMiddleware checks the API key sent as "Authorization: Bearer <key>"
// or in X-API-Key. Blank keys are ignored; with no keys left auth is off.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := newKeySet(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, problem := credentials(r)
			if problem == "" && !keys.contains(token) {
				problem = "invalid api key"
			}
			if problem != "" {
				logpkg.FromContext(r.Context()).Info("Request rejected",
					zap.String("reason", problem), zap.String("path", r.URL.Path))
				w.Header().Set("WWW-Authenticate", `Bearer realm="creatorscout"`)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, problem)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// credentials extracts the presented key, or describes what is wrong with
// the request.
func credentials(r *http.Request) (token, problem string) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, rest, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", "authorization header must use Bearer scheme"
		}
		if token = strings.TrimSpace(rest); token == "" {
			return "", "empty bearer token"
		}
		return token, ""
	}
	if token = strings.TrimSpace(r.Header.Get(apiKeyHeader)); token != "" {
		return token, ""
	}
	return "", "missing authorization header"
}
