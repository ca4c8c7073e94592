package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	for _, keys := range [][]string{nil, {"", "  "}} {
		handler := BearerAuthMiddleware(keys)(okHandler())

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/search", http.NoBody))

		if rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"key-one", "key-two"})(okHandler())

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    int
		message string
	}{
		{"missing header", "/v1/search", nil, http.StatusUnauthorized, "missing authorization header"},
		{"basic scheme", "/v1/search", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"},
			http.StatusUnauthorized, "authorization header must use Bearer scheme"},
		{"empty bearer", "/v1/search", map[string]string{"Authorization": "Bearer  "},
			http.StatusUnauthorized, "empty bearer token"},
		{"wrong key", "/v1/search", map[string]string{"Authorization": "Bearer nope"},
			http.StatusUnauthorized, "invalid api key"},
		{"prefix of a key", "/v1/search", map[string]string{"Authorization": "Bearer key-"},
			http.StatusUnauthorized, "invalid api key"},
		{"first key", "/v1/search", map[string]string{"Authorization": "Bearer key-one"}, http.StatusOK, ""},
		{"second key", "/v1/usage", map[string]string{"Authorization": "Bearer key-two"}, http.StatusOK, ""},
		{"lowercase scheme", "/v1/usage", map[string]string{"Authorization": "bearer key-two"}, http.StatusOK, ""},
		{"api key header", "/v1/usage", map[string]string{"X-API-Key": "key-one"}, http.StatusOK, ""},
		{"health exempt", "/health", nil, http.StatusOK, ""},
		{"metrics exempt", "/metrics", nil, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
			var errResp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != codeUnauthorized || errResp.Message != tt.message {
				t.Errorf("error = %+v, want %s %q", errResp, codeUnauthorized, tt.message)
			}
		})
	}
}
