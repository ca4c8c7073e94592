package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func chain(logger *zap.Logger, h http.Handler) http.Handler {
	return chiMiddleware.RequestID(wideEventMiddleware(logger)(jsonRecoverer(h)))
}

func TestJSONRecoverer_LogsWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := chain(zap.New(core), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("ranker exploded")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/search", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil || resp.Code != codeInternalError {
		t.Fatalf("body = %+v, %v", resp, err)
	}

	panics := logs.FilterMessage("Panic recovered").All()
	if len(panics) != 1 || panics[0].ContextMap()["request_id"] == "" {
		t.Errorf("panic log = %+v", panics)
	}
	access := logs.FilterMessage("http_request").All()
	if len(access) != 1 || access[0].Level != zapcore.ErrorLevel {
		t.Fatalf("access log = %+v", access)
	}
	if access[0].ContextMap()["status"] != int64(http.StatusInternalServerError) {
		t.Errorf("logged status = %v", access[0].ContextMap()["status"])
	}
}

func TestJSONRecoverer_AbortHandlerRepanics(t *testing.T) {
	h := jsonRecoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rvr := recover(); rvr != http.ErrAbortHandler { //nolint:errorlint // identity check
			t.Errorf("recovered %v, want ErrAbortHandler", rvr)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody))
}

func TestWideEvent_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusBadGateway, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		core, logs := observer.New(zapcore.DebugLevel)
		h := chain(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody))

		if rr.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		entries := logs.All()
		if len(entries) != 1 || entries[0].Level != tt.level {
			t.Errorf("status %d: entries = %+v, want level %v", tt.status, entries, tt.level)
		}
	}
}
