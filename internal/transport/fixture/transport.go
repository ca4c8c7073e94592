// Package fixture replays recorded provider responses from disk. It is an
// http.RoundTripper, so the real provider clients parse fixture payloads
// exactly as they parse live ones.
//
// A request maps to <dir>/<endpoint>__<arg>.json, falling back to
// <dir>/<endpoint>.json. The endpoint is the URL path with slashes turned
// into underscores; the arg is the username, name or query parameter, or
// the "query" field of a JSON request body.
package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/logger"
)

// argParams are the query parameters that select a fixture, in priority order.
var argParams = []string{"username", "name", "q", "query"}

// Transport serves fixture files instead of calling providers.
type Transport struct {
	dir string
}

// New creates a Transport reading from dir.
func New(dir string) (*Transport, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixture dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixture dir %s is not a directory", dir)
	}
	return &Transport{dir: dir}, nil
}

// Client returns an http.Client backed by t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	endpoint := endpointName(req.URL.Path)
	arg, err := requestArg(req)
	if err != nil {
		return nil, err
	}

	candidates := []string{endpoint + ".json"}
	if arg != "" {
		candidates = append([]string{endpoint + "__" + arg + ".json"}, candidates...)
	}
	for _, name := range candidates {
		data, err := os.ReadFile(filepath.Join(t.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
		logger.FromContext(req.Context()).Debug("serving fixture", zap.String("file", name))
		return respond(req, http.StatusOK, data), nil
	}
	return respond(req, http.StatusNotFound, []byte(`{"detail":"no fixture for `+candidates[0]+`"}`)), nil
}

func respond(req *http.Request, status int, body []byte) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func endpointName(path string) string {
	path = strings.Trim(path, "/")
	path = strings.TrimPrefix(path, "apis/")
	if path == "" {
		return "root"
	}
	return strings.ReplaceAll(path, "/", "_")
}

func requestArg(req *http.Request) (string, error) {
	q := req.URL.Query()
	for _, p := range argParams {
		if v := q.Get(p); v != "" {
			return Slug(v), nil
		}
	}
	if req.Body == nil || req.Body == http.NoBody {
		return "", nil
	}
	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	var payload struct {
		Query string `json:"query"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return "", nil
	}
	return Slug(payload.Query), nil
}

// Slug lowercases s and collapses every run of characters other than
// letters, digits, dots and underscores into one hyphen.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
