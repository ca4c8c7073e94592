// Package mcp exposes creator discovery to assistants over the Model
// Context Protocol, on stdio or streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
)

// ErrMissingDiscovery is returned when no discovery service is provided.
var ErrMissingDiscovery = errors.New("mcp: discovery service is required")

// Discovery runs searches and lookups.
type Discovery interface {
	Search(ctx context.Context, req discovery.Request) (discovery.Result, error)
	Lookup(ctx context.Context, req discovery.LookupRequest) ([]profile.Profile, error)
}

// SessionReader reads a session ledger.
type SessionReader interface {
	Lookup(ctx context.Context, ref session.Ref, usernames []string) ([]profile.Profile, error)
}

// Ports are the services the tools call. Sessions is optional.
type Ports struct {
	Discovery Discovery
	Sessions  SessionReader
	Logger    *zap.Logger
}

// Server is the creatorscout MCP server.
type Server struct {
	ports  Ports
	server *mcp.Server
}

// NewServer creates an MCP server with every tool registered.
func NewServer(ports Ports, version string) (*Server, error) {
	if ports.Discovery == nil {
		return nil, ErrMissingDiscovery
	}
	if ports.Logger == nil {
		ports.Logger = zap.NewNop()
	}
	s := &Server{
		ports:  ports,
		server: mcp.NewServer(&mcp.Implementation{Name: "creatorscout", Version: version}, nil),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.ports.Logger.Info("MCP HTTP server listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http: %w", err)
	}
	return nil
}
