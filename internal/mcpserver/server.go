// Package mcpserver exposes input injection and window management as MCP
// tools and resources, over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bnema/winject/internal/backend"
	"github.com/bnema/winject/internal/config"
	"github.com/bnema/winject/internal/logger"
	"github.com/bnema/winject/internal/rate"
	"github.com/bnema/winject/internal/screen"
)

const serverName = "winject"

const instructions = `winject injects keyboard and mouse input on the host and manages its
windows. Coordinates are virtual-screen pixels; with multiple monitors they
can be negative. Read winject://desktop before moving the mouse, and use
window_select or window_activate to focus a target before typing into it.

All injection is rate limited. mouse_move walks the cursor toward the
target in clamped steps instead of teleporting; typing and clicking are
paced per event. Tune the pacing with rate_configure.

Window handles (hwnd) accept decimal or 0x-prefixed hex, as returned by
window_list.`

// Server wires a configured injection backend and rate limiter into an MCP
// server.
type Server struct {
	cfg     *config.Config
	be      backend.Backend
	limiter *rate.Limiter
	mcp     *mcp.Server
	version string

	// cursorPos is swappable for tests.
	cursorPos func() (int, int)
}

// New builds the MCP server and registers every tool and resource.
func New(cfg *config.Config, be backend.Backend, version string) *Server {
	s := &Server{
		cfg: cfg,
		be:  be,
		limiter: rate.NewLimiter(rate.Config{
			MoveHz:       cfg.Rate.MoveHz,
			MaxDelta:     cfg.Rate.MaxDelta,
			Smooth:       cfg.Rate.Smooth,
			ClicksPerSec: cfg.Rate.ClicksPerSec,
			KeysPerSec:   cfg.Rate.KeysPerSec,
		}.Clamped()),
		version:   version,
		cursorPos: screen.CursorPos,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: version},
		&mcp.ServerOptions{Instructions: instructions},
	)
	s.registerInputTools()
	s.registerWindowTools()
	s.registerPrompts()
	s.registerResources()
	return s
}

// Run serves MCP over the configured transport and blocks until the
// context ends or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	defer s.be.Close()

	switch s.cfg.Server.Transport {
	case "", "stdio":
		logger.Info("Serving MCP on stdio")
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	case "http":
		return s.runHTTP(ctx)

	default:
		return fmt.Errorf("unsupported transport %q (use \"stdio\" or \"http\")", s.cfg.Server.Transport)
	}
}

func (s *Server) runHTTP(ctx context.Context) error {
	addr := s.cfg.Server.HTTPAddr
	if addr == "" {
		addr = "localhost:8001"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Serving MCP over HTTP on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down HTTP transport")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
