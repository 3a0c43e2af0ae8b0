// Package api is the HTTP backend the stock info clients consume. It
// serves /search and /stock from a market data provider.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/stockinfo/config"
	"github.com/dyike/stockinfo/internal/dataflows"
	"github.com/dyike/stockinfo/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server runs the HTTP backend
type Server struct {
	addr       string
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer creates a server for provider using the backend settings of cfg
func NewServer(cfg *config.Config, provider dataflows.Provider) *Server {
	handler := NewStockHandler(provider, cfg.SearchLimit, cfg.RequestTimeout)
	router := NewRouter(RouterConfig{
		StockHandler:   handler,
		AllowedOrigins: cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout + 5*time.Second,
	})

	return &Server{
		addr: cfg.ListenAddr,
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger.Component("api"),
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}
