// Package server exposes the drive query service over HTTP. Routes use
// net/http method patterns; every response body is JSON except the static
// privacy page.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/internal/driveops"
	"github.com/tonimelisma/datalake-api/internal/drivetree"
)

// Queryer answers the API's queries. Satisfied by *driveops.Service.
type Queryer interface {
	List(ctx context.Context, folder string) (drivetree.Listing, error)
	Metadata(ctx context.Context, filePath string) (*driveops.MetadataDoc, error)
	DownloadLink(ctx context.Context, filePath string) (*driveops.DownloadLink, error)
	Search(ctx context.Context, q string) ([]driveops.SearchResult, error)
}

// Server is the HTTP front end.
type Server struct {
	queries Queryer
	holder  *config.Holder
	logger  *slog.Logger
	handler http.Handler
}

// New creates a Server and builds its handler chain.
func New(queries Queryer, holder *config.Holder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		queries: queries,
		holder:  holder,
		logger:  logger,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	// Outermost first: IDs and logging see every request, including
	// preflights and panics.
	s.handler = s.withRequestID(s.withLogging(s.withRecovery(s.withCORS(mux))))

	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully within server.shutdown_timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listening on %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	cfg := s.holder.Config()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeoutDuration(),
	}

	s.logger.Info("HTTP server listening", slog.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("server: %w", err)

	case <-ctx.Done():
	}

	timeout := s.holder.Config().Server.ShutdownTimeoutDuration()
	s.logger.Info("HTTP server shutting down", slog.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}

	return nil
}
