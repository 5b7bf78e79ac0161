package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/sena-services/registry/ai"
	"github.com/sena-services/registry/internal/metrics"
	"github.com/sena-services/registry/internal/profile"
	"github.com/sena-services/registry/search"
	apiv1 "github.com/sena-services/registry/server/router/api/v1"
	"github.com/sena-services/registry/store"
)

// Server hosts the registry HTTP API.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
}

// NewServer wires the embedding service, searcher and routes.
func NewServer(ctx context.Context, profile *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		Profile:    profile,
		Store:      st,
		echoServer: e,
	}

	embeddingConfig := ai.ResolveEmbeddingConfig(profile)
	embedder := ai.NewEmbeddingService(embeddingConfig)
	if embedder == nil {
		slog.Info("no embedding API key configured, semantic search disabled")
	} else {
		slog.Info("embedding service initialized",
			"base_url", embeddingConfig.BaseURL,
			"model", embeddingConfig.Model,
		)
	}

	exporter := metrics.NewExporter()
	searcher := search.NewSearcher(st, embedder, exporter)

	apiv1.NewAPIV1Service(profile, st, searcher).RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))

	return s, nil
}

// Start begins serving. It returns immediately; serve errors other than
// graceful shutdown are logged.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)

	var listener net.Listener
	var err error
	if s.Profile.UNIXSock != "" {
		listener, err = net.Listen("unix", s.Profile.UNIXSock)
	} else {
		listener, err = net.Listen("tcp", address)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.echoServer.Listener = listener

	go func() {
		if err := s.echoServer.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", "error", err)
		}
	}()

	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("registry server stopped")
}
