// Package server exposes the admin data and the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/clientconfig"
	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/service"
	"github.com/Veraticus/claims-triage/internal/storage"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// maxUpload bounds the multipart body accepted by the pipeline endpoints.
const maxUpload = 32 << 20

const requestIDHeader = "X-Request-ID"

// Server serves the triage API.
type Server struct {
	app      *fiber.App
	store    service.Storage
	analyzer *analysis.Analyzer
	logger   *slog.Logger
}

// New builds a Server and registers its routes.
func New(store service.Storage, analyzer *analysis.Analyzer, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		analyzer: analyzer,
		logger:   common.OrDefault(logger),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "claims-triage",
		BodyLimit:    maxUpload,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: s.handleError,
	})
	s.app.Use(s.requestID)

	s.app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.routes(s.app.Group("/api"))
	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// ListenOptions configures Listen. TLS is used when both files are set.
type ListenOptions struct {
	Addr     string
	CertFile string
	KeyFile  string
}

// Listen serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, opts ListenOptions) error {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	cfg := fiber.ListenConfig{DisableStartupMessage: true}
	if opts.CertFile != "" && opts.KeyFile != "" {
		cfg.CertFile = opts.CertFile
		cfg.CertKeyFile = opts.KeyFile
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(opts.Addr, cfg)
	}()
	s.logger.Info("api server listening", "addr", opts.Addr, "tls", cfg.CertFile != "")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) requestID(c fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)
	c.Locals(requestIDHeader, id)
	return c.Next()
}

// handleError renders every handler error as {"error": msg}.
func (s *Server) handleError(c fiber.Ctx, err error) error {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals(requestIDHeader),
			"error", err)
	} else {
		s.logger.Debug("request rejected", "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrDuplicateEntry):
		return http.StatusConflict, "already exists"
	case errors.Is(err, storage.ErrReferenced):
		return http.StatusConflict, "still referenced by other records"
	case storage.IsValidationError(err),
		errors.Is(err, clientconfig.ErrInvalidFile),
		errors.Is(err, common.ErrDiscoveryMapping),
		errors.Is(err, common.ErrNoHeaders),
		errors.Is(err, common.ErrNoDataRows),
		errors.Is(err, common.ErrUnsupportedFormat):
		return http.StatusBadRequest, common.UserMessage(err, err.Error())
	}
	return http.StatusInternalServerError, "internal server error"
}
