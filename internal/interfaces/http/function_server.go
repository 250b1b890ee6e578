// internal/interfaces/http/function_server.go
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/config"
	"github.com/mercado-ia/storefront/internal/domain/payment"
	"github.com/mercado-ia/storefront/internal/interfaces/http/handlers"
	"github.com/mercado-ia/storefront/internal/interfaces/http/middleware"
	"github.com/mercado-ia/storefront/internal/interfaces/http/routes"
	"github.com/sirupsen/logrus"
)

// FunctionServer hosts the payment function. Every invocation is
// independent; the server holds no state.
type FunctionServer struct {
	config     *config.Config
	gin        *gin.Engine
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewFunctionServer builds the payment function router
func NewFunctionServer(cfg *config.Config, logger *logrus.Logger) *FunctionServer {
	return newFunctionServer(cfg, payment.NewPixService(cfg.Payment, logger), logger)
}

func newFunctionServer(cfg *config.Config, creator handlers.PaymentCreator, logger *logrus.Logger) *FunctionServer {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(logger))
	engine.Use(middleware.RequestSizeLimit(maxRequestBody))

	routes.SetupFunctionRoutes(engine, handlers.NewPixFunctionHandler(creator, logger))

	return &FunctionServer{
		config: cfg,
		gin:    engine,
		logger: logger,
	}
}

// Handler returns the router
func (s *FunctionServer) Handler() http.Handler {
	return s.gin
}

// Start starts the payment function server
func (s *FunctionServer) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.FunctionPort,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithField("port", s.config.Server.FunctionPort).Info("Payment function starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start payment function: %w", err)
	}
	return nil
}

// Stop gracefully stops the payment function server
func (s *FunctionServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown payment function: %w", err)
	}
	return nil
}
