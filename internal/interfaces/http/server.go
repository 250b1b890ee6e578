// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/config"
	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/mercado-ia/storefront/internal/domain/cart"
	"github.com/mercado-ia/storefront/internal/domain/checkout"
	"github.com/mercado-ia/storefront/internal/domain/favorite"
	"github.com/mercado-ia/storefront/internal/domain/payment"
	"github.com/mercado-ia/storefront/internal/domain/seller"
	"github.com/mercado-ia/storefront/internal/domain/session"
	"github.com/mercado-ia/storefront/internal/interfaces/http/handlers"
	"github.com/mercado-ia/storefront/internal/interfaces/http/middleware"
	"github.com/mercado-ia/storefront/internal/interfaces/http/routes"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxRequestBody = 1 << 20

// Server represents the storefront API server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	logger      *logrus.Logger
	sessions    *session.Registry
	sweepCtx    context.Context
	stopSweep   context.CancelFunc
	startedAt   time.Time
}

// NewServer wires the domain services and builds the router
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:      cfg,
		gin:         gin.New(),
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		startedAt:   time.Now(),
	}

	s.sweepCtx, s.stopSweep = context.WithCancel(context.Background())
	s.sessions = session.NewRegistry(cart.NewGormStore(db), NewGateway(cfg, logger), s.flagFactory(), cfg.Checkout.SessionIdleTTL, logger)

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// NewGateway picks how the API reaches the PIX provider: through the
// payment function when PAYMENT_FUNCTION_URL is set, in-process otherwise.
func NewGateway(cfg *config.Config, logger *logrus.Logger) checkout.Gateway {
	if cfg.Payment.FunctionURL != "" {
		logger.WithField("url", cfg.Payment.FunctionURL).Info("Using payment function")
		return payment.NewFunctionClient(cfg.Payment.FunctionURL, cfg.Payment.HTTPTimeout, time.Duration(cfg.Payment.ExpiresIn)*time.Second, logger)
	}
	return payment.NewDirectGateway(payment.NewPixService(cfg.Payment, logger))
}

func (s *Server) flagFactory() session.FlagFactory {
	if !s.config.Checkout.DistributedLock || s.redisClient == nil {
		return nil
	}
	return func(userID string) checkout.BusyFlag {
		return checkout.NewRedisFlag(s.redisClient, userID, s.config.Checkout.LockTTL)
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the idle session sweeper and the HTTP server
func (s *Server) Start() error {
	go s.sessions.Run(s.sweepCtx, s.config.Checkout.SessionSweepInterval)

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": fmt.Sprintf("http://localhost:%s/api/v1", s.config.Server.Port),
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	s.stopSweep()
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config))
	if s.redisClient != nil {
		s.gin.Use(middleware.RateLimit(s.config, s.redisClient, s.logger))
	}
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.gin.Use(middleware.Deadline(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	agents := agent.NewService(s.db)
	sellers := seller.NewService(s.db, agents)

	routes.SetupRoutes(s.gin.Group("/api/v1"), &routes.Handlers{
		Agent:    handlers.NewAgentHandler(agents, s.logger),
		Cart:     handlers.NewCartHandler(s.sessions, s.logger),
		Checkout: handlers.NewCheckoutHandler(s.sessions, s.logger),
		Session:  handlers.NewSessionHandler(s.sessions, s.logger),
		Seller:   handlers.NewSellerHandler(sellers, agents, s.logger),
		Profile:  handlers.NewProfileHandler(sellers, s.logger),
		Favorite: handlers.NewFavoriteHandler(favorite.NewService(s.db), s.sessions, s.logger),
	}, s.config)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"agents":     "/api/v1/agents",
					"categories": "/api/v1/categories",
					"cart":       "/api/v1/cart",
					"checkout":   "/api/v1/checkout",
					"sellers":    "/api/v1/sellers",
					"profile":    "/api/v1/profile",
					"favorites":  "/api/v1/favorites",
				},
			})
		})
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection error",
		})
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "redis ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
		"sessions":  s.sessions.Len(),
	})
}
