package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/http/handlers"
	"storefront/internal/infrastructure/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Orders   *handlers.OrderHandler
	Users    *handlers.UserHandler
	Health   *handlers.HealthHandler
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(h Handlers, resolver repository.PrincipalResolver, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", zap.Error(err))
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	server := &Server{
		logger: logger,
		router: r,
	}
	server.setupRoutes(h, middleware.Auth(resolver, logger))
	return server
}

func (s *Server) setupRoutes(h Handlers, auth gin.HandlerFunc) {
	s.router.GET("/health", h.Health.Check)

	s.router.POST("/register", h.Auth.Register)
	s.router.POST("/token", h.Auth.Token)

	s.router.GET("/products", h.Products.List)
	s.router.GET("/products/:id", h.Products.Get)

	authed := s.router.Group("/", auth)
	authed.POST("/orders", h.Orders.Create)
	authed.DELETE("/users/me", h.Users.DeleteMe)

	admin := authed.Group("/", middleware.RequireSuperuser())
	admin.POST("/products", h.Products.Create)
	admin.DELETE("/products/:id", h.Products.Delete)
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second, WriteTimeout: 30 * time.Second}
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
