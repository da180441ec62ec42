package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/alexmentor/mentor-gateway/internal/config"
	"github.com/alexmentor/mentor-gateway/internal/forwarder"
	"github.com/alexmentor/mentor-gateway/internal/handler"
	"github.com/alexmentor/mentor-gateway/internal/middleware"
	"github.com/alexmentor/mentor-gateway/internal/quota"
	"github.com/alexmentor/mentor-gateway/internal/routing"
	"github.com/alexmentor/mentor-gateway/internal/storage"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router     *gin.Engine
	config     *config.Config
	ledger     *quota.Ledger
	table      *routing.Table
	gateway    *handler.Gateway
	postgres   *storage.Postgres
	redis      *storage.RedisClient
	httpServer *http.Server
}

// New wires the gateway together. postgres and redis may be nil when the
// configured quota backend does not use them.
func New(cfg *config.Config, ledger *quota.Ledger, table *routing.Table, postgres *storage.Postgres, redis *storage.RedisClient) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	fwd := forwarder.New(cfg.Upstream.Timeout, cfg.Upstream.PlatformMode)
	gateway := handler.NewGateway(ledger, table, fwd)

	s := &Server{
		router:   router,
		config:   cfg,
		ledger:   ledger,
		table:    table,
		gateway:  gateway,
		postgres: postgres,
		redis:    redis,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS(s.config.CORS.AllowedOrigin))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	admin := s.router.Group("/admin")
	{
		admin.GET("/status", s.adminStatus)
		admin.GET("/quota/:ip", s.quotaUsage)
	}

	// Both deployment shapes: a bare POST to the root and the
	// path-based /webhook form. The handler owns the method gate.
	s.router.Any("/", s.gateway.Handle)
	s.router.Any("/webhook/*path", s.gateway.Handle)
}

func (s *Server) healthCheck(c *gin.Context) {
	storeHealthy := true

	if s.postgres != nil {
		if err := s.postgres.Ping(c.Request.Context()); err != nil {
			storeHealthy = false
			log.Printf("Postgres health check failed: %v", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Ping(c.Request.Context()); err != nil {
			storeHealthy = false
			log.Printf("Redis health check failed: %v", err)
		}
	}

	// A sick quota store degrades the service but does not take the
	// gateway down: requests fail open.
	status := "healthy"
	statusCode := http.StatusOK
	if !storeHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "mentor-gateway",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"quota_store": storeHealthy,
		},
	})
}

func (s *Server) adminStatus(c *gin.Context) {
	mode := "long-running"
	if s.config.Upstream.PlatformMode {
		mode = "platform"
	}

	c.JSON(http.StatusOK, gin.H{
		"gateway":   "running",
		"mode":      mode,
		"actions":   s.table.Actions(),
		"uptime":    time.Since(startTime).Seconds(),
		"timestamp": time.Now().Unix(),
		"quota": gin.H{
			"window":       s.ledger.Window().String(),
			"max_requests": s.ledger.MaxRequests(),
		},
	})
}

func (s *Server) quotaUsage(c *gin.Context) {
	ip := c.Param("ip")

	used, err := s.ledger.Usage(c.Request.Context(), ip)
	if err != nil {
		log.Printf("Quota usage lookup failed for %s: %v", ip, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Quota store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ip":           ip,
		"used":         used,
		"max_requests": s.ledger.MaxRequests(),
		"window":       s.ledger.Window().String(),
	})
}

func (s *Server) Run(addr string) error {
	// Write timeout must outlive the upstream deadline so the gateway,
	// not the socket, produces the timeout body.
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.config.Upstream.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting mentor gateway on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

var startTime = time.Now()
