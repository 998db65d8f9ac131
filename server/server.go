package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/localdiscovery/discovery"
	"github.com/kbukum/localdiscovery/logger"
	"github.com/kbukum/localdiscovery/server/endpoint"
	"github.com/kbukum/localdiscovery/server/middleware"
)

// Server is an HTTP server backed by Gin, served over h2c. Additional
// http.Handlers can be mounted next to Gin on the same port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	config     Config
	log        *logger.Logger

	mu        sync.RWMutex
	boundPort int
	running   bool
}

var _ discovery.PortReporter = (*Server)(nil)

// New creates a new Server. Call ApplyDefaults on the config first if needed.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	s := &Server{
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    logger.Named(log, "server"),
	}

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      h2c.NewHandler(s.middleware()(mux), h2s),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

func (s *Server) middleware() middleware.Middleware {
	cors := s.config.CORS
	return middleware.Chain(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(&cors),
		middleware.RequestLogger(s.log),
	)
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handle mounts an http.Handler at the given pattern on the root ServeMux.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", logger.Fields("pattern", pattern))
}

// Handler returns the full handler chain, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// RegisterHealthEndpoints registers /health, /alive, /ready and /info.
func (s *Server) RegisterHealthEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
	s.engine.GET("/alive", endpoint.Liveness(serviceName))
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checker))
}

// RegisterDiscoveryEndpoints exposes the discovery client over HTTP.
func (s *Server) RegisterDiscoveryEndpoints(client endpoint.ClientFunc) {
	g := s.engine.Group("/discovery")
	g.GET("/services", endpoint.Services(client))
	g.GET("/services/:name", endpoint.Instances(client))
}

// Start binds the port and begins serving. It returns once the listener is
// bound, so BoundPort is valid as soon as Start succeeds.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", logger.Fields("addr", s.httpServer.Addr))

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	port := 0
	if tcp, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	s.mu.Lock()
	s.boundPort = port
	s.running = true
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String(), logger.FieldPort, port))
	return nil
}

// BoundPort returns the port the server is listening on, and false when it
// is not running.
func (s *Server) BoundPort() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0, false
	}
	return s.boundPort, true
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	if err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err.Error()))
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
