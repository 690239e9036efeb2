// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/channel-scanner/internal/logging"
	"github.com/channel-scanner/internal/models"
	"github.com/channel-scanner/internal/service"
	"github.com/gorilla/mux"
)

// Service interfaces for dependency injection and testing

// ScanServiceInterface defines scan lifecycle operations used by the API
type ScanServiceInterface interface {
	RunScan(ctx context.Context, category, tag string) (*service.ScanResult, error)
	ListRecentJobs(ctx context.Context, limit int) ([]service.JobSummary, error)
}

// QueryServiceInterface defines read-side operations used by the API
type QueryServiceInterface interface {
	ListChannels(ctx context.Context, jobID string, limit int) ([]*models.ChannelView, error)
	GetStatistics(ctx context.Context) (*service.Statistics, error)
}

// Server represents the HTTP API server.
type Server struct {
	router       *mux.Router
	handler      http.Handler
	httpServer   *http.Server
	scanService  ScanServiceInterface
	queryService QueryServiceInterface
	config       *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

// NewServer creates a new API server instance.
func NewServer(config *ServerConfig, scanService ScanServiceInterface, queryService QueryServiceInterface) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		scanService:  scanService,
		queryService: queryService,
		config:       config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	s.router.Use(RateLimitMiddleware(rateLimiter))

	s.setupRoutes()

	// Error handlers still need CORS headers, so CORS wraps the router
	// itself rather than running as router middleware.
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	s.handler = LoggingMiddleware(RecoveryMiddleware(CORSMiddleware(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/scan", s.handleStartScan).Methods(http.MethodPost)
	s.router.HandleFunc("/scan", s.handleListJobs).Methods(http.MethodGet)
	s.router.HandleFunc("/channels", s.handleListChannels).Methods(http.MethodGet)
	s.router.HandleFunc("/stats", s.handleStatistics).Methods(http.MethodGet)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "channel-scanner",
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// Handler returns the fully wrapped HTTP handler (used in tests)
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.GetGlobalLogger().Infof("Starting API server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.GetGlobalLogger().Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
