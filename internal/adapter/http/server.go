package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/service/logger"
	"github.com/opsboard/opsboard/internal/service/ratelimit"
	"github.com/opsboard/opsboard/internal/usecase"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	server *http.Server
	log    logger.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxUploadBytes  int64
	IngestAPIKeys   []string
	RateLimit       int
	RateLimitWindow time.Duration
}

// NewServer wires handlers, middleware and routes. Authenticated routes sit
// under /api/v1 behind the JWT middleware; login and ingestion are outside it
// with their own guards (rate limit, API key).
func NewServer(
	config ServerConfig,
	log logger.Logger,
	taskUseCase *usecase.TaskUseCase,
	incidentUseCase *usecase.IncidentUseCase,
	commentUseCase *usecase.CommentUseCase,
	attachmentUseCase *usecase.AttachmentUseCase,
	authUseCase *usecase.AuthUseCase,
	authMiddleware *middleware.AuthMiddleware,
	limiter ratelimit.RateLimitService,
) *Server {
	taskHandler := NewTaskHandler(taskUseCase)
	incidentHandler := NewIncidentHandler(incidentUseCase)
	commentHandler := NewCommentHandler(commentUseCase)
	attachmentHandler := NewAttachmentHandler(attachmentUseCase, config.MaxUploadBytes)
	authHandler := NewAuthHandler(authUseCase)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware)
	router.Use(recoveryMiddleware(log))

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public surface: login (rate limited per IP).
	public := api.NewRoute().Subrouter()
	loginLimit := middleware.NewRateLimitMiddleware(limiter, config.RateLimit, config.RateLimitWindow, "login")
	public.Use(loginLimit.Limit)
	authHandler.RegisterPublicRoutes(public)

	// External ingestion: API key auth, rate limited per IP.
	ingest := api.NewRoute().Subrouter()
	apiKey := middleware.NewAPIKeyMiddleware(config.IngestAPIKeys)
	ingestLimit := middleware.NewRateLimitMiddleware(limiter, config.RateLimit, config.RateLimitWindow, "ingest")
	ingest.Use(ingestLimit.Limit)
	ingest.Use(apiKey.RequireAPIKey)
	incidentHandler.RegisterIngestRoutes(ingest)

	// Session-authenticated surface.
	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware.RequireAuth)
	taskHandler.RegisterRoutes(authed)
	incidentHandler.RegisterRoutes(authed)
	commentHandler.RegisterRoutes(authed)
	attachmentHandler.RegisterRoutes(authed)
	authHandler.RegisterRoutes(authed)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return &Server{
		addr: ":" + config.Port,
		log:  log,
		server: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info(context.Background(), "Starting HTTP server", map[string]interface{}{"addr": s.addr})
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}

// Middleware

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info(r.Context(), "request", map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).String(),
			})
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.APIKeyHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func recoveryMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error(r.Context(), "Panic recovered", nil, map[string]interface{}{"panic": err})
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
