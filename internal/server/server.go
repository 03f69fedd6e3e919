// Package server provides the HTTP server and routing for the trade
// journal.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/config"
	"github.com/onohta/tradebook/internal/database"
	analyticshandlers "github.com/onohta/tradebook/internal/modules/analytics/handlers"
	"github.com/onohta/tradebook/internal/modules/companies"
	"github.com/onohta/tradebook/internal/modules/dividends"
	dividendhandlers "github.com/onohta/tradebook/internal/modules/dividends/handlers"
	holdingshandlers "github.com/onohta/tradebook/internal/modules/holdings/handlers"
	"github.com/onohta/tradebook/internal/modules/impexp"
	impexphandlers "github.com/onohta/tradebook/internal/modules/impexp/handlers"
	"github.com/onohta/tradebook/internal/modules/journal"
	journalhandlers "github.com/onohta/tradebook/internal/modules/journal/handlers"
	profithandlers "github.com/onohta/tradebook/internal/modules/profit/handlers"
	syncengine "github.com/onohta/tradebook/internal/sync"
)

// Config holds server configuration
type Config struct {
	Log            zerolog.Logger
	Config         *config.Config
	JournalDB      *database.DB
	JournalService *journal.Service
	DividendsSvc   *dividends.Service
	ImpExpSvc      *impexp.Service
	Companies      *companies.Registry
	SyncEngine     *syncengine.Engine
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	journalDB      *database.DB
	journalService *journal.Service
	dividendsSvc   *dividends.Service
	impexpSvc      *impexp.Service
	companies      *companies.Registry
	syncEngine     *syncengine.Engine
	systemHandlers *SystemHandlers
	startedAt      time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		journalDB:      cfg.JournalDB,
		journalService: cfg.JournalService,
		dividendsSvc:   cfg.DividendsSvc,
		impexpSvc:      cfg.ImpExpSvc,
		companies:      cfg.Companies,
		syncEngine:     cfg.SyncEngine,
		startedAt:      time.Now(),
	}
	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.JournalDB, s.startedAt)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		journalHandler := journalhandlers.NewHandler(s.journalService, s.log)
		journalHandler.RegisterRoutes(r)

		holdingsHandler := holdingshandlers.NewHandler(s.journalService, s.companies, s.log)
		holdingsHandler.RegisterRoutes(r)

		profitHandler := profithandlers.NewHandler(s.journalService, s.log)
		profitHandler.RegisterRoutes(r)

		dividendHandler := dividendhandlers.NewHandler(s.dividendsSvc, s.journalService, s.log)
		dividendHandler.RegisterRoutes(r)

		analyticsHandler := analyticshandlers.NewHandler(s.journalService, s.companies, s.log)
		analyticsHandler.RegisterRoutes(r)

		impexpHandler := impexphandlers.NewHandler(s.impexpSvc, s.log)
		impexpHandler.RegisterRoutes(r)

		// Sync trigger and status
		r.Route("/sync", func(r chi.Router) {
			r.Post("/", s.handleTriggerSync)
			r.Get("/status", s.handleSyncStatus)
		})

		// System monitoring
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
