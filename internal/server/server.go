// Package server assembles the HTTP router and runs the demo server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/nlpdemo/internal/db"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
	// RequestTimeout bounds handlers mounted on Router. Streams is exempt.
	RequestTimeout time.Duration
}

// Server is the demo server.
type Server struct {
	cfg        Config
	db         *db.DB
	root       chi.Router
	router     chi.Router
	streams    chi.Router
	httpServer *http.Server
}

// New creates a new server. Feature packages mount their routes on
// Router().
func New(cfg Config, database *db.DB) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		cfg: cfg,
		db:  database,
	}

	s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router and its two route
// groups.
func (s *Server) buildRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s.db != nil {
			if err := s.db.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, `{"status":"error","error":%q}`, err.Error())
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.root = r
	// Backend calls run inside the handler, so leave headroom above the
	// backend client timeout.
	s.router = r.With(middleware.Timeout(s.cfg.RequestTimeout + 5*time.Second))
	// Hijacked connections must not get the timeout's 504.
	s.streams = r.With()
}

// Router returns the chi router for registering request/response routes.
func (s *Server) Router() chi.Router { return s.router }

// Streams returns the router for long-lived connections such as websockets.
// It carries no request timeout.
func (s *Server) Streams() chi.Router { return s.streams }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.root }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.root,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("nlpdemo server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
