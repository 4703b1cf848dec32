// Package server provides the HTTP handlers and routing for the MCP server.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"ou-videos-mcp/internal/mcp"
	"ou-videos-mcp/internal/tools"
)

// DefaultOpenPaths are reachable without a bearer token.
var DefaultOpenPaths = []string{"/", "/health", "/mcp/tools"}

const maxBodyBytes = 1 << 20

// Config contains the HTTP-facing settings of the server.
type Config struct {
	// Token is the expected bearer token. Empty disables auth.
	Token string
	// OpenPaths skip the auth check. Nil means DefaultOpenPaths.
	OpenPaths      []string
	RequestTimeout time.Duration
}

// Server contains the configured router, dispatcher, and config for the MCP server.
type Server struct {
	cfg        Config
	router     *chi.Mux
	dispatcher *mcp.Dispatcher
	catalog    *tools.Catalog
	openPaths  map[string]struct{}
}

// New constructs a Server with middleware and routes configured.
func New(cfg Config, catalog *tools.Catalog, dispatcher *mcp.Dispatcher) *Server {
	if cfg.OpenPaths == nil {
		cfg.OpenPaths = DefaultOpenPaths
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		dispatcher: dispatcher,
		catalog:    catalog,
		openPaths:  make(map[string]struct{}, len(cfg.OpenPaths)),
	}
	for _, p := range cfg.OpenPaths {
		if p = strings.TrimSpace(p); p != "" {
			s.openPaths[p] = struct{}{}
		}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(cfg.RequestTimeout))
	s.router.Use(cors)
	s.router.Use(s.auth)

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Post("/mcp", s.handleRPC)
	s.router.Get("/mcp/tools", s.handleListTools)

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if _, open := s.openPaths[r.URL.Path]; open {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "OU Videos MCP server is running")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, mcp.ListToolsResult{Tools: s.catalog.List()})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.WithError(err).Warn("reading request body")
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	resp := s.dispatcher.HandleBytes(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
