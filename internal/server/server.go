// Package server monta o roteador HTTP do gateway: CORS, rate limit, limite de
// concorrência e as rotas do site.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"assistant-gateway/internal/assistant"
	"assistant-gateway/internal/config"
	"assistant-gateway/internal/observability"
	"assistant-gateway/middleware/cors"
	"assistant-gateway/middleware/ratelimit"
	"assistant-gateway/middleware/ratelimit/domain"
	"assistant-gateway/middleware/ratelimit/infra"
)

// Deps são as peças construídas uma vez na inicialização e injetadas no roteador.
type Deps struct {
	Config *config.Config
	Logger *zap.Logger

	Store       domain.WindowStore
	Stats       domain.StatsStore
	MemoryStats *infra.MemoryStatsStore
	Registry    *prometheus.Registry

	Assistant http.Handler
	Upstream  http.Handler
}

type Server struct {
	router *chi.Mux
	server *http.Server
	log    *zap.Logger
}

func New(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := d.Config

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(cors.Middleware(cors.Options{SiteOrigin: cfg.Site.Origin, Dev: cfg.Site.Dev}))
	r.Use(ratelimit.Middleware(ratelimit.Options{
		Store: d.Store,
		Stats: d.Stats,
		Identifier: ratelimit.IdentifierConfig{
			ClientIDHeader: cfg.RateLimiter.ClientIDHeader,
			AddressHeaders: cfg.RateLimiter.AddressHeaders,
			UseRemoteAddr:  cfg.RateLimiter.UseRemoteAddr,
		},
		Scope:          ratelimit.PathPrefixScope(cfg.RateLimiter.ScopePrefixes...),
		Logger:         log.Named("ratelimit"),
		DenialLogEvery: cfg.RateLimiter.DenialLogEvery,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/robots.txt", assistant.RobotsHandler(cfg.Site.Origin))
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", observability.MetricsHandler(d.Registry))
	}
	if d.MemoryStats != nil {
		stats := d.MemoryStats
		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, stats.Snapshot())
		})
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            cfg.Concurrency.Max,
			AcquireTimeout: cfg.Concurrency.Timeout,
			Logger:         log.Named("concurrency"),
		}))
		if d.Assistant != nil {
			api.Method(http.MethodPost, "/llm/gemini", d.Assistant)
		}
		if d.Upstream != nil {
			api.Handle("/*", d.Upstream)
		}
	})

	return &Server{
		router: r,
		log:    log,
		server: &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}
}

// Start bloqueia até o servidor parar. Depois de Shutdown devolve http.ErrServerClosed.
func (s *Server) Start() error {
	s.log.Info("gateway listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// Handler expõe o roteador para testes.
func (s *Server) Handler() http.Handler {
	return s.router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
