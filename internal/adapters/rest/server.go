package rest

import (
	"context"
	"easystay-service/internal/core/port"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// Без доверенного прокси заголовки X-Forwarded-For подделываются клиентом,
	// и лимит на /r/{code} обходится сменой заголовка
	TrustProxyHeaders bool
}

// Routes - обработчики и middleware, из которых собирается роутер
type Routes struct {
	Search    *SearchHandler
	Affiliate *AffiliateHandler
	Health    *HealthHandler
	Auth      *AuthMiddleware
	Limiter   *RateLimiter
}

func NewRouter(cfg ServerConfig, routes Routes, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(LoggerMiddleware(baseLogger), RecoverJSON)

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", traceHeader},
		ExposedHeaders:   []string{traceHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", routes.Health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", routes.Search.SearchProperties)
		r.Get("/properties/{slug}", routes.Search.GetProperty)

		r.Post("/affiliates/login", routes.Affiliate.Login)
		r.With(routes.Auth.Authenticate).Get("/affiliates/me/dashboard", routes.Affiliate.Dashboard)
	})

	r.With(routes.Limiter.Middleware).Get("/r/{code}", routes.Affiliate.Redirect)

	return r
}

func NewServer(cfg ServerConfig, routes Routes, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, routes, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
