// Package server assembles the trackd HTTP application: the public
// tracking pages, the quote API, and the basic-auth admin console.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/movexa/trackctl/internal/auth"
	"github.com/movexa/trackctl/internal/observability"
	"github.com/movexa/trackctl/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Config carries the runtime settings trackd resolves from flags, config
// file, and environment.
type Config struct {
	Name        string
	Bind        string
	CorsOrigins []string
	Workers     int
	Timeout     time.Duration
	Admin       auth.Credentials
}

// Server owns the gin engine and the tracking store.
type Server struct {
	cfg      Config
	store    *store.Store
	router   *gin.Engine
	appeared time.Time
}

// New builds the fully wired engine: recovery, request logging, metrics,
// the worker-cap semaphore, CORS, templates, and all routes.
func New(cfg Config, st *store.Store) (*Server, error) {
	observability.RegisterMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(concurrencyLimiter(cfg.Workers))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tpl)

	s := &Server{
		cfg:      cfg,
		store:    st,
		router:   r,
		appeared: time.Now(),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully. The configured timeout bounds request reads and writes, the
// closest analogue of the original worker timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Bind,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Timeout,
		WriteTimeout: s.cfg.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("service", s.cfg.Name).
			Str("bind", s.cfg.Bind).
			Int("workers", s.cfg.Workers).
			Dur("timeout", s.cfg.Timeout).
			Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Str("service", s.cfg.Name).Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// concurrencyLimiter caps in-flight requests at n, the single-process
// stand-in for the worker-process count the launcher passes down.
func concurrencyLimiter(n int) gin.HandlerFunc {
	if n < 1 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := make(chan struct{}, n)
	return func(c *gin.Context) {
		sem <- struct{}{}
		defer func() { <-sem }()
		c.Next()
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
