package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/movexa/trackctl/internal/auth"
)

const version = "1.0.0"

func (s *Server) registerRoutes() {
	r := s.router

	// Customer-facing pages. The original app registered /quote and
	// /get-quote (and both spellings of ship-now); keep all of them so
	// existing links stay live.
	staticPages := map[string]string{
		"/":              "index.html",
		"/ship-now":      "ship_now.html",
		"/ship_now":      "ship_now.html",
		"/get-quote":     "quote.html",
		"/quote":         "quote.html",
		"/business":      "business.html",
		"/contact":       "contact.html",
		"/about":         "about.html",
		"/client-portal": "client_portal.html",
	}
	for path, name := range staticPages {
		r.GET(path, s.renderPage(name))
	}

	r.POST("/track", s.handleTrack)
	r.GET("/results/:tracking_id", s.handleResults)
	r.POST("/api/quote", s.handleQuote)

	admin := r.Group("/admin", auth.Basic(s.cfg.Admin))
	admin.GET("", s.handleAdminHome)
	admin.GET("/new", s.handleAdminNewForm)
	admin.POST("/new", s.handleAdminCreate)
	admin.GET("/update/:tracking_id", s.handleAdminUpdateForm)
	admin.POST("/update/:tracking_id", s.handleAdminUpdate)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": s.cfg.Name,
			"version": version,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.appeared).String(),
			"service": s.cfg.Name,
			"version": version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) renderPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, nil)
	}
}
