// Package router assembles the HTTP surface of the chatbot service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arogyamitra/health-chatbot/internal/chat"
	httpmiddleware "github.com/arogyamitra/health-chatbot/internal/http/middleware"
	"github.com/arogyamitra/health-chatbot/internal/report"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	ReportHandler      *report.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.ChatHandler.HealthCheck)
	r.Post("/chat", cfg.ChatHandler.HandleChat)
	r.Post("/suggest_department", cfg.ChatHandler.HandleSuggestDepartment)

	if cfg.ReportHandler != nil {
		r.Post("/generate_report", cfg.ReportHandler.HandleGenerate)
		r.Post("/generate_offline_report", cfg.ReportHandler.HandleGenerateOffline)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
