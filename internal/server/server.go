package server

import (
	"log/slog"
	"net/http"

	"supermarket-dashboard/internal/handlers"
	"supermarket-dashboard/internal/observability"
	"supermarket-dashboard/internal/services"
)

type Server struct {
	controller  *services.Controller
	mux         *http.ServeMux
	logger      *slog.Logger
	metrics     *observability.Metrics
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

// NewServer wires every route. A nil metrics leaves /metrics unregistered.
func NewServer(controller *services.Controller, metrics *observability.Metrics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		controller:  controller,
		mux:         http.NewServeMux(),
		logger:      logger,
		metrics:     metrics,
		apiHandlers: handlers.NewAPIHandlers(controller, logger),
		sseHandlers: handlers.NewSSEHandlers(controller, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard and operations
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// REST API
	s.mux.HandleFunc("GET /api/snapshot", s.apiHandlers.HandleSnapshot)
	s.mux.HandleFunc("GET /api/overview", s.apiHandlers.HandleOverview)
	s.mux.HandleFunc("GET /api/product-lines/revenue", s.apiHandlers.HandleProductLineRevenue)
	s.mux.HandleFunc("GET /api/product-lines/quantity", s.apiHandlers.HandleProductLineQuantity)
	s.mux.HandleFunc("GET /api/demographics", s.apiHandlers.HandleDemographics)
	s.mux.HandleFunc("GET /api/export.xlsx", s.apiHandlers.HandleExport)

	// Datastar SSE
	s.mux.HandleFunc("GET /sse/select-month", s.sseHandlers.HandleSelectMonth)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
