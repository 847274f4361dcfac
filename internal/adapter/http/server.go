package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/session"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/viewmodel"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportStore is the part of the report store the API serves.
type ReportStore interface {
	List() []domain.EmergencyReport
	Get(id string) (domain.EmergencyReport, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) (domain.EmergencyReport, error)
}

// DetailLoader resolves a detail view synchronously.
type DetailLoader interface {
	Load(ctx context.Context, id string) (viewmodel.DetailView, error)
}

// Deps are the collaborators behind the API routes.
type Deps struct {
	Reports  ReportStore
	Details  DetailLoader
	Sessions *session.Manager
	Ready    sharedobs.ReadinessChecker
	Timezone *time.Location
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes, /healthz, /readyz,
// and /metrics.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	router.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	router.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(deps.Ready)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/reports", s.listReports)
	api.GET("/reports/:id", s.getReport)
	api.PATCH("/reports/:id/status", s.updateStatus)
	api.GET("/reports/:id/detail", s.getDetail)
	api.GET("/board", s.getBoard)

	sessions := api.Group("/sessions")
	sessions.POST("", s.openSession)
	sessions.GET("/:sid/board", s.sessionBoard)
	sessions.POST("/:sid/refresh", s.refreshSession)
	sessions.PUT("/:sid/detail/:id", s.navigate)
	sessions.GET("/:sid/detail", s.sessionDetail)
	sessions.DELETE("/:sid", s.closeSession)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
