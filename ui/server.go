package ui

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"genexplorer/app"
	"genexplorer/internal"
	"genexplorer/internal/metrics"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the explorer web server
type Server struct {
	router    *gin.Engine
	explorer  *app.ExplorerService
	metrics   *metrics.Metrics
	logger    *internal.Logger
	templates *template.Template
	http      *http.Server
}

// ServerOptions holds optional collaborators
type ServerOptions struct {
	Metrics *metrics.Metrics
	Logger  *internal.Logger
}

// NewServer creates a server with routes registered
func NewServer(explorer *app.ExplorerService, opts ServerOptions) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	s := &Server{
		router:    gin.New(),
		explorer:  explorer,
		metrics:   opts.Metrics,
		logger:    logger,
		templates: tmpl,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/plot/:kind", s.handlePlotHTML)

	api := s.router.Group("/api")
	api.GET("/genes", s.handleGenes)
	api.GET("/groups", s.handleGroups)
	api.GET("/sizes", s.handleSizes)
	api.POST("/filter", s.handleFilter)
	api.GET("/plot/:kind", s.handlePlot)
	api.GET("/export/:kind", s.handleExport)
	api.GET("/diagnose/:gene", s.handleDiagnose)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("[Server] listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
