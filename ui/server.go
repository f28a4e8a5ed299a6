package ui

import (
	_ "embed"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"saevis/adapters/excel"
	"saevis/app"
	"saevis/internal"
	"saevis/internal/config"
)

//go:embed help.md
var helpMarkdown []byte

// Server is the HTTP surface of the dashboard.
type Server struct {
	router   *gin.Engine
	service  *app.DashboardService
	exporter excel.Exporter
	logger   *internal.Logger
	helpHTML []byte
}

// NewServer wires the router. GIN_MODE comes from configuration so tests
// and production share the same construction path.
func NewServer(cfg *config.Config, service *app.DashboardService, logger *internal.Logger) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:   gin.Default(),
		service:  service,
		exporter: excel.NewExporter(),
		logger:   logger,
		helpHTML: renderHelp(helpMarkdown),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/help", s.handleHelp)

	api := s.router.Group("/api")
	api.GET("/filters/options", s.handleFilterOptions)
	api.POST("/sessions", s.handleCreateSession)

	sess := api.Group("/sessions/:id")
	sess.DELETE("", s.handleCloseSession)
	sess.PUT("/filters", s.handleApplyFilters)
	sess.POST("/refresh", s.handleRefresh)
	sess.POST("/deactivate", s.handleDeactivate)

	sess.GET("/thresholds", s.handleThresholdSnapshot)
	sess.PUT("/thresholds/global", s.handleSetGlobal)
	sess.PUT("/thresholds/group", s.handleSetGroup)
	sess.PUT("/thresholds/individual", s.handleSetIndividual)
	sess.DELETE("/thresholds/group", s.handleClearGroup)
	sess.DELETE("/thresholds/individual", s.handleClearIndividual)
	sess.POST("/thresholds/reset", s.handleResetThresholds)
	sess.GET("/effective", s.handleEffective)
	sess.GET("/groups/:group/members", s.handleGroupMembers)

	sess.GET("/charts/histogram", s.handleHistogram)
	sess.GET("/charts/stack", s.handleStack)
	sess.GET("/charts/flow", s.handleFlow)
	sess.POST("/panel/place", s.handlePlacePanel)
	sess.PUT("/panel/override", s.handleSetPanelOverride)
	sess.DELETE("/panel/override", s.handleClearPanelOverride)

	sess.GET("/export", s.handleExport)
}

// Run starts the server on the given address.
func (s *Server) Run(addr string) error {
	s.logger.Info("🚀 Dashboard server listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func renderHelp(src []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.ToHTML(src, p, renderer)
}
