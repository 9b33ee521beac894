package api

import (
	"net/http"
	"sync"

	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/report"
	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds server configuration
type Config struct {
	EngineConfig meta.EngineConfig
	JournalPath  string // empty = no undo journal
	Recursive    bool
	MoveCovers   bool
	RetryConfig  *util.RetryConfig
	Logger       *report.EventLogger
	CORSOrigins  []string // empty = CORS disabled, "*" = any origin
	Debug        bool
}

// Server exposes the rename pipeline over HTTP
type Server struct {
	cfg     Config
	engine  *meta.Engine
	router  *gin.Engine
	metrics *metrics

	// one batch at a time; the journal lock enforces the same across processes
	mu sync.Mutex
}

// New builds the engine and the router. Invalid junk or rule configuration
// is reported here rather than on the first request.
func New(cfg Config) (*Server, error) {
	engine, err := meta.NewEngine(cfg.EngineConfig)
	if err != nil {
		return nil, err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		router:  gin.New(),
		metrics: newMetrics(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), requestLogger())

	if len(s.cfg.CORSOrigins) == 0 {
		return
	}
	corsConfig := cors.DefaultConfig()
	if len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "cloudbuccaneer"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		api.GET("/config", s.handleConfig)
		api.POST("/rename", s.handleRename)
		api.POST("/undo", s.handleUndo)
	}
}

// Handler returns the HTTP handler, for http.Server or httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until the listener fails
func (s *Server) Run(addr string) error {
	util.InfoLog("Listening on %s", addr)
	return s.router.Run(addr)
}
