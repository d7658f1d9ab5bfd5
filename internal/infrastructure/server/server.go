package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/api/http"
	"github.com/toffeegg/flyffu-launcherd/internal/api/middleware"
	"github.com/toffeegg/flyffu-launcherd/internal/api/ws"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/launcher"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/partition"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/profile"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/registry"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/settings"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/config"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/monitoring"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/runtime"
	"github.com/toffeegg/flyffu-launcherd/internal/providers/news"
	"github.com/toffeegg/flyffu-launcherd/internal/providers/transfer"
	"github.com/toffeegg/flyffu-launcherd/internal/providers/update"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
)

// Version is the running launcher version, set at build time via
// -ldflags "-X .../internal/infrastructure/server.Version=x.y.z".
var Version = "dev"

// Server wraps the HTTP server and dependencies.
type Server struct {
	router   *gin.Engine
	launcher *launcher.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer wires every component and registers the routes.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing launcher daemon",
		zap.String("version", Version),
		zap.String("port", cfg.Server.Port),
		zap.String("data_dir", cfg.DataDir),
	)

	layout := paths.Layout{DataDir: cfg.DataDir}
	if err := layout.Ensure(); err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()

	// Stores and the partition subsystem.
	profiles := profile.NewStore(layout, logger)
	prefs := settings.NewStore(layout, logger)
	resolver := partition.NewResolver(layout)
	queue := partition.NewPendingQueue(layout, logger)
	reaper := partition.NewReaper(layout, queue, logger).WithMetrics(metrics)

	// Event hub and the shell-facing runtime.
	hub := ws.NewHub(logger).WithMetrics(metrics)
	gateway := runtime.NewGateway(layout, logger)
	windows := runtime.NewWindows(hub, logger)

	lm := launcher.NewManager(
		profiles,
		resolver,
		reaper,
		registry.NewManager(),
		gateway,
		windows,
		logger,
	).WithEvents(hub).WithMetrics(metrics)

	// One-shot legacy migration, then drain deletion debt before any
	// partition can be opened.
	lm.Startup()

	var checker *update.Checker
	if cfg.Update.Enabled {
		checker = update.NewChecker(cfg.Update.URL, Version, logger)
	}
	var feed *news.Fetcher
	if cfg.News.Enabled {
		feed = news.NewFetcher(cfg.News.URL, logger)
	}
	bundles := transfer.NewManager(profiles, prefs, resolver, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS())
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(lm, prefs, windows, checker, feed, bundles, Version, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/stream", hub.HandleConnection)

	// Profile lifecycle
	router.GET("/profiles", handlers.ListProfiles)
	router.POST("/profiles", handlers.AddProfile)
	router.PUT("/profiles/order", handlers.ReorderProfiles)
	router.GET("/profiles/:name", handlers.GetProfile)
	router.PATCH("/profiles/:name", handlers.UpdateProfile)
	router.DELETE("/profiles/:name", handlers.DeleteProfile)
	router.POST("/profiles/:name/rename", handlers.RenameProfile)
	router.POST("/profiles/:name/clone", handlers.CloneProfile)
	router.POST("/profiles/:name/launch", handlers.LaunchProfile)
	router.POST("/profiles/:name/quit", handlers.QuitProfile)
	router.POST("/profiles/:name/clear", handlers.ClearProfile)
	router.POST("/profiles/:name/winstate/reset", handlers.ResetWinState)

	// Shell callbacks
	router.POST("/windows/:id/state", handlers.ReportWindowState)
	router.POST("/windows/:id/closed", handlers.ReportWindowClosed)

	// Preferences and auxiliary features
	router.GET("/settings", handlers.GetSettings)
	router.PATCH("/settings", handlers.UpdateSettings)
	router.GET("/jobs", handlers.ListJobs)
	router.GET("/update/check", handlers.CheckUpdate)
	router.GET("/news", handlers.GetNews)
	router.GET("/profiles-export", handlers.ExportProfiles)
	router.POST("/profiles-import", handlers.ImportProfiles)

	logger.Info("Server initialized")

	return &Server{
		router:   router,
		launcher: lm,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Handler exposes the routing tree so tests can drive the daemon
// in-process.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close shuts the launcher down: windows closed with geometry saved, and
// the pending-delete queue drained one last time.
func (s *Server) Close() error {
	s.logger.Info("Shutting down")
	s.launcher.Shutdown(context.Background())
	s.logger.Sync()
	return nil
}
