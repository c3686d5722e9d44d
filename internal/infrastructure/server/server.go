package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/VMConsole/internal/api/http"
	"github.com/GriffinCanCode/VMConsole/internal/api/middleware"
	"github.com/GriffinCanCode/VMConsole/internal/api/ws"
	"github.com/GriffinCanCode/VMConsole/internal/domain/catalog"
	"github.com/GriffinCanCode/VMConsole/internal/domain/skin"
	"github.com/GriffinCanCode/VMConsole/internal/domain/vm"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/config"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/logging"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/VMConsole/internal/providers/sessionapi"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	handler    http.Handler
	httpServer *http.Server
	controller *vm.Controller
	hub        *ws.Hub
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing VM console server",
		zap.String("addr", cfg.Addr()),
		zap.String("mode", cfg.VM.Mode),
		zap.String("default_os", cfg.VM.DefaultOS),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("vmconsole", logger.Component("trace").Logger)

	cat := catalog.Default()
	if cfg.VM.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.VM.CatalogPath)
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to load OS catalog: %w", err)
		}
		cat = loaded
		logger.Info("Loaded OS catalog", zap.String("path", cfg.VM.CatalogPath), zap.Int("systems", cat.Len()))
	}

	backend := newBackend(cfg, logger, metrics, tracer)

	controller, err := vm.NewController(cat, backend, skin.NewRenderer(cfg.VM.AllowDownloads), vm.Options{
		Mode:          cfg.VM.Mode,
		DefaultOS:     cfg.VM.DefaultOS,
		InitialURL:    cfg.VM.InitialURL,
		StatsInterval: cfg.VM.StatsInterval,
		StatsHistory:  cfg.VM.StatsHistory,
	})
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	hub := ws.NewHub(logger.Component("ws")).WithMetrics(metrics)
	controller.WithLogger(logger.Component("vm")).WithMetrics(metrics).WithPublisher(hub)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins...))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	handlers := apihttp.NewHandlers(controller, metrics, logger, hub).WithSandbox(skin.Sandbox(cfg.VM.AllowDownloads))
	handlers.Register(router)

	wsHandler := ws.NewHandler(hub, controller)
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	handler, err := middleware.Compress(router)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to set up compression: %w", err)
	}

	logger.Info("Server initialized successfully")

	return &Server{
		handler: handler,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		controller: controller,
		hub:        hub,
		tracer:     tracer,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

func newBackend(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) vm.Backend {
	if cfg.VM.Mode != config.ModeRemote {
		return vm.NewLocalBackend()
	}

	client := sessionapi.New(sessionapi.Options{
		BaseURL: cfg.SessionAPI.BaseURL,
		Token:   cfg.SessionAPI.Token,
		Browser: cfg.SessionAPI.Browser,
		Timeout: cfg.SessionAPI.Timeout,
		Retries: cfg.SessionAPI.Retries,
		RPS:     cfg.SessionAPI.RPS,
		Logger:  logger.Component("sessionapi"),
		Metrics: metrics,
		Tracer:  tracer,
	})
	logger.Info("Using remote session service",
		zap.String("base_url", cfg.SessionAPI.BaseURL),
		zap.Bool("has_token", client.HasToken()),
	)
	return client
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Controller returns the VM controller.
func (s *Server) Controller() *vm.Controller {
	return s.controller
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to stop HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}

	// Ends any live session so remote ones are not leaked.
	if err := s.controller.Shutdown(ctx); err != nil {
		s.logger.Warn("VM shutdown reported an error", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to shut down vm: %w", err))
	}

	s.hub.Close()
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
