package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/webtop/internal/api/http"
	"github.com/GriffinCanCode/webtop/internal/api/middleware"
	"github.com/GriffinCanCode/webtop/internal/api/ws"
	"github.com/GriffinCanCode/webtop/internal/domain/catalog"
	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/GriffinCanCode/webtop/internal/domain/weather"
	"github.com/GriffinCanCode/webtop/internal/domain/windows"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/config"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/persistence"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/GriffinCanCode/webtop/internal/shared/utils"
)

const rehydrateTimeout = 5 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	desktop *desktop.Desktop
	weather *weather.Service
	hub     *ws.Hub
	router  *gin.Engine

	store   *persistence.FileStore
	mirrors []persistence.Syncer

	unsubscribe func()
	closeOnce   sync.Once
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing webtop server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Bool("persistence", cfg.Persistence.Enabled),
		zap.Bool("weather", cfg.Weather.APIKey != ""),
	)

	// Metrics first, the desktop reports events to it
	metrics := monitoring.NewMetrics()

	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		tracer:  tracing.New("webtop", logger.Logger),
		desktop: desktop.New(desktopOptions(cfg, logger.Logger, metrics)),
	}

	if cfg.Persistence.Enabled {
		if err := s.openPersistence(); err != nil {
			s.tracer.Close()
			logger.Close()
			return nil, err
		}
	}

	// Seeding only applies to an empty (not rehydrated) icon set
	s.desktop.Seed(catalog.Icons(s.loadCatalog()))

	s.unsubscribe = s.desktop.Subscribe(func(snap desktop.Snapshot) {
		recordCounts(metrics, snap.Windows, len(snap.Icons))
	})
	recordCounts(metrics, s.desktop.Windows().Windows(), s.desktop.Icons().Len())

	s.weather = weather.New(weatherConfig(cfg.Weather), logger.Logger)
	s.hub = ws.NewHub(s.desktop, metrics, logger.Logger, cfg.Server.AllowedOrigins)
	s.router = s.newRouter()

	logger.Info("Server initialized successfully")
	return s, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func desktopOptions(cfg *config.Config, logger *zap.Logger, observer desktop.Observer) desktop.Options {
	dc := cfg.Desktop
	opts := desktop.DefaultOptions()
	opts.Windows.BaseZIndex = dc.BaseZIndex
	opts.Windows.DefaultPosition = types.Point{X: dc.WindowX, Y: dc.WindowY}
	opts.Windows.DefaultSize = types.Size{Width: dc.WindowWidth, Height: dc.WindowHeight}
	opts.Reserved = dc.Reserved
	opts.Viewport = types.Viewport{Width: dc.ViewportWidth, Height: dc.ViewportHeight}
	opts.MinWindowSize = types.Size{Width: dc.MinWidth, Height: dc.MinHeight}
	opts.Logger = logger
	opts.Observer = observer
	return opts
}

func weatherConfig(wc config.WeatherConfig) weather.Config {
	cfg := weather.DefaultConfig()
	cfg.APIKey = wc.APIKey
	if wc.BaseURL != "" {
		cfg.BaseURL = wc.BaseURL
	}
	if wc.Timeout > 0 {
		cfg.Timeout = wc.Timeout
	}
	if wc.RefreshInterval > 0 {
		cfg.RefreshInterval = wc.RefreshInterval
	}
	cfg.RetryMax = wc.RetryMax
	if wc.CacheSize > 0 {
		cfg.CacheSize = wc.CacheSize
	}
	return cfg
}

// loadCatalog falls back to the built-in icons when no catalog is configured
// or it cannot be read
func (s *Server) loadCatalog() []catalog.Entry {
	path := s.config.Desktop.CatalogPath
	if path == "" {
		return catalog.Default()
	}
	entries, err := catalog.NewLoader(s.logger.Logger).Load(path)
	if err != nil {
		s.logger.Warn("Failed to load icon catalog, using defaults",
			zap.String("path", path), zap.Error(err))
		return catalog.Default()
	}
	if len(entries) == 0 {
		s.logger.Warn("Icon catalog is empty, using defaults", zap.String("path", path))
		return catalog.Default()
	}
	return entries
}

// openPersistence rehydrates the three stores and prepares their mirrors
func (s *Server) openPersistence() error {
	pc := s.config.Persistence
	store, err := persistence.NewFileStore(pc.Dir, pc.Compress)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	s.store = store

	opts := persistence.MirrorOptions{
		Debounce: pc.Debounce,
		Logger:   s.logger.Logger,
		OnWrite:  s.metrics.RecordStateWrite,
	}
	s.mirrors = []persistence.Syncer{
		persistence.NewMirror(store, iconsBinding(s.desktop), opts),
		persistence.NewMirror(store, windowsBinding(s.desktop), opts),
		persistence.NewMirror(store, themeBinding(s.desktop), opts),
	}

	ctx, cancel := context.WithTimeout(context.Background(), rehydrateTimeout)
	defer cancel()
	for _, m := range s.mirrors {
		// A corrupt file must not keep the desktop from starting
		if _, err := m.Rehydrate(ctx); err != nil {
			s.logger.Warn("Failed to rehydrate state", zap.String("store", m.Name()), zap.Error(err))
		}
	}
	s.logger.Info("State persistence enabled",
		zap.String("dir", store.Dir()), zap.Bool("compress", pc.Compress))
	return nil
}

// recordCounts refreshes the window and icon gauges
func recordCounts(m *monitoring.Metrics, ws []windows.Window, iconCount int) {
	minimized := 0
	for _, w := range ws {
		if w.IsMinimized {
			minimized++
		}
	}
	m.SetDesktopCounts(len(ws), minimized, iconCount)
}

func (s *Server) newRouter() *gin.Engine {
	cfg := s.config
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(middleware.Logger(s.logger.Logger))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.BodyLimit(utils.MaxJSONSize))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...)))
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	apihttp.NewHandlers(s.desktop, s.weather, s.metrics, s.logger.Logger).Register(router)
	apihttp.NewAssets(cfg.Server.AssetsDir).Register(router, "/assets/icons")

	// WebSocket
	router.GET("/stream", s.hub.HandleConnection)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.GET("/metrics/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.metrics.GetSnapshot())
	})

	return router
}

// Handler returns the root handler, gzip-wrapped when enabled.
// WebSocket upgrades bypass compression.
func (s *Server) Handler() http.Handler {
	if !s.config.Server.Gzip {
		return s.router
	}
	gz := gzhttp.GzipHandler(s.router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Desktop exposes the desktop state machine
func (s *Server) Desktop() *desktop.Desktop {
	return s.desktop
}

// Run starts background workers and serves HTTP until ctx is done, then
// shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Background workers stop on cancel, so cancel must run before the wait
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, m := range s.mirrors {
		m.Start(ctx)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		s.metrics.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		s.weather.Run(ctx)
	}()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	// Hijacked WebSocket connections are not tracked by Shutdown
	s.hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close flushes persisted state and releases resources
func (s *Server) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		s.logger.Info("Shutting down server...")

		s.hub.Close()
		s.unsubscribe()

		for _, m := range s.mirrors {
			if err := m.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", m.Name(), err))
			}
			// Mirrors that never started still hold the latest state
			ctx, cancel := context.WithTimeout(context.Background(), rehydrateTimeout)
			if err := m.Flush(ctx); err != nil {
				errs = append(errs, fmt.Errorf("flush %s: %w", m.Name(), err))
			}
			cancel()
		}
		s.tracer.Close()
		if s.store != nil {
			if err := s.store.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		// Sync logger before exit
		if err := s.logger.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
