// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/stickies/internal/api"
	"github.com/starford/stickies/internal/listing"
	"github.com/starford/stickies/internal/mcpserver"
	"github.com/starford/stickies/internal/notes"
	"github.com/starford/stickies/internal/persist"
	"github.com/starford/stickies/internal/prefs"
	"github.com/starford/stickies/internal/registry"
	"github.com/starford/stickies/internal/session"
	"github.com/starford/stickies/internal/shell"
	"github.com/starford/stickies/internal/sse"
	"github.com/starford/stickies/internal/statestore"
	"github.com/starford/stickies/internal/storage"
	"github.com/starford/stickies/internal/watch"
	"github.com/starford/stickies/internal/window"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_dir", cfg.Notes.Dir),
		slog.String("state_dir", cfg.State.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := build(cfg, app.toolkit, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: svc.routes(cfg),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	// Reopen the last session once something can show windows.
	g.Go(func() error {
		if svc.shell != nil {
			if err := waitForClient(gCtx, svc.broker, sse.TargetShell); err != nil {
				return nil
			}
		}
		svc.restore(gCtx)
		return nil
	})

	if cfg.Notes.Watch {
		g.Go(func() error {
			return watch.Watch(gCtx, svc.repo.Dir(), watch.DefaultDebounce, logger, svc.bridge.Refresh,
				watch.IgnoreIf(svc.repo.WroteRecently))
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		// The session is saved before windows start going away.
		svc.session.Finalize()
		// Ends open event streams so Shutdown does not wait on them.
		svc.broker.Close()

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		stop()
		return nil
	})

	err = g.Wait()
	svc.close()
	if err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// services is the wired application.
type services struct {
	logger   *slog.Logger
	repo     *notes.Repository
	queue    *persist.Queue
	db       *prefs.Store
	settings *prefs.Service
	broker   *sse.Broker
	bridge   *listing.Bridge
	shell    *shell.Toolkit // nil when an in-process toolkit is used
	session  *session.Manager
	ctrl     *window.Controller
	mcp      *mcpserver.Server
	stateDir string
}

func build(cfg *Config, tk window.Toolkit, logger *slog.Logger) (*services, error) {
	for _, dir := range []string{cfg.Notes.Dir, cfg.State.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	store, err := storage.NewFS(cfg.Notes.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := prefs.Open(filepath.Join(cfg.State.Dir, prefs.DBFile))
	if err != nil {
		return nil, fmt.Errorf("init preferences: %w", err)
	}

	s := &services{
		logger:   logger,
		repo:     notes.NewRepository(store, notes.WithInstallRoot(cfg.Install.Root()), notes.WithLogger(logger)),
		queue:    persist.NewQueue(persist.LogSink{Logger: logger}),
		db:       db,
		broker:   sse.NewBroker(),
		stateDir: cfg.State.Dir,
	}

	s.settings = prefs.NewService(db, s.broker, prefs.Limits{
		Default: cfg.Preferences.FontSizeDefault,
		Min:     cfg.Preferences.FontSizeMin,
		Max:     cfg.Preferences.FontSizeMax,
	}, cfg.Preferences.Theme, logger)
	if err := s.settings.EnsureDefaults(); err != nil {
		logger.Warn("preferences: defaults not written", slog.String("error", err.Error()))
	}

	s.bridge = listing.NewBridge(s.repo, s.broker, logger)

	if tk == nil {
		s.shell = shell.New(s.broker)
		tk = s.shell
	}

	reg := registry.New[window.Handle](nil)
	sessions := statestore.NewSessionStore(filepath.Join(cfg.State.Dir, statestore.SessionFile), logger)
	s.session = session.NewManager(reg, sessions, s.queue, logger)
	reg.SetOnChange(s.session.SnapshotNow)

	s.ctrl = window.New(window.Params{
		Toolkit:       tk,
		Registry:      reg,
		Notes:         s.repo,
		Geometry:      statestore.NewGeometryStore(filepath.Join(cfg.State.Dir, statestore.GeometryFile), logger),
		Queue:         s.queue,
		List:          s.bridge,
		Logger:        logger,
		DefaultWidth:  cfg.Window.DefaultWidth,
		DefaultHeight: cfg.Window.DefaultHeight,
		CascadeOffset: cfg.Window.CascadeOffset,
	})
	if a, ok := tk.(interface{ Attach(func(window.Event)) }); ok {
		a.Attach(s.ctrl.Notify)
	}

	s.mcp = mcpserver.New(mcpserver.Deps{
		Windows: s.ctrl,
		Notes:   s.repo,
		List:    s.bridge,
		Themes:  s.settings,
		Logger:  logger,
	})

	return s, nil
}

func (s *services) routes(cfg *Config) http.Handler {
	var observer api.Observer
	if s.shell != nil {
		observer = s.shell
	}
	apiRouter := api.NewRouter(api.Deps{
		Windows:     s.ctrl,
		Notes:       s.repo,
		List:        s.bridge,
		Prefs:       s.settings,
		Shell:       observer,
		Events:      s.broker,
		UserDataDir: s.stateDir,
		Logger:      s.logger,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s.shell != nil && s.broker.ClientCount(sse.TargetShell) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"waiting for shell"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// MCP streamable HTTP transport, behind the same auth as the API.
	r.With(api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token)).Handle("/mcp", s.mcp.Handler())

	return r
}

// restore reopens the last session, or shows the list when nothing was
// reopened.
func (s *services) restore(ctx context.Context) {
	n, err := s.session.Restore(ctx, s.ctrl)
	if err != nil && ctx.Err() != nil {
		return
	}
	if n > 0 {
		return
	}
	if err := s.ctrl.ShowList(ctx); err != nil {
		s.logger.Warn("window: show list failed", slog.String("error", err.Error()))
	}
}

// close stops every component, saving the session first.
func (s *services) close() {
	s.session.Finalize()
	s.ctrl.Close()
	s.queue.Close()
	s.broker.Close()
	if err := s.db.Close(); err != nil {
		s.logger.Warn("preferences: close failed", slog.String("error", err.Error()))
	}
}

// waitForClient blocks until a client listens on target.
func waitForClient(ctx context.Context, broker *sse.Broker, target string) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for broker.ClientCount(target) == 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
