package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"snaplog-go/internal/backup"
	"snaplog-go/internal/config"
	"snaplog-go/internal/core"
	"snaplog-go/internal/database"
	"snaplog-go/internal/fs"
	"snaplog-go/internal/httpapi"
)

// App is the application layer between the CLI and the core Service.
// It constructs all dependencies from config and manages their lifecycle on
// Close.
type App struct {
	cfg       *config.Config
	store     *database.SQLiteStore
	workspace *fs.OSWorkspace
	service   *core.Service
	logger    core.Logger
	logFile   *os.File
}

// New creates a fully wired App from the given config. operation identifies
// the CLI command being run (e.g. "Serve", "CascadeRevert") and tags every
// log line this invocation writes. The caller must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	if cfg.ProjectDir == "" {
		return nil, fmt.Errorf("project_dir is not configured")
	}

	workspace, err := fs.NewOSWorkspace(cfg.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	backups, err := backup.NewStoreFromConfig(cfg.Backups)
	if err != nil {
		return nil, fmt.Errorf("creating backup store: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	svc := core.NewService(store, backups, store, workspace, logger, core.RealClock{}, core.HexIDGenerator{})

	return &App{
		cfg:       cfg,
		store:     store,
		workspace: workspace,
		service:   svc,
		logger:    logger,
		logFile:   logFile,
	}, nil
}

// Service returns the wired core service.
func (a *App) Service() *core.Service { return a.service }

// Workspace returns the project workspace.
func (a *App) Workspace() *fs.OSWorkspace { return a.workspace }

// Logger returns the application logger.
func (a *App) Logger() core.Logger { return a.logger }

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func (a *App) Serve(ctx context.Context) error {
	server := httpapi.NewServer(a.cfg.Server.Addr, a.service, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}

// Close releases the database and log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = err
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
