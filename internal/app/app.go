package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/modxel/internal/connector"
	"github.com/GriffinCanCode/modxel/internal/domain/binding"
	"github.com/GriffinCanCode/modxel/internal/domain/workflow"
	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/editor/workspace"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/config"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/modxel/internal/service"
	"github.com/GriffinCanCode/modxel/internal/shared/paths"
	"github.com/GriffinCanCode/modxel/internal/store"
)

// Frontend is the terminal side of the application: it answers prompts
// and shows messages
type Frontend interface {
	editor.Interactor
	workspace.MessageSink
}

// App wires every component from configuration
type App struct {
	config    *config.Config
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	store     *store.Store
	client    *connector.Client
	workspace *workspace.Workspace
	bindings  *binding.Registry
	service   *service.Service
}

// New builds the application. The caller must Close it to flush state.
func New(cfg *config.Config, frontend Frontend) (*App, error) {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	metrics := monitoring.NewMetrics()
	tracer := tracing.New(logger)

	settings, err := store.Open(cfg.Store.SettingsPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("settings loaded", zap.String("path", settings.Path()))

	client := connector.New(settings, connector.Options{
		ConnectorPath:     cfg.Server.ConnectorPath,
		LoginPath:         cfg.Server.LoginPath,
		SessionCookie:     cfg.Server.SessionCookie,
		UserAgent:         cfg.Server.UserAgent,
		Timeout:           cfg.Server.Timeout.Duration,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		BreakerFailures:   cfg.Server.BreakerFailures,
		BreakerCooldown:   cfg.Server.BreakerCooldown.Duration,
	}, logger, metrics).WithTracer(tracer)

	ws, err := workspace.Open(workspace.Options{
		StateDir: cfg.Workspace.StateDir,
		Messages: frontend,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	if err := paths.EnsureDir(cfg.Workspace.ScratchDir); err != nil {
		return nil, err
	}
	bindings := binding.NewRegistry(ws, settings, cfg.Workspace.ScratchDir, logger, metrics)

	deps := workflow.Deps{
		API:      client,
		Store:    settings,
		Registry: bindings,
		Editor:   ws,
		Logger:   logger,
		Metrics:  metrics,
	}
	runner := workflow.NewRunner(ws, frontend, logger, metrics).WithTracer(tracer)
	svc, err := service.New(deps, runner)
	if err != nil {
		return nil, err
	}

	return &App{
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
		store:     settings,
		client:    client,
		workspace: ws,
		bindings:  bindings,
		service:   svc,
	}, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	base := logging.DefaultConfig()
	if cfg.Development {
		base = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		base.Level = cfg.Level
	}
	return logging.New(base)
}

// Service returns the command service
func (a *App) Service() *service.Service { return a.service }

// Workspace returns the file-backed editor
func (a *App) Workspace() *workspace.Workspace { return a.workspace }

// Bindings returns the buffer binding registry
func (a *App) Bindings() *binding.Registry { return a.bindings }

// Store returns the settings store
func (a *App) Store() *store.Store { return a.store }

// Logger returns the application logger
func (a *App) Logger() *logging.Logger { return a.logger }

// Metrics returns the application metrics
func (a *App) Metrics() *monitoring.Metrics { return a.metrics }

// Close flushes the workspace state and the metrics textfile
func (a *App) Close() error {
	var errs []error
	if err := a.workspace.Flush(); err != nil {
		errs = append(errs, err)
	}
	if path := a.config.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("shutdown failed", zap.Error(err))
		return err
	}
	_ = a.logger.Sync()
	return nil
}
