package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/archive"
	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/localsession"
	"github.com/specialistvlad/nativeapk/internal/session"
)

// App owns the loaded configuration and the collaborators of one run.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	model    *config.Model
	locker   *archive.Locker
	sessions session.SessionFactory
}

// NewApp configures logging, loads and validates the configuration file.
// A nil loader selects one by the file's extension.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		var err error
		if loader, err = LoaderFor(cfg.ConfigPath); err != nil {
			return nil, err
		}
	}

	model, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, apkerr.Config("load config", err)
	}
	if err := config.Validate(model); err != nil {
		return nil, apkerr.Config("load config", err)
	}
	logger.Debug("Configuration loaded.", "path", cfg.ConfigPath, "app", model.App.AppName, "targets", model.Targets)

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		model:    model,
		locker:   archive.NewLocker(),
		sessions: &localsession.SessionFactory{},
	}, nil
}

// Model returns the loaded configuration.
func (a *App) Model() *config.Model {
	return a.model
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
