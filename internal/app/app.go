// Package app wires configuration, storage, the API client and the two
// controllers into one runnable client.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/matheuskafuri/articles/internal/api"
	"github.com/matheuskafuri/articles/internal/articles"
	"github.com/matheuskafuri/articles/internal/config"
	"github.com/matheuskafuri/articles/internal/logging"
	"github.com/matheuskafuri/articles/internal/session"
	"github.com/matheuskafuri/articles/internal/storage"
)

type Options struct {
	Config    *config.Config
	StorePath string    // defaults to config.StorePath()
	LogWriter io.Writer // nil discards logs
}

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *storage.Store
	Client   *api.Client
	Session  *session.Controller
	Articles *articles.Manager
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	storePath := opts.StorePath
	if storePath == "" {
		storePath = config.StorePath()
	}

	logger := logging.New(cfg.LogLevel, opts.LogWriter)

	store, err := storage.Open(storePath)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Store: store}
	a.Client = api.New(api.Options{
		BaseURL:    cfg.BaseURL(),
		AuthScheme: cfg.TokenScheme(),
		Timeout:    cfg.RequestTimeout(),
		Logger:     logging.Component(logger, "api"),
	}, a.token)
	a.Session = session.New(store, a.Client, logger)
	a.Articles = articles.New(a.Client, a.Session, logger)

	// A fresh login always brings the list in; its outcome lands in the
	// session message.
	a.Session.OnLogin(func(ctx context.Context) {
		_ = a.Articles.List(ctx)
	})

	logger.Info("client ready", slog.String("api", cfg.BaseURL()), slog.String("store", storePath))
	return a, nil
}

func (a *App) token() (string, bool) {
	return a.Session.Token()
}

func (a *App) Close() error {
	return a.Store.Close()
}
