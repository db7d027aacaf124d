// Package app assembles the collaborators shared by the console binaries
// from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/apiclient"
	"github.com/rgpvpanel/console/internal/config"
	"github.com/rgpvpanel/console/internal/console"
	"github.com/rgpvpanel/console/internal/logging"
	"github.com/rgpvpanel/console/internal/s3storage"
	"github.com/rgpvpanel/console/internal/session"
)

// App holds the long-lived dependencies of one console process.
type App struct {
	Config     *config.Config
	Log        *zap.Logger
	Client     *apiclient.Client
	Session    *session.Session
	ReadPolicy console.ReadPolicy
}

// New builds the logger, API client and session store described by cfg.
func New(cfg *config.Config) (*App, error) {
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	policy, err := console.ParseReadPolicy(cfg.ReadErrors)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	return &App{
		Config:     cfg,
		Log:        log,
		Client:     apiclient.New(cfg.APIBaseURL, httpClient, log.Named("api")),
		Session:    session.New(session.NewFileStore(cfg.SessionFile)),
		ReadPolicy: policy,
	}, nil
}

// Env returns the console environment reporting to notifier.
func (a *App) Env(notifier console.Notifier) console.Env {
	return console.Env{
		API:        a.Client,
		Session:    a.Session,
		Notifier:   notifier,
		Log:        a.Log,
		ReadPolicy: a.ReadPolicy,
	}
}

// Storage connects to object storage. It returns nil without error when
// uploads are not configured.
func (a *App) Storage(ctx context.Context) (*s3storage.Storage, error) {
	if !a.Config.UploadsEnabled() {
		return nil, nil
	}
	store, err := s3storage.New(a.Config)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("prepare upload bucket: %w", err)
	}
	return store, nil
}

// Close flushes buffered log entries.
func (a *App) Close() {
	_ = a.Log.Sync()
}
