// Package commands implements the propctl command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"propmanager/internal/amqp"
	"propmanager/internal/backend"
	"propmanager/internal/cli"
	"propmanager/internal/config"
	"propmanager/internal/credentials"
	"propmanager/internal/gateway"
	"propmanager/internal/log"
	"propmanager/internal/services"
	"propmanager/internal/store"
	"propmanager/internal/worker"
)

var errNotLoggedIn = errors.New("not logged in: run 'propctl login' first")

// EventBus publishes this client's writes and delivers everyone's.
type EventBus interface {
	services.Publisher
	worker.Consumer
	Close() error
}

// Deps are the collaborators an App is assembled from.
type Deps struct {
	Config  *config.Config
	Logger  *log.Logger
	Session *credentials.Session
	Gateway gateway.Gateway
	// Events is optional; nil disables change events.
	Events EventBus
	// RequireAuth makes data commands refuse to run without a session.
	RequireAuth bool
	Now         func() time.Time
}

// App holds everything a command needs.
type App struct {
	Config      *config.Config
	Logger      *log.Logger
	Session     *credentials.Session
	Gateway     gateway.Gateway
	Store       *store.Store
	Coordinator *services.Coordinator
	Auth        *services.AuthService
	Events      EventBus
	// Origin tags this process's change events so it can skip its own.
	Origin      string
	RequireAuth bool
	Now         func() time.Time

	closers []func() error
}

// NewApp wires the store, the mutation coordinator and the auth service
// around the gateway.
func NewApp(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	cfg := d.Config
	if cfg == nil {
		cfg = config.Load()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}

	app := &App{
		Config:      cfg,
		Logger:      logger,
		Session:     d.Session,
		Gateway:     d.Gateway,
		Events:      d.Events,
		Origin:      uuid.NewString(),
		RequireAuth: d.RequireAuth,
		Now:         now,
	}
	app.Store = store.New(d.Gateway, store.WithLogger(logger.WithComponent(log.ComponentStore).Logger))

	opts := []services.CoordinatorOption{
		services.WithLogger(logger.WithComponent(log.ComponentMutation).Logger),
	}
	if d.Events != nil {
		opts = append(opts, services.WithPublisher(d.Events, app.Origin))
		app.closers = append(app.closers, d.Events.Close)
	}
	app.Coordinator = services.NewCoordinator(d.Gateway, app.Store, opts...)
	app.Auth = services.NewAuthService(d.Gateway, d.Session)
	return app
}

// Bootstrap builds an App from the environment: .env, config, the
// credential store, the data backend and, when configured, AMQP.
func Bootstrap(ctx context.Context) (*App, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(log.ComponentApp, cfg.LogLevel, os.Stderr)

	credStore, closeCreds, err := cli.OpenCredentialStore(cfg)
	if err != nil {
		return nil, err
	}
	session, err := credentials.NewSession(ctx, credStore)
	if err != nil {
		_ = closeCreds()
		return nil, fmt.Errorf("load session: %w", err)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		_ = closeCreds()
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg, session)
	if err != nil {
		_ = closeCreds()
		return nil, err
	}

	var events EventBus
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			logger.Debug("Initialized AMQP client", "exchange", cfg.AMQPExchange)
			events = client
		}
	}

	app := NewApp(Deps{
		Config:      cfg,
		Logger:      logger,
		Session:     session,
		Gateway:     res.Gateway,
		Events:      events,
		RequireAuth: bcfg.Type == backend.HTTPBackend,
	})
	if res.Cleanup != nil {
		app.closers = append(app.closers, res.Cleanup)
	}
	app.closers = append(app.closers, closeCreds)
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) requireLogin() error {
	if a.RequireAuth && !a.Auth.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// load refreshes the store for a one-shot read.
func (a *App) load(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	return a.Store.Refresh(ctx)
}
