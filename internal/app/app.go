// Package app builds the client's context objects once and hands them to the
// router.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/config"
	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/localstore"
	"github.com/diya-thabet/hirfa/internal/log"
	"github.com/diya-thabet/hirfa/internal/pages"
	"github.com/diya-thabet/hirfa/internal/repository/memory"
	"github.com/diya-thabet/hirfa/internal/router"
	"github.com/diya-thabet/hirfa/internal/session"
)

type App struct {
	Config config.ClientConfig
	Log    zerolog.Logger
	Deps   pages.Deps
	Router *router.Router

	closers []io.Closer
}

type options struct {
	logOut  io.Writer
	storage localstore.Store
}

type Option func(*options)

// WithLogOutput sends diagnostics somewhere other than stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOut = w }
}

// WithStorage replaces the state file, e.g. with localstore.NewMemory().
func WithStorage(s localstore.Store) Option {
	return func(o *options) { o.storage = s }
}

func New(ctx context.Context, cfg config.ClientConfig, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{logOut: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger := log.New(cfg.Environment, log.WithWriter(o.logOut), log.WithLevel(cfg.LogLevel))
	a := &App{Config: cfg, Log: logger}

	storage := o.storage
	if storage == nil {
		db, err := localstore.OpenSQLite(cfg.StatePath)
		if err != nil {
			return nil, fmt.Errorf("open client state: %w", err)
		}
		a.closers = append(a.closers, db)
		storage = db
	}

	catalog, err := i18n.DefaultCatalog()
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load translations: %w", err)
	}
	translator := i18n.NewTranslator(ctx, catalog, storage, logger.With().Str("component", "i18n").Logger())

	backend, err := newBackend(ctx, cfg, storage, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	client := gateway.New(backend, nil, logger.With().Str("component", "gateway").Logger())
	sess := session.Open(ctx, client, storage, logger.With().Str("component", "session").Logger())
	client.SetTokenSource(sess)

	a.Deps = pages.Deps{API: client, Session: sess, T: translator, Log: logger}
	a.Router = router.New(a.Deps)
	return a, nil
}

// FixtureStateKey holds the offline backend's data next to the session, so
// accounts and jobs created in one run are there in the next.
const FixtureStateKey = "hirfa-fixture"

func newBackend(ctx context.Context, cfg config.ClientConfig, storage localstore.Store, logger zerolog.Logger) (gateway.Backend, error) {
	switch cfg.Backend {
	case config.BackendRemote:
		return gateway.NewHTTPBackend(cfg.APIBaseURL, cfg.RequestTimeout), nil
	case config.BackendFixture:
		flog := logger.With().Str("component", "fixture").Logger()
		st := loadFixture(ctx, storage, flog)
		return &savingBackend{
			Backend: gateway.NewFixture(flog, st),
			store:   st,
			storage: storage,
			log:     flog,
		}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// loadFixture restores saved fixture data, or seeds the demo marketplace when
// there is none or it does not decode.
func loadFixture(ctx context.Context, storage localstore.Store, log zerolog.Logger) *memory.Store {
	raw, ok, err := storage.Get(ctx, FixtureStateKey)
	if err == nil && ok {
		st := memory.New()
		if err = json.Unmarshal([]byte(raw), st); err == nil {
			return st
		}
	}
	if err != nil {
		log.Warn().Err(err).Msg("discarding saved fixture data")
	}
	st := memory.New()
	gateway.SeedDemo(st)
	return st
}

// savingBackend writes the fixture data back after every call that may have
// changed it.
type savingBackend struct {
	gateway.Backend
	store   *memory.Store
	storage localstore.Store
	log     zerolog.Logger
}

func (b *savingBackend) Do(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	resp, err := b.Backend.Do(ctx, req)
	if err != nil || req.Method == http.MethodGet {
		return resp, err
	}
	if err := b.save(ctx); err != nil {
		b.log.Warn().Err(err).Msg("fixture data not saved")
	}
	return resp, nil
}

func (b *savingBackend) save(ctx context.Context) error {
	raw, err := json.Marshal(b.store)
	if err != nil {
		return err
	}
	return b.storage.Set(ctx, FixtureStateKey, string(raw))
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
