package startup

import (
	"context"
	"errors"
	"sync"

	"github.com/Kzeezee/Pomodoko/internal/config"
	"github.com/Kzeezee/Pomodoko/internal/logger"
	"github.com/Kzeezee/Pomodoko/internal/prefs"
	"github.com/Kzeezee/Pomodoko/internal/store"
	"github.com/Kzeezee/Pomodoko/internal/store/sqlite"
)

// App holds the initialized stores. It is passed explicitly to whatever
// needs them.
type App struct {
	DB    *sqlite.SQLiteStore
	Prefs *prefs.Store
}

// Close releases the database. The preference document needs no teardown
// because every Set has already been flushed.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// Initializer runs the startup sequence at most once.
type Initializer struct {
	Config     *config.Config
	Log        logger.Logger
	Migrations store.Migrations
	Defaults   []prefs.Default

	once sync.Once
	app  *App
	err  error
}

// NewInitializer uses the application's migration and defaults tables.
func NewInitializer(cfg *config.Config, log logger.Logger) *Initializer {
	if log == nil {
		log = logger.Default
	}
	return &Initializer{
		Config:     cfg,
		Log:        log,
		Migrations: sqlite.Migrations(),
		Defaults:   prefs.Defaults(),
	}
}

// Init opens the database, applies migrations, loads the preference
// document and seeds missing defaults, in that order. Later calls return
// the result of the first.
func (in *Initializer) Init(ctx context.Context) (*App, error) {
	in.once.Do(func() {
		in.app, in.err = in.run(ctx)
	})
	return in.app, in.err
}

func (in *Initializer) run(ctx context.Context) (*App, error) {
	if in.Config == nil {
		return nil, errors.New("startup: no configuration")
	}
	app := &App{}
	db := sqlite.New(in.Config.DBPath(), in.Log)

	steps := []Step{
		{
			Name: "prepare data directory",
			Run: func(ctx context.Context) error {
				return store.EnsureDir(in.Config.DataDir)
			},
		},
		{
			Name: "open database",
			Run: func(ctx context.Context) error {
				if err := db.Open(ctx); err != nil {
					return err
				}
				app.DB = db
				return nil
			},
		},
		{
			Name: "migrate database",
			Run: func(ctx context.Context) error {
				n, err := db.Migrate(ctx, in.Migrations)
				if n > 0 {
					in.Log.Info("applied %d migration(s)", n)
				}
				return err
			},
		},
		{
			Name: "load preferences",
			Run: func(ctx context.Context) error {
				p, err := prefs.Load(in.Config.PreferencesPath())
				if err != nil {
					return err
				}
				app.Prefs = p
				return nil
			},
		},
		{
			Name: "seed default preferences",
			Run: func(ctx context.Context) error {
				seeded, err := prefs.Seed(app.Prefs, in.Defaults)
				for _, k := range seeded {
					in.Log.Info("seeded default preference %s", k)
				}
				return err
			},
		},
	}

	if err := Run(ctx, in.Log, steps...); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}
