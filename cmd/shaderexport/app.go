package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-command/dispatcher"
	catalogbun "github.com/goliatone/go-shader-export/adapters/catalog/bun"
	storefs "github.com/goliatone/go-shader-export/adapters/store/fs"
	"github.com/goliatone/go-shader-export/adapters/thumbnail"
	trackerbun "github.com/goliatone/go-shader-export/adapters/tracker/bun"
	"github.com/goliatone/go-shader-export/catalog"
	"github.com/goliatone/go-shader-export/command"
	"github.com/goliatone/go-shader-export/config"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
	"github.com/goliatone/go-shader-export/sources"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// App holds the application dependencies.
type App struct {
	Config   config.Config
	Logger   *ConsoleLogger
	Out      io.Writer
	Catalog  catalog.Catalog
	Loader   sources.Loader
	Exporter *export.Exporter
	Service  gallery.Service
	Store    *storefs.Store
	Tracker  *trackerbun.Tracker
	Preview  *thumbnail.ChromiumEngine

	db            *bun.DB
	subscriptions []dispatcher.Subscription
}

// NewApp creates and initializes the application.
func NewApp(ctx context.Context, cfg config.Config, logger *ConsoleLogger, out io.Writer) (*App, error) {
	app := &App{Config: cfg, Logger: logger, Out: out}

	cat, err := app.openCatalog(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Catalog = cat

	if cfg.Catalog.ShaderDir != "" {
		app.Loader = sources.NewFSLoader(os.DirFS(cfg.Catalog.ShaderDir))
	} else {
		app.Loader = sources.Embedded()
	}

	app.Store = storefs.NewStore(cfg.Export.OutputDir)

	exporter := export.NewExporter()
	exporter.DefaultFormat = export.Format(cfg.Export.DefaultFormat)
	exporter.UnknownFormat = cfg.Export.Policy()
	exporter.History = export.NewHistory(cfg.Export.HistoryLimit)
	exporter.Sink = app.Store
	exporter.Logger = logger
	if app.Tracker != nil {
		exporter.Emitter = app.Tracker
	}
	app.Exporter = exporter

	var previewer gallery.Previewer
	if cfg.Preview.Enabled {
		engine, err := newChromiumEngine(cfg.Preview)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Preview = engine
		previewer = thumbnail.NewCache(engine, cfg.Preview.CacheSize)
	}

	app.Service = gallery.NewService(gallery.Config{
		Catalog:   app.Catalog,
		Loader:    app.Loader,
		Exporter:  exporter,
		Previewer: previewer,
		Logger:    logger,
	})

	subscriptions, err := command.RegisterHandlers(nil, app.Service)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to register shader handlers: %w", err)
	}
	app.subscriptions = subscriptions
	return app, nil
}

// Close releases app resources.
func (a *App) Close() error {
	for _, sub := range a.subscriptions {
		sub.Unsubscribe()
	}
	a.subscriptions = nil
	if a.Preview != nil {
		_ = a.Preview.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) openCatalog(ctx context.Context) (catalog.Catalog, error) {
	records := catalog.Seed()
	if path := a.Config.Catalog.SeedFile; path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open seed file: %w", err)
		}
		defer file.Close()
		records, err = catalog.LoadYAML(file)
		if err != nil {
			return nil, err
		}
	}

	if a.Config.Catalog.Database == "" {
		mem, err := catalog.NewMemoryCatalog(records...)
		if err != nil {
			return nil, err
		}
		return mem, nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, a.Config.Catalog.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	a.db = bun.NewDB(sqldb, sqlitedialect.New())

	cat := catalogbun.NewCatalog(a.db)
	if err := cat.CreateSchema(ctx); err != nil {
		return nil, err
	}
	existing, err := cat.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		if err := cat.Seed(ctx, records); err != nil {
			return nil, err
		}
		a.Logger.Debugf("seeded catalog with %d shaders", len(records))
	}

	tracker := trackerbun.NewTracker(a.db)
	if err := tracker.CreateSchema(ctx); err != nil {
		return nil, err
	}
	a.Tracker = tracker
	return cat, nil
}

func newChromiumEngine(cfg config.PreviewConfig) (*thumbnail.ChromiumEngine, error) {
	engine := thumbnail.NewChromiumEngine(cfg.ChromiumPath, cfg.Args...)
	engine.Headless = cfg.Headless
	if cfg.Timeout > 0 {
		engine.Timeout = cfg.Timeout
	}
	if cfg.Settle > 0 {
		engine.Settle = cfg.Settle
	}
	if cfg.Viewport != "" {
		width, height, err := thumbnail.ParseViewport(cfg.Viewport)
		if err != nil {
			return nil, err
		}
		engine.Width, engine.Height = width, height
	}
	return engine, nil
}
