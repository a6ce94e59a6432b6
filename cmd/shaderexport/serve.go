package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-shader-export/adapters/exportapi"
	exporthttp "github.com/goliatone/go-shader-export/adapters/http"
	exportrouter "github.com/goliatone/go-shader-export/adapters/router"
	"github.com/goliatone/go-shader-export/sources"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd serves the gallery page, JSON API, and downloads.
type ServeCmd struct {
	Engine string `default:"fiber" enum:"fiber,http" help:"HTTP engine: fiber or http."`
	Addr   string `help:"Listen address. Defaults to server.host:server.port."`
}

func (c *ServeCmd) Run(ctx context.Context, app *App) error {
	addr := c.Addr
	if addr == "" {
		addr = app.Config.Server.Addr()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := app.apiConfig()
	app.Logger.Infof("starting %s server on http://%s%s", c.Engine, addr, cfg.BasePath)
	if c.Engine == "http" {
		return serveHTTP(ctx, app, cfg, addr)
	}
	return serveFiber(ctx, app, cfg, addr)
}

func (a *App) apiConfig() exportapi.Config {
	basePath := strings.TrimRight(a.Config.Server.BasePath, "/")
	if basePath == "" {
		basePath = exportapi.DefaultBasePath
	}
	return exportapi.Config{
		Service:      a.Service,
		BasePath:     basePath,
		Title:        a.Config.Server.Title,
		Logger:       a.Logger,
		MaxBodyBytes: a.Config.Server.MaxBodyBytes,
	}
}

func (a *App) sourcesFS() fs.FS {
	if a.Config.Catalog.ShaderDir != "" {
		return os.DirFS(a.Config.Catalog.ShaderDir)
	}
	return sources.EmbeddedFS()
}

func sourcesPath(cfg exportapi.Config) string {
	return cfg.BasePath + "/sources/"
}

// NewFiberServer builds the go-router fiber server with the gallery routes.
func NewFiberServer(app *App, cfg exportapi.Config) router.Server[*fiber.App] {
	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		fiberApp := fiber.New(fiber.Config{
			AppName:               "Shader Export",
			BodyLimit:             int(cfg.MaxBodyBytes),
			DisableStartupMessage: true,
		})
		fiberApp.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
			Output: app.Out,
		}))
		fiberApp.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,HEAD,POST,OPTIONS",
			AllowHeaders: "Content-Type",
		}))
		return fiberApp
	})

	r := srv.Router()
	r.Static(sourcesPath(cfg), "", router.Static{FS: app.sourcesFS()})
	exportrouter.NewHandler(cfg).RegisterRoutes(r)
	return srv
}

func serveFiber(ctx context.Context, app *App, cfg exportapi.Config, addr string) error {
	srv := NewFiberServer(app, cfg)
	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(addr)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	app.Logger.Infof("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewHTTPMux builds a net/http mux with the gallery routes.
func NewHTTPMux(app *App, cfg exportapi.Config) *http.ServeMux {
	mux := http.NewServeMux()
	exporthttp.NewHandler(cfg).RegisterRoutes(mux)
	prefix := sourcesPath(cfg)
	mux.Handle(prefix, exporthttp.SourcesHandler(prefix, app.sourcesFS()))
	return mux
}

func serveHTTP(ctx context.Context, app *App, cfg exportapi.Config, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           NewHTTPMux(app, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.Logger.Infof("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
