package exportrouter

import (
	"net/http"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-shader-export/adapters/exportapi"
	"github.com/goliatone/go-shader-export/export"
)

// Config configures the go-router adapter.
type Config = exportapi.Config

// Route is one method and path pair served by the handler.
type Route struct {
	Method string
	Path   string
}

// Handler exposes gallery routes for go-router.
type Handler struct {
	controller *exportapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: exportapi.NewController(cfg)}
}

// Routes lists the routes RegisterRoutes installs.
func (h *Handler) Routes() []Route {
	base := h.basePath()
	return []Route{
		{Method: http.MethodGet, Path: base},
		{Method: http.MethodGet, Path: base + "/"},
		{Method: http.MethodGet, Path: base + "/formats"},
		{Method: http.MethodGet, Path: base + "/history"},
		{Method: http.MethodGet, Path: base + "/shaders"},
		{Method: http.MethodGet, Path: base + "/shaders/:id"},
		{Method: http.MethodGet, Path: base + "/shaders/:id/export"},
		{Method: http.MethodGet, Path: base + "/shaders/:id/preview"},
		{Method: http.MethodPost, Path: base + "/shaders/export"},
	}
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	for _, route := range h.Routes() {
		switch route.Method {
		case http.MethodPost:
			r.Post(route.Path, h.Handle)
		default:
			r.Get(route.Path, h.Handle)
		}
	}
}

// Handle executes the shared gallery controller.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	res := &routerResponse{ctx: c}
	if h == nil || h.controller == nil {
		exportapi.WriteError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(routerRequest{ctx: c}, res)
	return nil
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return exportapi.DefaultBasePath
	}
	return h.controller.BasePath()
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
