package exporthttp

import (
	"net/http"
	"time"

	"github.com/goliatone/go-shader-export/adapters/exportapi"
	"github.com/goliatone/go-shader-export/export"
)

// Config configures the HTTP adapter.
type Config = exportapi.Config

// Handler exposes gallery HTTP endpoints.
type Handler struct {
	controller *exportapi.Controller
	logger     export.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	return &Handler{controller: exportapi.NewController(cfg), logger: logger}
}

// RegisterRoutes registers handlers on a compatible router.
func (h *Handler) RegisterRoutes(router any) {
	switch r := router.(type) {
	case interface{ Handle(string, http.Handler) }:
		r.Handle(h.basePath(), h)
		r.Handle(h.basePath()+"/", h)
	case interface {
		HandleFunc(string, func(http.ResponseWriter, *http.Request))
	}:
		r.HandleFunc(h.basePath(), h.ServeHTTP)
		r.HandleFunc(h.basePath()+"/", h.ServeHTTP)
	}
}

// ServeHTTP routes gallery endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	res := &httpResponse{w: w}
	if h == nil || h.controller == nil {
		exportapi.WriteError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}

	start := time.Now()
	req := newHTTPRequest(r)
	h.controller.Serve(req, res)
	h.logger.Debugf("%s %s %d %dB %s", req.Method(), req.Path(), res.Status(), res.bytes, time.Since(start))
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return exportapi.DefaultBasePath
	}
	return h.controller.BasePath()
}
