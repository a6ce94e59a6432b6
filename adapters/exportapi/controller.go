package exportapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	pagetemplate "github.com/goliatone/go-shader-export/adapters/template"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
)

// DefaultBasePath is the mount point used when Config.BasePath is empty.
const DefaultBasePath = "/gallery"

// DefaultMaxBufferBytes bounds the downloads buffered for one response.
const DefaultMaxBufferBytes int64 = 8 * 1024 * 1024

// PageRenderer renders the gallery HTML page.
type PageRenderer interface {
	Render(ctx context.Context, w io.Writer, data pagetemplate.PageData) (int64, error)
}

// Config configures the shared gallery controller.
type Config struct {
	Service        gallery.Service
	Pages          PageRenderer
	BasePath       string
	Title          string
	Logger         export.Logger
	MaxBodyBytes   int64
	MaxBufferBytes int64
}

// Controller exposes gallery handlers for multiple transports.
type Controller struct {
	service        gallery.Service
	pages          PageRenderer
	basePath       string
	title          string
	logger         export.Logger
	maxBodyBytes   int64
	maxBufferBytes int64

	pagesOnce sync.Once
	pagesErr  error
}

// ListResponse is the payload of the shader list endpoint.
type ListResponse struct {
	Tag     string   `json:"tag,omitempty"`
	Shaders any      `json:"shaders"`
	Tags    []string `json:"tags"`
}

// NewController creates a shared gallery controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	maxBuffer := cfg.MaxBufferBytes
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferBytes
	}
	return &Controller{
		service:        cfg.Service,
		pages:          cfg.Pages,
		basePath:       basePath,
		title:          cfg.Title,
		logger:         logger,
		maxBodyBytes:   maxBody,
		maxBufferBytes: maxBuffer,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes gallery endpoints using the shared controller.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, export.NewError(export.KindInternal, "request is nil", nil))
		return
	}
	if c.service == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "gallery service not configured", nil))
		return
	}
	if !strings.HasPrefix(req.Path(), c.basePath) {
		writeNotFound(res)
		return
	}

	pathSuffix := strings.TrimPrefix(req.Path(), c.basePath)
	if pathSuffix != "" && !strings.HasPrefix(pathSuffix, "/") {
		writeNotFound(res)
		return
	}
	pathSuffix = strings.Trim(pathSuffix, "/")
	parts := []string{}
	if pathSuffix != "" {
		parts = strings.Split(pathSuffix, "/")
	}

	switch req.Method() {
	case http.MethodPost:
		if len(parts) == 2 && parts[0] == "shaders" && parts[1] == "export" {
			c.HandleExportPayload(req, res)
			return
		}
		writeNotFound(res)
	case http.MethodGet, http.MethodHead:
		c.serveGet(req, res, parts)
	default:
		writeNotFound(res)
	}
}

func (c *Controller) serveGet(req Request, res Response, parts []string) {
	switch len(parts) {
	case 0:
		c.HandlePage(req, res)
		return
	case 1:
		switch parts[0] {
		case "formats":
			c.HandleFormats(req, res)
			return
		case "history":
			c.HandleHistory(req, res)
			return
		case "shaders":
			c.HandleList(req, res)
			return
		}
	case 2:
		if parts[0] == "shaders" {
			c.HandleShader(req, res, unescape(parts[1]))
			return
		}
	case 3:
		if parts[0] != "shaders" {
			break
		}
		switch parts[2] {
		case "export":
			c.HandleExport(req, res, unescape(parts[1]))
			return
		case "preview":
			c.HandlePreview(req, res, unescape(parts[1]))
			return
		}
	}
	writeNotFound(res)
}

// HandlePage renders the gallery page, optionally filtered by ?tag=.
func (c *Controller) HandlePage(req Request, res Response) {
	pages, err := c.pageRenderer()
	if err != nil {
		WriteError(res, err)
		return
	}

	ctx := req.Context()
	tag := strings.TrimSpace(req.Query("tag"))
	shaders, err := c.service.List(ctx, tag)
	if err != nil {
		WriteError(res, err)
		return
	}
	tags, err := c.service.Tags(ctx)
	if err != nil {
		WriteError(res, err)
		return
	}

	var buf bytes.Buffer
	if _, err := pages.Render(ctx, &buf, pagetemplate.PageData{
		Title:    c.title,
		BasePath: c.basePath,
		Tag:      tag,
		Shaders:  shaders,
		Tags:     tags,
		Formats:  c.service.Formats(),
	}); err != nil {
		c.logger.Errorf("render gallery page: %v", err)
		WriteError(res, err)
		return
	}

	res.SetHeader("Content-Type", "text/html; charset=utf-8")
	res.SetHeader("Content-Length", strconv.Itoa(buf.Len()))
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write(buf.Bytes())
}

// HandleFormats lists the export formats.
func (c *Controller) HandleFormats(req Request, res Response) {
	_ = req
	writeJSON(res, http.StatusOK, c.service.Formats())
}

// HandleHistory lists recent exports, optionally filtered by ?format=.
func (c *Controller) HandleHistory(req Request, res Response) {
	history := c.service.History(export.Format(req.Query("format")))
	if history == nil {
		history = []export.ExportResult{}
	}
	writeJSON(res, http.StatusOK, history)
}

// HandleList lists catalog shaders, optionally filtered by ?tag=.
func (c *Controller) HandleList(req Request, res Response) {
	ctx := req.Context()
	tag := strings.TrimSpace(req.Query("tag"))
	shaders, err := c.service.List(ctx, tag)
	if err != nil {
		WriteError(res, err)
		return
	}
	tags, err := c.service.Tags(ctx)
	if err != nil {
		WriteError(res, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(res, http.StatusOK, ListResponse{Tag: tag, Shaders: shaders, Tags: tags})
}

// HandleShader returns one shader with its sources.
func (c *Controller) HandleShader(req Request, res Response, id string) {
	shader, err := c.service.Get(req.Context(), id)
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, shader)
}

// HandleExport downloads a catalog shader in the ?format= format.
func (c *Controller) HandleExport(req Request, res Response, id string) {
	sink := newBufferSink(c.maxBufferBytes)
	result, err := c.service.Export(req.Context(), id, export.Format(req.Query("format")), sink)
	if err != nil {
		WriteError(res, err)
		return
	}
	c.writeResult(res, result, sink)
}

// HandleExportPayload exports the shader described by a JSON body.
func (c *Controller) HandleExportPayload(req Request, res Response) {
	payload, err := DecodeExportPayload(req, c.maxBodyBytes)
	if err != nil {
		WriteError(res, err)
		return
	}

	ctx := req.Context()
	sink := newBufferSink(c.maxBufferBytes)
	var result export.ExportResult
	if id := strings.TrimSpace(payload.ID); id != "" {
		result, err = c.service.Export(ctx, id, payload.Format, sink)
	} else {
		result, err = c.service.ExportSources(ctx, export.ExportRequest{
			Sources: export.SourcePair{Fragment: payload.Fragment, Vertex: payload.Vertex},
			Title:   payload.Title,
			Format:  payload.Format,
			Sink:    sink,
		})
	}
	if err != nil {
		WriteError(res, err)
		return
	}
	c.writeResult(res, result, sink)
}

// HandlePreview serves the PNG preview of a shader.
func (c *Controller) HandlePreview(req Request, res Response, id string) {
	img, err := c.service.Preview(req.Context(), id)
	if err != nil {
		WriteError(res, err)
		return
	}
	res.SetHeader("Content-Type", gallery.PreviewContentType)
	res.SetHeader("Content-Disposition", "inline; filename=\""+sanitizeFilename(id+".png")+"\"")
	res.SetHeader("Content-Length", strconv.Itoa(len(img)))
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write(img)
}

func (c *Controller) writeResult(res Response, result export.ExportResult, sink *bufferSink) {
	if result.RequestedFormat != "" {
		res.SetHeader("X-Export-Requested-Format", string(result.RequestedFormat))
	}
	res.SetHeader("X-Export-Format", string(result.Format))
	if err := WriteDownloads(res, result.ID, sink.Downloads()); err != nil {
		c.logger.Errorf("write export %s: %v", result.ID, err)
	}
}

func (c *Controller) pageRenderer() (PageRenderer, error) {
	c.pagesOnce.Do(func() {
		if c.pages != nil {
			return
		}
		renderer, err := pagetemplate.NewRenderer()
		if err != nil {
			c.pagesErr = err
			return
		}
		c.pages = renderer
	})
	if c.pagesErr != nil {
		return nil, c.pagesErr
	}
	return c.pages, nil
}

func unescape(segment string) string {
	value, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return value
}

// bufferSink collects downloads for one response up to a byte limit.
type bufferSink struct {
	mu        sync.Mutex
	maxSize   int64
	size      int64
	downloads []export.Download
}

func newBufferSink(maxSize int64) *bufferSink {
	if maxSize <= 0 {
		maxSize = DefaultMaxBufferBytes
	}
	return &bufferSink{maxSize: maxSize}
}

func (s *bufferSink) Save(ctx context.Context, d export.Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.size+int64(len(d.Data)) > s.maxSize {
		return export.NewError(export.KindInternal, "buffer limit exceeded", nil)
	}
	s.size += int64(len(d.Data))
	s.downloads = append(s.downloads, d)
	return nil
}

func (s *bufferSink) Downloads() []export.Download {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]export.Download, len(s.downloads))
	copy(out, s.downloads)
	return out
}
