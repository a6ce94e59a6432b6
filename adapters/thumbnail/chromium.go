package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-shader-export/export"
)

// Default capture settings.
const (
	DefaultWidth  = 640
	DefaultHeight = 360
	DefaultSettle = 750 * time.Millisecond
)

var viewportPattern = regexp.MustCompile(`^\s*([0-9]+)\s*[xX]\s*([0-9]+)\s*$`)

// ChromiumEngine captures previews using a shared headless Chromium instance.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string

	Width  int64
	Height int64
	// Settle is how long the page animates before the screenshot.
	Settle time.Duration
	// BaseURL is injected as <base href> when the page has none.
	BaseURL string
	// BlockedURLs are URL patterns the page may not load.
	BlockedURLs []string

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromiumEngine creates a headless engine with default capture settings.
func NewChromiumEngine(browserPath string, args ...string) *ChromiumEngine {
	return &ChromiumEngine{
		BrowserPath: browserPath,
		Headless:    true,
		Timeout:     30 * time.Second,
		Args:        args,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Settle:      DefaultSettle,
	}
}

// Preview renders page and returns a PNG screenshot.
func (e *ChromiumEngine) Preview(ctx context.Context, pageHTML string) ([]byte, error) {
	if e == nil {
		return nil, export.NewError(export.KindInternal, "chromium engine is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	width, height := e.viewport()

	if err := e.ensureBrowser(); err != nil {
		return nil, export.NewError(export.KindInternal, "chromium engine init failed", err)
	}

	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, e.Timeout)
		defer cancelTimeout()
	}

	content := injectBaseURL(pageHTML, e.BaseURL)
	settle := e.Settle
	if settle < 0 {
		settle = 0
	}

	var png []byte
	actions := []chromedp.Action{}
	if len(e.BlockedURLs) > 0 {
		actions = append(actions,
			network.Enable(),
			network.SetBlockedURLs(e.BlockedURLs),
		)
	}
	actions = append(actions,
		chromedp.EmulateViewport(width, height),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, content).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			png, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
			return err
		}),
	)

	if err := chromedp.Run(execCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, export.NewError(export.KindInternal, "chromium screenshot failed", err)
	}
	return png, nil
}

// Close releases Chromium resources if they have been initialized.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	if e.browserCancel != nil {
		e.browserCancel()
	}
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

func (e *ChromiumEngine) viewport() (int64, int64) {
	width, height := e.Width, e.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return width, height
}

func (e *ChromiumEngine) ensureBrowser() error {
	e.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if e.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(e.BrowserPath))
		}
		options = append(options, chromedp.Flag("headless", e.Headless))
		// WebGL needs a GL backend in headless mode.
		options = append(options, chromedp.Flag("use-gl", "swiftshader"), chromedp.Flag("enable-webgl", true))
		options = append(options, allocatorOptionsFromArgs(e.Args)...)

		e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		e.browserCtx, e.browserCancel = chromedp.NewContext(e.allocCtx)
	})
	if e.allocCtx == nil || e.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

// ParseViewport parses "WIDTHxHEIGHT" into pixel dimensions.
func ParseViewport(value string) (int64, int64, error) {
	matches := viewportPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, 0, export.NewError(export.KindValidation, fmt.Sprintf("invalid viewport: %s", value), nil)
	}
	width, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, 0, export.NewError(export.KindValidation, fmt.Sprintf("invalid viewport width: %s", value), err)
	}
	height, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return 0, 0, export.NewError(export.KindValidation, fmt.Sprintf("invalid viewport height: %s", value), err)
	}
	if width == 0 || height == 0 || width > 4096 || height > 4096 {
		return 0, 0, export.NewError(export.KindValidation, fmt.Sprintf("viewport out of range: %s", value), nil)
	}
	return width, height, nil
}

func injectBaseURL(pageHTML, baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return pageHTML
	}

	lower := strings.ToLower(pageHTML)
	if strings.Contains(lower, "<base") {
		return pageHTML
	}

	baseTag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(baseURL))
	if headIdx := strings.Index(lower, "<head"); headIdx >= 0 {
		if end := strings.Index(lower[headIdx:], ">"); end >= 0 {
			insertPos := headIdx + end + 1
			return pageHTML[:insertPos] + baseTag + pageHTML[insertPos:]
		}
	}
	return baseTag + pageHTML
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
