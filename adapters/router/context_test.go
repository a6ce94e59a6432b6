package exportrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/goliatone/go-router"
)

// testContext implements the subset of router.Context the handler uses.
// Calls outside that subset panic on the nil embedded interface.
type testContext struct {
	router.Context

	method        string
	path          string
	body          []byte
	query         map[string]string
	headers       map[string]string
	ctx           context.Context
	recorder      *httptest.ResponseRecorder
	statusWritten bool
	sendCalled    bool
}

func newTestContext(method, target string, body []byte) *testContext {
	u, err := url.Parse(target)
	if err != nil {
		panic(err)
	}
	query := make(map[string]string)
	for key, values := range u.Query() {
		query[key] = values[0]
	}
	return &testContext{
		method:   method,
		path:     u.Path,
		body:     body,
		query:    query,
		headers:  make(map[string]string),
		ctx:      context.Background(),
		recorder: httptest.NewRecorder(),
	}
}

func (c *testContext) Context() context.Context { return c.ctx }

func (c *testContext) Method() string { return c.method }

func (c *testContext) Path() string { return c.path }

func (c *testContext) Header(name string) string { return c.headers[name] }

func (c *testContext) Query(name string, defaultValue ...string) string {
	if val, ok := c.query[name]; ok {
		return val
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testContext) Body() []byte { return c.body }

func (c *testContext) SetHeader(key, val string) router.Context {
	c.recorder.Header().Set(key, val)
	return c
}

func (c *testContext) Status(code int) router.Context {
	c.writeHeader(code)
	return c
}

func (c *testContext) Send(body []byte) error {
	c.sendCalled = true
	c.writeHeader(http.StatusOK)
	_, err := c.recorder.Write(body)
	return err
}

func (c *testContext) JSON(code int, v any) error {
	c.recorder.Header().Set("Content-Type", "application/json")
	c.writeHeader(code)
	return json.NewEncoder(c.recorder).Encode(v)
}

func (c *testContext) writeHeader(code int) {
	if c.statusWritten {
		return
	}
	c.statusWritten = true
	c.recorder.WriteHeader(code)
}

type testHTTPContext struct {
	*testContext
	req *http.Request
}

func newTestHTTPContext(method, target string, body []byte) *testHTTPContext {
	base := newTestContext(method, target, body)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	base.ctx = req.Context()
	return &testHTTPContext{testContext: base, req: req}
}

func (c *testHTTPContext) Request() *http.Request { return c.req }

func (c *testHTTPContext) Response() http.ResponseWriter { return c.recorder }

var _ router.Context = (*testContext)(nil)
var _ router.HTTPContext = (*testHTTPContext)(nil)
