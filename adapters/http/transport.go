package exporthttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/goliatone/go-shader-export/adapters/exportapi"
)

type httpRequest struct {
	r     *http.Request
	query url.Values
}

func newHTTPRequest(r *http.Request) *httpRequest {
	req := &httpRequest{r: r}
	if r != nil && r.URL != nil {
		req.query = r.URL.Query()
	}
	return req
}

func (req *httpRequest) Context() context.Context {
	if req.r == nil {
		return context.Background()
	}
	return req.r.Context()
}

func (req *httpRequest) Method() string {
	if req.r == nil {
		return ""
	}
	return req.r.Method
}

func (req *httpRequest) Path() string {
	if req.r == nil || req.r.URL == nil {
		return ""
	}
	return req.r.URL.Path
}

func (req *httpRequest) Header(name string) string {
	if req.r == nil {
		return ""
	}
	return req.r.Header.Get(name)
}

func (req *httpRequest) Query(name string) string {
	return req.query.Get(name)
}

func (req *httpRequest) Body() io.ReadCloser {
	if req.r == nil {
		return nil
	}
	return req.r.Body
}

// httpResponse wraps a ResponseWriter and records the status written.
type httpResponse struct {
	w      http.ResponseWriter
	status int
	bytes  int64
}

func (res *httpResponse) SetHeader(name, value string) {
	res.w.Header().Set(name, value)
}

func (res *httpResponse) WriteHeader(status int) {
	if res.status != 0 {
		return
	}
	res.status = status
	res.w.WriteHeader(status)
}

func (res *httpResponse) Write(data []byte) (int, error) {
	if res.status == 0 {
		res.status = http.StatusOK
	}
	n, err := res.w.Write(data)
	res.bytes += int64(n)
	return n, err
}

func (res *httpResponse) WriteJSON(status int, payload any) error {
	res.w.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	return json.NewEncoder(res).Encode(payload)
}

func (res *httpResponse) Status() int {
	if res.status == 0 {
		return http.StatusOK
	}
	return res.status
}

var (
	_ exportapi.Request  = (*httpRequest)(nil)
	_ exportapi.Response = (*httpResponse)(nil)
)
