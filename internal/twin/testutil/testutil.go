// Package testutil drives a wedding twin running under httptest. Every helper
// fails the calling test on transport or decoding errors, so call sites only
// deal with status codes and bodies.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TwinClient sends requests to one test server.
type TwinClient struct {
	t    *testing.T
	base string
	hc   *http.Client
}

func NewTwinClient(t *testing.T, server *httptest.Server) *TwinClient {
	return &TwinClient{t: t, base: server.URL, hc: server.Client()}
}

// Response is a response whose body has already been read.
type Response struct {
	t          *testing.T
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) {
	r.t.Helper()
	require.NoError(r.t, json.Unmarshal(r.Body, v), "body: %s", r.Body)
}

func (r *Response) JSONMap() map[string]any {
	r.t.Helper()
	m := map[string]any{}
	r.JSON(&m)
	return m
}

func (r *Response) AssertStatus(want int) *Response {
	r.t.Helper()
	assert.Equal(r.t, want, r.StatusCode, "body: %s", r.Body)
	return r
}

func (r *Response) AssertBodyContains(substr string) *Response {
	r.t.Helper()
	assert.Contains(r.t, string(r.Body), substr)
	return r
}

func (c *TwinClient) Get(path string, query url.Values) *Response {
	c.t.Helper()
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.send(http.MethodGet, path, nil)
}

func (c *TwinClient) Post(path string, body any) *Response {
	c.t.Helper()
	return c.send(http.MethodPost, path, body)
}

func (c *TwinClient) Put(path string, body any) *Response {
	c.t.Helper()
	return c.send(http.MethodPut, path, body)
}

// encode turns body into request bytes. Strings and byte slices pass through
// untouched so tests can send malformed JSON.
func (c *TwinClient) encode(body any) io.Reader {
	c.t.Helper()
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return strings.NewReader(b)
	case []byte:
		return bytes.NewReader(b)
	}
	data, err := json.Marshal(body)
	require.NoError(c.t, err, "encoding request body")
	return bytes.NewReader(data)
}

func (c *TwinClient) send(method, path string, body any) *Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, c.encode(body))
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	require.NoError(c.t, err, "%s %s", method, path)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err, "reading %s %s", method, path)

	return &Response{t: c.t, StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}
}

// AdminClient adds the /admin control plane calls.
type AdminClient struct {
	*TwinClient
}

func NewAdminClient(tc *TwinClient) *AdminClient {
	return &AdminClient{TwinClient: tc}
}

func faultPath(path string) string {
	return "/admin/fault/" + strings.TrimPrefix(path, "/")
}

func (ac *AdminClient) Health() *Response      { ac.t.Helper(); return ac.Get("/admin/health", nil) }
func (ac *AdminClient) Reset() *Response       { ac.t.Helper(); return ac.Post("/admin/reset", nil) }
func (ac *AdminClient) GetState() *Response    { ac.t.Helper(); return ac.Get("/admin/state", nil) }
func (ac *AdminClient) GetRequests() *Response { ac.t.Helper(); return ac.Get("/admin/requests", nil) }

func (ac *AdminClient) LoadState(state any) *Response {
	ac.t.Helper()
	return ac.Post("/admin/state", state)
}

// InjectFault registers fault (status_code, body, delay_ms, rate) for path.
func (ac *AdminClient) InjectFault(path string, fault any) *Response {
	ac.t.Helper()
	return ac.Post(faultPath(path), fault)
}

func (ac *AdminClient) RemoveFault(path string) *Response {
	ac.t.Helper()
	return ac.send(http.MethodDelete, faultPath(path), nil)
}

// AdvanceTime moves the twin clock by a Go duration string such as "24h".
func (ac *AdminClient) AdvanceTime(d string) *Response {
	ac.t.Helper()
	return ac.Post("/admin/time/advance", map[string]string{"duration": d})
}
