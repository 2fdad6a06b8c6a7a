package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded captures what the fake backend saw.
type recorded struct {
	method      string
	path        string
	rawPath     string
	query       string
	contentType string
	body        map[string]any
}

func newRecordingServer(t *testing.T, status int, reply string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var seen []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method:      r.Method,
			path:        r.URL.Path,
			rawPath:     r.URL.EscapedPath(),
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
		}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.body))
		}
		seen = append(seen, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestLoginSendsCredentials(t *testing.T) {
	srv, seen := newRecordingServer(t, 200, `{"success":true,"session_id":"s1","user_id":"u1"}`)
	c := New(srv.URL+"/api/", time.Second, nil)

	resp, err := c.Login(context.Background(), "aaaaaa", "pw")
	require.NoError(t, err)
	assert.True(t, resp.OK())

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/auth/login", got.path)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, map[string]any{"username": "aaaaaa", "password": "pw"}, got.body)

	obj, err := resp.Object()
	require.NoError(t, err)
	assert.Equal(t, "s1", obj["session_id"])
}

func TestSessionTravelsAsQueryOnGet(t *testing.T) {
	srv, seen := newRecordingServer(t, 200, `{}`)
	c := New(srv.URL, time.Second, nil)

	_, err := c.GetWedding(context.Background(), "tok en")
	require.NoError(t, err)
	_, err = c.Profile(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "session_id=tok+en", (*seen)[0].query)
	assert.Empty(t, (*seen)[1].query)
	assert.Empty(t, (*seen)[0].contentType)
}

func TestUpdateThemeWithoutSessionOmitsField(t *testing.T) {
	srv, seen := newRecordingServer(t, 401, `{"detail":"session required"}`)
	c := New(srv.URL, time.Second, nil)

	resp, err := c.UpdateTheme(context.Background(), "", ThemeClassic)
	require.NoError(t, err, "non-2xx is not an error")
	assert.Equal(t, 401, resp.StatusCode)
	assert.False(t, resp.OK())

	body := (*seen)[0].body
	assert.Equal(t, "classic", body["theme"])
	_, has := body["session_id"]
	assert.False(t, has)
}

func TestUpdateWeddingDoesNotMutateInput(t *testing.T) {
	srv, seen := newRecordingServer(t, 200, `{}`)
	c := New(srv.URL, time.Second, nil)

	fields := map[string]any{"couple_name_1": "Emily"}
	_, err := c.UpdateWedding(context.Background(), "s1", fields)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"couple_name_1": "Emily"}, fields)
	assert.Equal(t, "s1", (*seen)[0].body["session_id"])
	assert.Equal(t, http.MethodPut, (*seen)[0].method)
}

func TestUpdatePartySendsEmptyListForNil(t *testing.T) {
	srv, seen := newRecordingServer(t, 200, `{}`)
	c := New(srv.URL, time.Second, nil)

	_, err := c.UpdateParty(context.Background(), "s1", GroomParty, nil)
	require.NoError(t, err)

	assert.Equal(t, []any{}, (*seen)[0].body["groom_party"])
	assert.Equal(t, "/wedding/party", (*seen)[0].path)
}

func TestPostGuestbookOmitsEmptyWeddingID(t *testing.T) {
	srv, seen := newRecordingServer(t, 400, `{}`)
	c := New(srv.URL, time.Second, nil)

	_, err := c.PostGuestbook(context.Background(), GuestbookEntry{Name: "Test User", Message: "hi"})
	require.NoError(t, err)

	_, has := (*seen)[0].body["wedding_id"]
	assert.False(t, has)
}

func TestListGuestbookEscapesID(t *testing.T) {
	srv, seen := newRecordingServer(t, 200, `{"success":true,"messages":[],"total_count":0}`)
	c := New(srv.URL, time.Second, nil)

	resp, err := c.ListGuestbook(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/guestbook/a%2Fb", (*seen)[0].rawPath)

	obj, err := resp.Object()
	require.NoError(t, err)
	assert.Equal(t, int64(0), obj["total_count"], "integral numbers decode as int64")
}

func TestTransportErrorOnClosedServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, nil)
	_, err := c.GetWedding(context.Background(), "s1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "/wedding", te.Path)
	assert.Equal(t, http.MethodGet, te.Method)
}

func TestTransportErrorTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(srv.URL, 50*time.Millisecond, nil)
	_, err := c.GetWedding(context.Background(), "s1")
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Timeout())
}

func TestResponseJSONErrors(t *testing.T) {
	r := &Response{Body: []byte("<html>")}
	_, err := r.JSON()
	assert.Error(t, err)

	r = &Response{Body: []byte(`[1, 2.5]`)}
	doc, err := r.JSON()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), 2.5}, doc)

	_, err = r.Object()
	assert.ErrorContains(t, err, "expected a JSON object")
}

func TestSnippetTruncates(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	r := &Response{Body: long}
	assert.Len(t, r.Snippet(), 203)
}

func TestSendAppliesHeaders(t *testing.T) {
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, time.Second, nil)

	resp, err := c.Send(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/ping",
		Header: http.Header{"X-Trace": {"abc"}, "Accept": {"text/plain"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "abc", gotHeader.Get("X-Trace"))
	assert.Equal(t, "text/plain", gotHeader.Get("Accept"))
}
