// Package testutil provides an in-process fake of the console backend.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"admin-console/internal/common/config"
	request "admin-console/internal/common/http"
	"admin-console/internal/common/logger"
	"admin-console/internal/common/session"

	"github.com/stretchr/testify/require"
)

// Recorded is one request the backend received.
type Recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Backend answers "METHOD /path" routes with envelope responses.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Recorded
}

func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]http.HandlerFunc{}}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string { return b.Server.URL }

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.requests = append(b.requests, Recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := b.routes[key]
	b.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":404,"message":"no route `+key+`"}`)
		return
	}
	h(w, r)
}

// Handle registers a raw handler. The body is recorded first and then
// replayed to fn.
func (b *Backend) Handle(method, path string, fn http.HandlerFunc) {
	b.mu.Lock()
	b.routes[method+" "+path] = fn
	b.mu.Unlock()
}

// Reply answers a route with a success envelope carrying data.
func (b *Backend) Reply(method, path string, data interface{}) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, 200, "success", data)
	})
}

// ReplyCode answers a route with a failure envelope.
func (b *Backend) ReplyCode(method, path string, code int, message string) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, code, message, nil)
	})
}

// Requests returns every request seen for a route.
func (b *Backend) Requests(method, path string) []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Recorded
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Last returns the most recent request for a route.
func (b *Backend) Last(t testing.TB, method, path string) Recorded {
	t.Helper()
	reqs := b.Requests(method, path)
	require.NotEmpty(t, reqs, "no %s %s request recorded", method, path)
	return reqs[len(reqs)-1]
}

// Client builds a request client pointed at the backend with a fresh session.
func (b *Backend) Client(t testing.TB, opts ...request.Option) (*request.Client, *session.Session) {
	t.Helper()
	sess := session.New(session.WithLogoutDelay(0))
	opts = append([]request.Option{request.WithLogger(logger.NewTestLogger(t))}, opts...)
	c, err := request.NewClient(config.Defaults(b.URL()).API, sess, opts...)
	require.NoError(t, err)
	return c, sess
}

func WriteEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
}
