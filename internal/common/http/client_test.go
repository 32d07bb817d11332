package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"admin-console/internal/common/config"
	"admin-console/internal/common/errors"
	"admin-console/internal/common/logger"
	"admin-console/internal/common/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test helpers
// ==========================

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ShowError(err *errors.HTTPError) {
	m.Called(err)
}

func newNotifier() *mockNotifier {
	n := &mockNotifier{}
	n.On("ShowError", mock.AnythingOfType("*errors.HTTPError")).Return()
	return n
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.New(session.WithLogoutDelay(0))
	cfg := config.Defaults(srv.URL).API
	opts = append([]Option{WithLogger(logger.NewTestLogger(t))}, opts...)
	c, err := NewClient(cfg, sess, opts...)
	require.NoError(t, err)
	return c, sess
}

// ==========================
// Success path and interceptors
// ==========================

func TestClient_GetDecodesDataAndSetsHeaders(t *testing.T) {
	var gotAuth, gotRequestID, gotAccept, gotPath, gotQuery string
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(HeaderRequestID)
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		writeEnvelope(w, 200, "ok", map[string]interface{}{"userId": 7, "loginName": "admin"})
	})
	sess.SetToken("Bearer abc.def")

	type info struct {
		UserID    int64  `json:"userId"`
		LoginName string `json:"loginName"`
	}
	got, err := GetJSON[info](context.Background(), c, "/user/info", map[string]interface{}{"current": 1, "size": 20})
	require.NoError(t, err)

	assert.Equal(t, info{UserID: 7, LoginName: "admin"}, got)
	assert.Equal(t, "Bearer abc.def", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "/user/info", gotPath)
	assert.Equal(t, "current=1&size=20", gotQuery)
}

func TestClient_NoTokenNoAuthorizationHeader(t *testing.T) {
	var hasAuth bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		writeEnvelope(w, 200, "", nil)
	})

	_, err := c.Get(context.Background(), Request{URL: "/menu"})
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestClient_CustomHeadersAndInterceptor(t *testing.T) {
	var custom, extra, reqID string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		custom = r.Header.Get("X-Custom-Header")
		extra = r.Header.Get("X-Tenant")
		reqID = r.Header.Get(HeaderRequestID)
		writeEnvelope(w, 200, "", nil)
	}, WithInterceptor(func(r *http.Request) error {
		r.Header.Set("X-Tenant", "acme")
		return nil
	}))

	_, err := c.Get(context.Background(), Request{
		URL:     "/user/info",
		Headers: map[string]string{"X-Custom-Header": "v", HeaderRequestID: "fixed-id"},
	})
	require.NoError(t, err)
	assert.Equal(t, "v", custom)
	assert.Equal(t, "acme", extra)
	assert.Equal(t, "fixed-id", reqID)
}

func TestClient_InterceptorFailureIsConfigError(t *testing.T) {
	var hits int32
	n := newNotifier()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}, WithNotifier(n), WithInterceptor(func(*http.Request) error {
		return assert.AnError
	}))

	_, err := c.Get(context.Background(), Request{URL: "/menu"})
	herr, ok := errors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeRequestConfigError, herr.Code)
	assert.Equal(t, int32(0), hits)
	n.AssertNumberOfCalls(t, "ShowError", 1)
}

func TestClient_PostJSONBody(t *testing.T) {
	var gotBody map[string]interface{}
	var gotMethod, gotType string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeEnvelope(w, 200, "", 42)
	})

	id, err := PostJSON[int64](context.Background(), c, "/role", map[string]interface{}{"roleName": "ops"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "ops", gotBody["roleName"])
}

func TestClient_MultipartForm(t *testing.T) {
	var loginName, tenant string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		loginName = r.FormValue("loginName")
		tenant = r.FormValue("tenantAlias")
		writeEnvelope(w, 200, "", map[string]string{"token": "t"})
	})

	_, err := c.Post(context.Background(), Request{
		URL:  "/login",
		Form: url.Values{"loginName": {"admin"}, "password": {"x"}, "tenantAlias": {"acme"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", loginName)
	assert.Equal(t, "acme", tenant)
}

func TestClient_BaseURLWithPathPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeEnvelope(w, 200, "", nil)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(config.Defaults(srv.URL+"/api/").API, nil)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), Request{URL: "/dept/list"})
	require.NoError(t, err)
	assert.Equal(t, "/api/dept/list", gotPath)
}

func TestClient_NullDataYieldsZeroValue(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, "", nil)
	})

	got, err := Send[[]string](context.Background(), c, Request{URL: "/user/roles"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

// ==========================
// Envelope and transport failures
// ==========================

func TestClient_EnvelopeFailure(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		message     string
		wantStatus  int
		wantMessage string
	}{
		{name: "business error with message", code: 1001, message: "Login name taken", wantStatus: 1001, wantMessage: "Login name taken"},
		{name: "business error without message", code: 400, message: "", wantStatus: 400, wantMessage: "Request failed"},
		{name: "forbidden", code: 403, message: "No permission", wantStatus: 403, wantMessage: "No permission"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNotifier()
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.code, tt.message, nil)
			}, WithNotifier(n))

			_, err := c.Get(context.Background(), Request{URL: "/user"})
			herr, ok := errors.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, herr.Status)
			assert.Equal(t, tt.wantMessage, herr.Message)
			assert.Equal(t, "/user", herr.URL)
			n.AssertNumberOfCalls(t, "ShowError", 1)
		})
	}
}

func TestClient_SilentErrorSkipsNotifier(t *testing.T) {
	n := newNotifier()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 400, "bad", nil)
	}, WithNotifier(n))

	_, err := c.Get(context.Background(), Request{URL: "/login", SilentError: true})
	require.Error(t, err)
	n.AssertNotCalled(t, "ShowError", mock.Anything)
}

func TestClient_InvalidResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non json content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = io.WriteString(w, "<html></html>")
			},
		},
		{
			name: "json without code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"data":[1,2]}`)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"code":`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler, WithNotifier(newNotifier()))
			_, err := c.Get(context.Background(), Request{URL: "/menu"})
			herr, ok := errors.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidResponse, herr.Code)
		})
	}
}

func TestClient_Non2xxUsesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":404,"message":"No such user"}`)
	}, WithNotifier(newNotifier()))

	_, err := c.Get(context.Background(), Request{URL: "/user/9"})
	herr, ok := errors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 404, herr.Status)
	assert.Equal(t, "No such user", herr.Message)
}

func TestClient_Non2xxFallsBackToStatusText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithNotifier(newNotifier()))

	_, err := c.Get(context.Background(), Request{URL: "/menu"})
	herr, ok := errors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 502, herr.Status)
	assert.Equal(t, "Bad Gateway", herr.Message)
	assert.True(t, herr.Retryable)
}

func TestClient_TimeoutMapsTo408(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithNotifier(newNotifier()), WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))

	_, err := c.Get(context.Background(), Request{URL: "/menu"})
	herr, ok := errors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 408, herr.Status)
	assert.Equal(t, errors.ErrCodeRequestTimeout, herr.Code)
}

func TestClient_NetworkErrorMapsTo400(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c, err := NewClient(config.Defaults(addr).API, nil, WithNotifier(newNotifier()))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), Request{URL: "/menu"})
	herr, ok := errors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, herr.Status)
	assert.Equal(t, errors.ErrCodeNetworkError, herr.Code)
}

// ==========================
// Retry
// ==========================

func TestClient_Retry(t *testing.T) {
	tests := []struct {
		name         string
		maxRetries   int
		failures     int32
		status       int
		wantAttempts int32
		wantErr      bool
	}{
		{name: "no retries by default", maxRetries: 0, failures: 5, status: 503, wantAttempts: 1, wantErr: true},
		{name: "recovers after transient", maxRetries: 2, failures: 1, status: 503, wantAttempts: 2},
		{name: "exhausts budget", maxRetries: 2, failures: 5, status: 500, wantAttempts: 3, wantErr: true},
		{name: "envelope 504 is retried", maxRetries: 1, failures: 1, status: -504, wantAttempts: 2},
		{name: "not retriable", maxRetries: 3, failures: 5, status: 400, wantAttempts: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			n := newNotifier()
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&attempts, 1) <= tt.failures {
					if tt.status < 0 {
						writeEnvelope(w, -tt.status, "upstream timeout", nil)
						return
					}
					w.WriteHeader(tt.status)
					return
				}
				writeEnvelope(w, 200, "", "ok")
			}, WithNotifier(n), WithRetry(tt.maxRetries, time.Millisecond))

			got, err := Send[string](context.Background(), c, Request{URL: "/menu"})
			assert.Equal(t, tt.wantAttempts, atomic.LoadInt32(&attempts))
			if tt.wantErr {
				require.Error(t, err)
				n.AssertNumberOfCalls(t, "ShowError", 1)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			n.AssertNotCalled(t, "ShowError", mock.Anything)
		})
	}
}

func TestClient_RetryStopsOnContextCancel(t *testing.T) {
	var attempts int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithNotifier(newNotifier()), WithRetry(5, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Get(ctx, Request{URL: "/menu"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_CanceledRequestIsNotReported(t *testing.T) {
	n := newNotifier()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithNotifier(n))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.Get(ctx, Request{URL: "/menu"})
	herr, ok := errors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeRequestCanceled, herr.Code)
	assert.True(t, errors.IsCanceled(err))
	n.AssertNotCalled(t, "ShowError", mock.Anything)
}

func TestClient_CancelDuringRetryWaitIsNotReported(t *testing.T) {
	n := newNotifier()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithNotifier(n), WithRetry(5, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := c.Get(ctx, Request{URL: "/menu"})
	herr, ok := errors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, herr.Status)
	n.AssertNotCalled(t, "ShowError", mock.Anything)
}

// ==========================
// Unauthorized flow
// ==========================

func TestClient_ConcurrentUnauthorizedLogsOutOnce(t *testing.T) {
	var logouts int32
	n := newNotifier()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 401, "Token expired", nil)
	}))
	t.Cleanup(srv.Close)

	sess := session.New(
		session.WithLogoutDelay(10*time.Millisecond),
		session.WithLogoutHook(func() { atomic.AddInt32(&logouts, 1) }),
	)
	sess.SetToken("abc")
	c, err := NewClient(config.Defaults(srv.URL).API, sess, WithNotifier(n))
	require.NoError(t, err)
	t.Cleanup(sess.Close)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), Request{URL: "/user/info"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		herr, ok := errors.AsHTTPError(err)
		require.True(t, ok)
		assert.Equal(t, 401, herr.Status)
		assert.Equal(t, "Token expired", herr.Message)
	}
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&logouts) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&logouts))
	n.AssertNumberOfCalls(t, "ShowError", 1)
	assert.Empty(t, sess.Token())
}

func TestClient_TransportUnauthorized(t *testing.T) {
	var logouts int32
	n := newNotifier()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	sess := session.New(session.WithLogoutDelay(0), session.WithLogoutHook(func() { atomic.AddInt32(&logouts, 1) }))
	c, err := NewClient(config.Defaults(srv.URL).API, sess, WithNotifier(n), WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), Request{URL: "/menu", SilentError: true})
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&logouts))
	// the unauthorized message is shown even for silent requests
	n.AssertNumberOfCalls(t, "ShowError", 1)
}

// ==========================
// Result
// ==========================

func TestFetch_Result(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			writeEnvelope(w, 200, "", []int{1, 2})
			return
		}
		writeEnvelope(w, 500, "boom", nil)
	}, WithNotifier(newNotifier()))

	ok := Fetch[[]int](context.Background(), c, Request{URL: "/ok"})
	assert.True(t, ok.IsOk())
	assert.Equal(t, []int{1, 2}, ok.Value)

	bad := Fetch[[]int](context.Background(), c, Request{URL: "/bad"})
	assert.False(t, bad.IsOk())
	assert.Equal(t, []int{9}, bad.ValueOr([]int{9}))
	_, err := bad.Unwrap()
	assert.Error(t, err)
}
