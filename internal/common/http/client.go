// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"admin-console/internal/common/config"
	"admin-console/internal/common/errors"
	"admin-console/internal/common/logger"
	"admin-console/internal/common/metrics"
	"admin-console/internal/common/observability"
	"admin-console/internal/common/session"
	"admin-console/internal/common/validation"
	"admin-console/internal/models"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-Id"
	maxBodyBytes    = 10 << 20
)

// Notifier shows a failed request to the user. errors.ErrorHandler is the
// default implementation.
type Notifier interface {
	ShowError(err *errors.HTTPError)
}

// RequestInterceptor runs on every outgoing request, in registration order.
type RequestInterceptor func(req *http.Request) error

// Request describes one API call.
type Request struct {
	Method  string
	URL     string
	Params  any               // query string, see EncodeParams
	Data    any               // JSON body; url.Values is sent form-encoded
	Form    url.Values        // multipart/form-data body, takes precedence over Data
	Headers map[string]string // applied before interceptors
	// SilentError keeps a non-401 failure away from the Notifier.
	SilentError bool
}

// Client is the console's request layer: interceptors, envelope check,
// debounced unauthorized flow and bounded retry.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	session      *session.Session
	notifier     Notifier
	logger       logger.Logger
	obs          *observability.Observability
	maxRetries   int
	retryDelay   time.Duration
	interceptors []RequestInterceptor
	envelope     *validation.Validator
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithObservability(o *observability.Observability) Option {
	return func(c *Client) { c.obs = o }
}

// WithRetry overrides the retry budget and the fixed delay between attempts.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithInterceptor appends a request interceptor after the built-in ones.
func WithInterceptor(fn RequestInterceptor) Option {
	return func(c *Client) { c.interceptors = append(c.interceptors, fn) }
}

func NewClient(cfg config.APIConfig, sess *session.Session, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	envelope, err := validation.Envelope()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = session.New()
	}

	hc := &http.Client{Timeout: config.GetDuration(cfg.Timeout)}
	if cfg.WithCredentials {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	c := &Client{
		baseURL:    base,
		httpClient: hc,
		session:    sess,
		logger:     logger.NewNoOpLogger(),
		maxRetries: cfg.MaxRetries,
		retryDelay: config.GetDuration(cfg.RetryDelay),
		envelope:   envelope,
	}
	c.interceptors = []RequestInterceptor{c.authInterceptor, requestIDInterceptor, acceptInterceptor}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = errors.NewErrorHandler(c.logger)
	}
	return c, nil
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session { return c.session }

// ==========================
// Entry points
// ==========================

func (c *Client) Get(ctx context.Context, req Request) (json.RawMessage, error) {
	req.Method = http.MethodGet
	return c.Do(ctx, req)
}

func (c *Client) Post(ctx context.Context, req Request) (json.RawMessage, error) {
	req.Method = http.MethodPost
	return c.Do(ctx, req)
}

func (c *Client) Put(ctx context.Context, req Request) (json.RawMessage, error) {
	req.Method = http.MethodPut
	return c.Do(ctx, req)
}

func (c *Client) Delete(ctx context.Context, req Request) (json.RawMessage, error) {
	req.Method = http.MethodDelete
	return c.Do(ctx, req)
}

// Do sends req and returns the envelope's data field. Failures are always
// *errors.HTTPError.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	start := time.Now()
	log := c.logger.WithFields(map[string]interface{}{
		"method": req.Method,
		"url":    req.URL,
	})

	for attempt := 0; ; attempt++ {
		data, herr := c.once(ctx, req)
		if herr == nil {
			metrics.APIRequestsTotal.WithLabelValues(req.Method, "success").Inc()
			metrics.APIRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
			log.Debug("Request succeeded", map[string]interface{}{"attempt": attempt + 1})
			return data, nil
		}
		herr.WithURL(req.URL)

		if herr.Retryable && attempt < c.maxRetries {
			metrics.APIRetriesTotal.WithLabelValues(strconv.Itoa(herr.Status)).Inc()
			log.Warn("Retrying request", map[string]interface{}{
				"attempt": attempt + 1,
				"status":  herr.Status,
				"delay":   c.retryDelay.String(),
			})
			if err := sleep(ctx, c.retryDelay); err == nil {
				continue
			}
		}

		metrics.APIRequestsTotal.WithLabelValues(req.Method, strings.ToLower(string(herr.Code))).Inc()
		metrics.APIRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
		c.report(ctx, req, herr)
		return nil, herr
	}
}

// report hands a final failure to the Notifier. 401s were already reported
// once per debounce window by the unauthorized flow; canceled requests were
// abandoned by the caller.
func (c *Client) report(ctx context.Context, req Request, herr *errors.HTTPError) {
	if herr.Status == StatusUnauthorized {
		return
	}
	if herr.Code == errors.ErrCodeRequestCanceled || stderrors.Is(ctx.Err(), context.Canceled) {
		c.logger.Debug("Request canceled", map[string]interface{}{"url": req.URL})
		return
	}
	if req.SilentError {
		c.logger.Debug("Request failed silently", map[string]interface{}{
			"url":    req.URL,
			"status": herr.Status,
			"error":  herr.Message,
		})
		return
	}
	c.notifier.ShowError(herr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ==========================
// Single attempt
// ==========================

func (c *Client) once(ctx context.Context, req Request) (json.RawMessage, *errors.HTTPError) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, errors.NewRequestConfigError(err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		herr := transportError(err)
		c.obs.RecordRequest(ctx, req.Method, req.URL, herr.Status, time.Since(start))
		return nil, herr
	}
	defer resp.Body.Close()
	c.obs.RecordRequest(ctx, req.Method, req.URL, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := serverMessage(resp.Header, body)
		if resp.StatusCode == StatusUnauthorized {
			return nil, c.unauthorized(ctx, msg)
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, errors.NewHTTPError(resp.StatusCode, msg)
	}

	if !isJSON(resp.Header) {
		return nil, errors.NewInvalidResponseError(fmt.Sprintf("unexpected content type %q", resp.Header.Get("Content-Type")))
	}
	result, err := c.envelope.ValidateBytes(body)
	if err != nil {
		return nil, errors.NewInvalidResponseError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidResponseError(result.Error())
	}

	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.NewInvalidResponseError(err.Error())
	}

	switch env.Code {
	case StatusSuccess:
		return env.Data, nil
	case StatusUnauthorized:
		return nil, c.unauthorized(ctx, env.Message)
	default:
		msg := env.Message
		if msg == "" {
			msg = "Request failed"
		}
		return nil, errors.NewHTTPError(env.Code, msg)
	}
}

// unauthorized runs the debounced flow and returns the error every caller gets.
func (c *Client) unauthorized(ctx context.Context, msg string) *errors.HTTPError {
	metrics.UnauthorizedTotal.Inc()
	herr := errors.NewUnauthorizedError(msg)
	if c.session.HandleUnauthorized(ctx) {
		c.notifier.ShowError(herr)
	}
	return herr
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	target, err := c.resolve(req.URL)
	if err != nil {
		return nil, err
	}
	if req.Params != nil {
		q, err := EncodeParams(req.Params)
		if err != nil {
			return nil, err
		}
		if len(q) > 0 {
			merged := target.Query()
			for k, vs := range q {
				merged[k] = vs
			}
			target.RawQuery = merged.Encode()
		}
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	for _, fn := range c.interceptors {
		if err := fn(httpReq); err != nil {
			return nil, err
		}
	}
	return httpReq, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""
	u.RawQuery = ref.RawQuery
	return &u, nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Form != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		keys := make([]string, 0, len(req.Form))
		for k := range req.Form {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range req.Form[k] {
				if err := w.WriteField(k, v); err != nil {
					return nil, "", err
				}
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}

	switch data := req.Data.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		return strings.NewReader(data.Encode()), "application/x-www-form-urlencoded", nil
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		return bytes.NewReader(raw), "application/json", nil
	}
}

// ==========================
// Interceptors
// ==========================

// authInterceptor sends the session token verbatim; the stored value may
// already carry a scheme such as "Bearer ".
func (c *Client) authInterceptor(req *http.Request) error {
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}
	return nil
}

func requestIDInterceptor(req *http.Request) error {
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	return nil
}

func acceptInterceptor(req *http.Request) error {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return nil
}

// ==========================
// Response helpers
// ==========================

func isJSON(h http.Header) bool {
	return strings.Contains(h.Get("Content-Type"), "application/json")
}

// serverMessage extracts "message" from a JSON error body, if there is one.
func serverMessage(h http.Header, body []byte) string {
	if !isJSON(h) || len(body) == 0 {
		return ""
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

func transportError(err error) *errors.HTTPError {
	if stderrors.Is(err, context.Canceled) {
		return errors.NewCanceledError(err)
	}
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.NewTimeoutError(err)
	}
	return errors.NewNetworkError(err)
}
