// Package session holds the per-console authentication state: the access
// token, the unauthorized debounce window and the logout hook.
package session

import (
	"context"
	"sync"
	"time"

	"admin-console/internal/common/logger"
	"admin-console/internal/common/metrics"
)

// Session is safe for concurrent use by many in-flight requests.
type Session struct {
	mu          sync.RWMutex
	token       string
	debouncer   Debouncer
	logoutDelay time.Duration
	onLogout    func()
	logger      logger.Logger

	timerMu sync.Mutex
	timer   *time.Timer
}

type Option func(*Session)

// WithDebouncer replaces the default 3 s in-memory window.
func WithDebouncer(d Debouncer) Option {
	return func(s *Session) { s.debouncer = d }
}

// WithLogoutDelay sets how long after the first 401 the logout hook runs.
// A delay of zero runs it synchronously.
func WithLogoutDelay(d time.Duration) Option {
	return func(s *Session) { s.logoutDelay = d }
}

// WithLogoutHook registers the callback run on forced logout.
func WithLogoutHook(fn func()) Option {
	return func(s *Session) { s.onLogout = fn }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func New(opts ...Option) *Session {
	s := &Session{
		debouncer:   NewMemoryDebouncer(3 * time.Second),
		logoutDelay: 500 * time.Millisecond,
		logger:      logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) IsLoggedIn() bool {
	return s.Token() != ""
}

// HandleUnauthorized runs the debounced unauthorized flow. It returns true for
// the one caller per window that should show the expiry message; that caller
// also schedules the logout.
func (s *Session) HandleUnauthorized(ctx context.Context) bool {
	acquired, err := s.debouncer.Acquire(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Shared debounce unavailable, using local window", nil)
	}
	if !acquired {
		metrics.UnauthorizedSuppressedTotal.Inc()
		s.logger.Debug("Unauthorized response suppressed by debounce window", nil)
		return false
	}

	s.logger.Warn("Session rejected, scheduling logout", map[string]interface{}{
		"logoutDelay": s.logoutDelay.String(),
	})
	s.scheduleLogout()
	return true
}

func (s *Session) scheduleLogout() {
	if s.logoutDelay <= 0 {
		s.Logout()
		return
	}

	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.logoutDelay, s.Logout)
}

// Logout clears the token and runs the logout hook.
func (s *Session) Logout() {
	s.SetToken("")
	metrics.LogoutsTotal.Inc()
	s.logger.Info("Logged out", nil)
	if s.onLogout != nil {
		s.onLogout()
	}
}

// Close cancels a pending logout.
func (s *Session) Close() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
