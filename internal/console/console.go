// Package console wires config, session, HTTP client and the API services
// into one handle used by the CLI.
package console

import (
	"context"
	"fmt"
	"time"

	"admin-console/internal/common/config"
	request "admin-console/internal/common/http"
	"admin-console/internal/common/logger"
	"admin-console/internal/common/observability"
	"admin-console/internal/common/session"
	"admin-console/internal/models"
	"admin-console/internal/services/auth"
	"admin-console/internal/services/dept"
	"admin-console/internal/services/menu"
	"admin-console/internal/services/role"
	"admin-console/internal/services/user"

	"golang.org/x/sync/errgroup"
)

// Console owns one session against one backend.
type Console struct {
	Config  *config.Config
	Logger  logger.Logger
	Session *session.Session
	Client  *request.Client

	Auth  *auth.Service
	Users *user.Service
	Roles *role.Service
	Depts *dept.Service
	Menus *menu.Service

	closeDebouncer func() error
}

type options struct {
	logger        logger.Logger
	obs           *observability.Observability
	onLogout      func()
	clientOptions []request.Option
}

type Option func(*options)

func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *options) { o.obs = obs }
}

// WithLogoutHook runs fn after the session is cleared by a forced logout.
func WithLogoutHook(fn func()) Option {
	return func(o *options) { o.onLogout = fn }
}

// WithClientOptions passes extra options to the request client.
func WithClientOptions(opts ...request.Option) Option {
	return func(o *options) { o.clientOptions = append(o.clientOptions, opts...) }
}

// New builds a console from cfg. When the session uses the Redis debouncer
// the connection is checked here; Close releases it.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Console, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	}
	log := o.logger

	debouncer, closeDebouncer, err := session.NewDebouncer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("session debouncer: %w", err)
	}

	sess := session.New(
		session.WithDebouncer(debouncer),
		session.WithLogoutDelay(config.GetDuration(cfg.Session.LogoutDelay)),
		session.WithLogger(log),
		session.WithLogoutHook(func() {
			log.Warn("Session ended, log in again", nil)
			if o.onLogout != nil {
				o.onLogout()
			}
		}),
	)

	clientOpts := []request.Option{
		request.WithLogger(log),
		request.WithObservability(o.obs),
		request.WithRetry(cfg.API.MaxRetries, config.GetDuration(cfg.API.RetryDelay)),
	}
	client, err := request.NewClient(cfg.API, sess, append(clientOpts, o.clientOptions...)...)
	if err != nil {
		_ = closeDebouncer()
		return nil, fmt.Errorf("request client: %w", err)
	}

	log.Info("Console initialized", map[string]interface{}{
		"baseUrl":   cfg.API.BaseURL,
		"debouncer": cfg.Session.Debouncer,
		"timeout":   config.GetDuration(cfg.API.Timeout).String(),
	})

	return &Console{
		Config:         cfg,
		Logger:         log,
		Session:        sess,
		Client:         client,
		Auth:           auth.NewService(client, log, cfg.API.TenantAlias),
		Users:          user.NewService(client, log),
		Roles:          role.NewService(client, log),
		Depts:          dept.NewService(client, log),
		Menus:          menu.NewService(client, log),
		closeDebouncer: closeDebouncer,
	}, nil
}

// State is what the console loads right after login.
type State struct {
	User   *models.UserInfo       `json:"user" yaml:"user"`
	Routes []*models.Route        `json:"routes" yaml:"routes"`
	Depts  []*models.DeptTreeNode `json:"depts" yaml:"depts"`
}

// Bootstrap fetches user info, menu routes and the department tree
// concurrently. The first failure cancels the other calls.
func (c *Console) Bootstrap(ctx context.Context) (*State, error) {
	start := time.Now()
	state := &State{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := c.Users.GetUserInfo(gctx)
		if err != nil {
			return fmt.Errorf("user info: %w", err)
		}
		state.User = info
		return nil
	})
	g.Go(func() error {
		resp, err := c.Menus.GetMenuList(gctx)
		if err != nil {
			return fmt.Errorf("menu: %w", err)
		}
		state.Routes = resp.MenuList
		return nil
	})
	g.Go(func() error {
		depts, err := c.Depts.GetDeptTree(gctx)
		if err != nil {
			return fmt.Errorf("dept tree: %w", err)
		}
		state.Depts = depts
		return nil
	})

	if err := g.Wait(); err != nil {
		c.Logger.Error("Bootstrap failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	c.Logger.Info("Bootstrap complete", map[string]interface{}{
		"routes":   len(state.Routes),
		"depts":    len(state.Depts),
		"duration": time.Since(start).String(),
	})
	return state, nil
}

// Close stops a pending logout and releases the debouncer's Redis client.
func (c *Console) Close() error {
	c.Session.Close()
	if c.closeDebouncer != nil {
		return c.closeDebouncer()
	}
	return nil
}
