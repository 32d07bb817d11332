// Package auth performs the session login.
package auth

import (
	"context"
	"net/url"

	"admin-console/internal/common/errors"
	request "admin-console/internal/common/http"
	"admin-console/internal/common/logger"
	"admin-console/internal/models"
)

type Service struct {
	client      *request.Client
	logger      logger.Logger
	tenantAlias string
}

// NewService creates the auth service. tenantAlias is used when a login form
// leaves it empty.
func NewService(client *request.Client, log logger.Logger, tenantAlias string) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		client:      client,
		logger:      log.WithFields(map[string]interface{}{"service": "auth"}),
		tenantAlias: tenantAlias,
	}
}

// Login posts the form as multipart/form-data and stores the returned token in
// the client's session.
func (s *Service) Login(ctx context.Context, form models.LoginForm) (*models.LoginResponse, error) {
	tenant := form.TenantAlias
	if tenant == "" {
		tenant = s.tenantAlias
	}

	resp, err := request.Send[*models.LoginResponse](ctx, s.client, request.Request{
		Method: "POST",
		URL:    "/login",
		Form: url.Values{
			"loginName":   {form.LoginName},
			"password":    {form.Password},
			"tenantAlias": {tenant},
		},
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Token == "" {
		return nil, errors.NewInvalidResponseError("login response has no token")
	}

	s.client.Session().SetToken(resp.Token)
	s.logger.Info("Logged in", map[string]interface{}{
		"loginName":   form.LoginName,
		"tenantAlias": tenant,
	})
	return resp, nil
}

// Logout clears the session locally.
func (s *Service) Logout() {
	s.client.Session().Logout()
}
