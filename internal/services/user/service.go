// Package user wraps the /user endpoints.
package user

import (
	"context"
	"fmt"

	request "admin-console/internal/common/http"
	"admin-console/internal/common/logger"
	"admin-console/internal/models"
)

type Service struct {
	client *request.Client
	logger logger.Logger
}

func NewService(client *request.Client, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		client: client,
		logger: log.WithFields(map[string]interface{}{"service": "user"}),
	}
}

// Login posts credentials as query parameters. The token is not stored; use
// the auth service for a session login.
func (s *Service) Login(ctx context.Context, params models.LoginParams) (*models.LoginResponse, error) {
	return request.Send[*models.LoginResponse](ctx, s.client, request.Request{
		Method: "POST",
		URL:    "/login",
		Params: params,
	})
}

func (s *Service) GetUserInfo(ctx context.Context) (*models.UserInfo, error) {
	return request.GetJSON[*models.UserInfo](ctx, s.client, "/user/info", nil)
}

func (s *Service) GetUserList(ctx context.Context, params models.UserSearchParams) (*models.UserListData, error) {
	return request.GetJSON[*models.UserListData](ctx, s.client, "/user/page", params)
}

func (s *Service) AddUser(ctx context.Context, data models.AddUserParams) error {
	_, err := s.client.Post(ctx, request.Request{URL: "/user", Data: data})
	if err == nil {
		s.logger.Info("User added", map[string]interface{}{"loginName": data.LoginName})
	}
	return err
}

func (s *Service) UpdateUser(ctx context.Context, id int64, data models.UpdateUserParams) error {
	_, err := s.client.Put(ctx, request.Request{URL: userPath(id), Data: data})
	return err
}

// GetRoles returns the roles of the logged in user.
func (s *Service) GetRoles(ctx context.Context) ([]models.RoleListItem, error) {
	return request.GetJSON[[]models.RoleListItem](ctx, s.client, "/user/roles", nil)
}

func (s *Service) GetUserRoles(ctx context.Context, userID int64) ([]models.RoleListItem, error) {
	return request.GetJSON[[]models.RoleListItem](ctx, s.client, userPath(userID)+"/roles", nil)
}

func (s *Service) DeleteUser(ctx context.Context, userID int64) error {
	_, err := s.client.Delete(ctx, request.Request{URL: userPath(userID)})
	if err == nil {
		s.logger.Info("User deleted", map[string]interface{}{"userId": userID})
	}
	return err
}

func (s *Service) EnableUser(ctx context.Context, userID int64) error {
	_, err := s.client.Put(ctx, request.Request{URL: userPath(userID) + "/enable"})
	return err
}

func (s *Service) DisableUser(ctx context.Context, userID int64) error {
	_, err := s.client.Put(ctx, request.Request{URL: userPath(userID) + "/disable"})
	return err
}

func userPath(id int64) string { return fmt.Sprintf("/user/%d", id) }
