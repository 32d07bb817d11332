// Package role wraps the /role endpoints.
package role

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
		logger: log.WithFields(map[string]interface{}{"service": "role"}),
	}
}

func (s *Service) GetRolePage(ctx context.Context, params models.RolePageParams) (*models.RolePageData, error) {
	return request.GetJSON[*models.RolePageData](ctx, s.client, "/role/page", params)
}

// AddRole creates a role and returns its id.
func (s *Service) AddRole(ctx context.Context, data models.AddRoleParams) (int64, error) {
	id, err := request.PostJSON[int64](ctx, s.client, "/role", data)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Role added", map[string]interface{}{"roleId": id, "roleKey": data.RoleKey})
	return id, nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, data models.UpdateRoleParams) error {
	_, err := s.client.Put(ctx, request.Request{URL: rolePath(id), Data: data})
	return err
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	_, err := s.client.Delete(ctx, request.Request{URL: rolePath(id)})
	return err
}

func (s *Service) EnableRole(ctx context.Context, id int64) error {
	_, err := s.client.Put(ctx, request.Request{URL: rolePath(id) + "/enable"})
	return err
}

func (s *Service) DisableRole(ctx context.Context, id int64) error {
	_, err := s.client.Put(ctx, request.Request{URL: rolePath(id) + "/disable"})
	return err
}

func (s *Service) GetRoleDetail(ctx context.Context, id int64) (*models.RoleListItem, error) {
	return request.GetJSON[*models.RoleListItem](ctx, s.client, rolePath(id), nil)
}

func rolePath(id int64) string { return fmt.Sprintf("/role/%d", id) }
