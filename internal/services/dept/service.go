// Package dept fetches departments and assembles them into a tree.
package dept

import (
	"context"

	request "admin-console/internal/common/http"
	"admin-console/internal/common/logger"
	"admin-console/internal/common/metrics"
	"admin-console/internal/models"
	"admin-console/internal/tree"
)

const treeLabel = "dept"

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
		logger: log.WithFields(map[string]interface{}{"service": "dept"}),
	}
}

// GetDeptTree loads /dept/list and returns it as a forest.
func (s *Service) GetDeptTree(ctx context.Context) ([]*models.DeptTreeNode, error) {
	depts, err := request.GetJSON[[]models.Dept](ctx, s.client, "/dept/list", nil)
	if err != nil {
		return nil, err
	}

	if dups := tree.Duplicates(depts, deptKey); len(dups) > 0 {
		metrics.TreeDuplicateIDs.WithLabelValues(treeLabel).Add(float64(len(dups)))
		s.logger.Warn("Duplicate department ids, keeping the last record", map[string]interface{}{
			"ids": dups,
		})
	}

	forest := tree.Build(depts, deptKey)
	roots := toDeptNodes(forest)
	metrics.TreeNodes.WithLabelValues(treeLabel).Set(float64(tree.Count(forest)))
	s.logger.Debug("Department tree built", map[string]interface{}{
		"records": len(depts),
		"roots":   len(roots),
	})
	return roots, nil
}

// BuildTree links departments by parentId. Departments whose parent is 0,
// themselves or missing from the list become roots.
func BuildTree(depts []models.Dept) []*models.DeptTreeNode {
	return toDeptNodes(tree.Build(depts, deptKey))
}

func toDeptNodes(forest []*tree.Node[models.Dept]) []*models.DeptTreeNode {
	return tree.Map(forest, func(d models.Dept, children []*models.DeptTreeNode) *models.DeptTreeNode {
		return &models.DeptTreeNode{Dept: d, Children: children}
	})
}

func deptKey(d models.Dept) (int64, int64) { return d.ID, d.ParentID }
