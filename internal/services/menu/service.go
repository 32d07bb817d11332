// Package menu turns the flat backend menu list into the console's route tree.
package menu

import (
	"context"

	request "admin-console/internal/common/http"
	"admin-console/internal/common/logger"
	"admin-console/internal/common/metrics"
	"admin-console/internal/models"
	"admin-console/internal/tree"
)

const treeLabel = "menu"

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
		logger: log.WithFields(map[string]interface{}{"service": "menu"}),
	}
}

// GetMenuList loads /menu and converts it to routes.
func (s *Service) GetMenuList(ctx context.Context) (*models.MenuResponse, error) {
	menus, err := request.GetJSON[[]models.Menu](ctx, s.client, "/menu", nil)
	if err != nil {
		return nil, err
	}

	if dups := tree.Duplicates(menus, menuKey); len(dups) > 0 {
		metrics.TreeDuplicateIDs.WithLabelValues(treeLabel).Add(float64(len(dups)))
		s.logger.Warn("Duplicate menu ids, keeping the last record", map[string]interface{}{
			"ids": dups,
		})
	}

	routes := BuildRoutes(menus)
	metrics.TreeNodes.WithLabelValues(treeLabel).Set(float64(countRoutes(routes)))
	s.logger.Debug("Menu routes built", map[string]interface{}{
		"records": len(menus),
		"roots":   len(routes),
	})
	return &models.MenuResponse{MenuList: routes}, nil
}

// BuildRoutes builds the route forest. Buttons (type F) never become routes;
// those with perms are attached to their parent's authList instead. A menu
// whose parent is a button has a parent in the list but no route to hang
// from, so it is dropped together with its subtree.
func BuildRoutes(menus []models.Menu) []*models.Route {
	pages := make([]models.Menu, 0, len(menus))
	buttons := make([]models.Menu, 0)
	pageIDs := make(map[int64]struct{}, len(menus))
	buttonIDs := make(map[int64]struct{})
	for _, m := range menus {
		if m.IsButton() {
			buttons = append(buttons, m)
			buttonIDs[m.ID] = struct{}{}
			continue
		}
		pages = append(pages, m)
		pageIDs[m.ID] = struct{}{}
	}
	byParent := tree.Index(buttons, menuKey)

	dropped := droppedUnderButtons(pages, pageIDs, buttonIDs)
	kept := make([]models.Menu, 0, len(pages))
	for _, m := range pages {
		if _, ok := dropped[m.ID]; !ok {
			kept = append(kept, m)
		}
	}

	return tree.Map(tree.Build(kept, menuKey), func(m models.Menu, children []*models.Route) *models.Route {
		route := ToRoute(m)
		route.Meta.AuthList = authList(byParent[m.ID])
		route.Children = children
		return route
	})
}

// droppedUnderButtons returns the ids of pages that hang below a button,
// directly or through other dropped pages.
func droppedUnderButtons(pages []models.Menu, pageIDs, buttonIDs map[int64]struct{}) map[int64]struct{} {
	dropped := make(map[int64]struct{})
	for changed := true; changed; {
		changed = false
		for _, m := range pages {
			if _, ok := dropped[m.ID]; ok || m.ParentID == m.ID {
				continue
			}
			_, parentIsPage := pageIDs[m.ParentID]
			_, parentIsButton := buttonIDs[m.ParentID]
			_, parentDropped := dropped[m.ParentID]
			if parentDropped || (parentIsButton && !parentIsPage) {
				dropped[m.ID] = struct{}{}
				changed = true
			}
		}
	}
	return dropped
}

// ToRoute maps one non-button menu record to a childless route.
func ToRoute(m models.Menu) *models.Route {
	meta := models.RouteMeta{
		Title:         m.Title,
		Icon:          m.Icon,
		IsHide:        m.IsHide,
		KeepAlive:     m.IsKeepAlive,
		IsFullPage:    m.IsFull,
		FixedTab:      m.IsAffix,
		IsIframe:      m.Target == models.MenuTargetIframe,
		ActivePath:    m.Active,
		ShowTextBadge: m.Tag,
		AuthList:      []models.AuthItem{},
	}
	if m.Type == models.MenuTypeLink {
		meta.Link = m.Path
	}
	return &models.Route{
		ID:        m.ID,
		Name:      m.Name,
		Path:      m.Path,
		Redirect:  m.Redirect,
		Component: m.Component,
		Meta:      meta,
		Children:  []*models.Route{},
	}
}

func authList(buttons []models.Menu) []models.AuthItem {
	out := make([]models.AuthItem, 0, len(buttons))
	for _, b := range buttons {
		if b.Perms == "" {
			continue
		}
		out = append(out, models.AuthItem{Title: b.Title, AuthMark: b.Perms})
	}
	return out
}

func countRoutes(routes []*models.Route) int {
	n := 0
	for _, r := range routes {
		n += 1 + countRoutes(r.Children)
	}
	return n
}

func menuKey(m models.Menu) (int64, int64) { return m.ID, m.ParentID }
