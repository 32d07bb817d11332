package testutil

import "admin-console/internal/models"

// Depts is a small company: two roots, one nested branch and an orphan.
func Depts() []models.Dept {
	return []models.Dept{
		{ID: 1, ParentID: 0, DeptName: "Headquarters", Sort: 1},
		{ID: 2, ParentID: 1, DeptName: "Engineering", Sort: 1},
		{ID: 3, ParentID: 1, DeptName: "Finance", Sort: 2},
		{ID: 4, ParentID: 2, DeptName: "Platform", Sort: 1},
		{ID: 5, ParentID: 0, DeptName: "Subsidiary", Sort: 2},
		{ID: 6, ParentID: 99, DeptName: "Detached", Sort: 3},
	}
}

// Menus is a system menu with pages, buttons, a link and an iframe page.
func Menus() []models.Menu {
	return []models.Menu{
		{ID: 1, ParentID: 0, Name: "System", Path: "/system", Title: "System", Type: models.MenuTypeDirectory, Icon: "setting", Sort: 1},
		{ID: 2, ParentID: 1, Name: "User", Path: "user", Component: "/system/user", Title: "Users", Type: models.MenuTypePage, IsKeepAlive: true, Sort: 1},
		{ID: 3, ParentID: 2, Title: "Add", Type: models.MenuTypeButton, Perms: "system:user:add"},
		{ID: 4, ParentID: 2, Title: "Edit", Type: models.MenuTypeButton, Perms: "system:user:edit"},
		{ID: 5, ParentID: 2, Title: "Export", Type: models.MenuTypeButton},
		{ID: 6, ParentID: 1, Name: "Role", Path: "role", Component: "/system/role", Title: "Roles", Type: models.MenuTypePage, Sort: 2},
		{ID: 7, ParentID: 0, Name: "Docs", Path: "https://docs.example.com", Title: "Docs", Type: models.MenuTypeLink, Tag: "new", Sort: 2},
		{ID: 8, ParentID: 0, Name: "Grafana", Path: "/grafana", Title: "Grafana", Type: models.MenuTypePage, Target: models.MenuTargetIframe, IsFull: true, IsAffix: true, Active: "/dashboard", IsHide: true, Sort: 3},
	}
}
