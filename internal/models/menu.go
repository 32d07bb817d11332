package models

// Menu record types.
const (
	MenuTypeDirectory = "M"
	MenuTypePage      = "C"
	MenuTypeButton    = "F"
	MenuTypeLink      = "L"
)

// MenuTargetIframe marks a menu rendered inside an iframe.
const MenuTargetIframe = "N"

// Menu is one flat record from /menu.
type Menu struct {
	ID          int64  `json:"id"`
	ParentID    int64  `json:"parentId"`
	Name        string `json:"name,omitempty"`
	Redirect    string `json:"redirect,omitempty"`
	Component   string `json:"component,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Sort        int    `json:"sort"`
	Title       string `json:"title"`
	Target      string `json:"target,omitempty"`
	Active      string `json:"active,omitempty"`
	Type        string `json:"type,omitempty"`
	Path        string `json:"path,omitempty"`
	IsHide      bool   `json:"isHide,omitempty"`
	IsFull      bool   `json:"isFull,omitempty"`
	IsAffix     bool   `json:"isAffix,omitempty"`
	IsKeepAlive bool   `json:"isKeepAlive,omitempty"`
	Tag         string `json:"tag,omitempty"`
	Perms       string `json:"perms,omitempty"`
}

func (m Menu) IsButton() bool { return m.Type == MenuTypeButton }

// AuthItem is a button permission attached to a route.
type AuthItem struct {
	Title    string `json:"title"`
	AuthMark string `json:"authMark"`
}

// RouteMeta carries the display attributes of a route.
type RouteMeta struct {
	Title         string     `json:"title"`
	Icon          string     `json:"icon,omitempty"`
	IsHide        bool       `json:"isHide,omitempty"`
	KeepAlive     bool       `json:"keepAlive,omitempty"`
	IsFullPage    bool       `json:"isFullPage,omitempty"`
	FixedTab      bool       `json:"fixedTab,omitempty"`
	Link          string     `json:"link,omitempty"`
	IsIframe      bool       `json:"isIframe"`
	ActivePath    string     `json:"activePath,omitempty"`
	ShowTextBadge string     `json:"showTextBadge,omitempty"`
	AuthList      []AuthItem `json:"authList"`
}

// Route is a node of the navigation tree built from menus.
type Route struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Path      string    `json:"path"`
	Redirect  string    `json:"redirect,omitempty"`
	Component string    `json:"component,omitempty"`
	Meta      RouteMeta `json:"meta"`
	Children  []*Route  `json:"children"`
}

type MenuResponse struct {
	MenuList []*Route `json:"menuList"`
}
