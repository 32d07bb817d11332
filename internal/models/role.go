package models

type RoleListItem struct {
	ID         int64        `json:"id"`
	RoleName   string       `json:"roleName"`
	RoleKey    string       `json:"roleKey"`
	RoleSort   int          `json:"roleSort"`
	Status     EnableStatus `json:"status"`
	Remark     string       `json:"remark,omitempty"`
	CreateTime string       `json:"createTime,omitempty"`
}

type RolePageParams struct {
	PaginatingSearchParams
	RoleName string       `json:"roleName,omitempty"`
	RoleKey  string       `json:"roleKey,omitempty"`
	Status   EnableStatus `json:"status,omitempty"`
}

type RolePageData = Page[RoleListItem]

type AddRoleParams struct {
	RoleName string       `json:"roleName"`
	RoleKey  string       `json:"roleKey"`
	RoleSort int          `json:"roleSort"`
	Status   EnableStatus `json:"status,omitempty"`
	Remark   string       `json:"remark,omitempty"`
	MenuIDs  []int64      `json:"menuIds,omitempty"`
}

type UpdateRoleParams = AddRoleParams
