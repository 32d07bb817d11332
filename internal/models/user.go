package models

// UserStatus is the account state of a console user.
type UserStatus string

const (
	UserStatusNormal   UserStatus = "NORMAL"
	UserStatusDisabled UserStatus = "DISABLED"
)

// UserInfo describes the logged in user.
type UserInfo struct {
	UserID    int64    `json:"userId"`
	LoginName string   `json:"loginName"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	Perms     []string `json:"perms"`
	Avatar    string   `json:"avatar,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
}

type UserListItem struct {
	ID         int64      `json:"id"`
	DeptID     int64      `json:"deptId"`
	LoginName  string     `json:"loginName"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Sex        int        `json:"sex"`
	Avatar     string     `json:"avatar"`
	Status     UserStatus `json:"status"`
	LoginIP    string     `json:"loginIp"`
	LoginDate  string     `json:"loginDate"`
	CreateBy   string     `json:"createBy"`
	CreateTime string     `json:"createTime"`
	UpdateBy   string     `json:"updateBy"`
	UpdateTime string     `json:"updateTime"`
}

type UserListData = Page[UserListItem]

// UserSearchParams filters the user page.
type UserSearchParams struct {
	PaginatingSearchParams
	LoginName string     `json:"loginName,omitempty"`
	Username  string     `json:"username,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	DeptID    int64      `json:"deptId,omitempty"`
	Status    UserStatus `json:"status,omitempty"`
}

type AddUserParams struct {
	DeptID    int64      `json:"deptId"`
	LoginName string     `json:"loginName"`
	Username  string     `json:"username"`
	Password  string     `json:"password"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Sex       int        `json:"sex"`
	Status    UserStatus `json:"status,omitempty"`
	RoleIDs   []int64    `json:"roleIds,omitempty"`
}

type UpdateUserParams struct {
	DeptID   int64      `json:"deptId"`
	Username string     `json:"username"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	Sex      int        `json:"sex"`
	Status   UserStatus `json:"status,omitempty"`
	RoleIDs  []int64    `json:"roleIds,omitempty"`
}
