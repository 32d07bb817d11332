package models

// Dept is one flat department record from /dept/list. ParentID 0 marks a root.
type Dept struct {
	ID         int64        `json:"id"`
	ParentID   int64        `json:"parentId"`
	DeptName   string       `json:"deptName"`
	Sort       int          `json:"sort"`
	Leader     string       `json:"leader,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Email      string       `json:"email,omitempty"`
	Status     EnableStatus `json:"status,omitempty"`
	CreateTime string       `json:"createTime,omitempty"`
}

// DeptTreeNode is a department with its sub-departments. Children is never nil.
type DeptTreeNode struct {
	Dept
	Children []*DeptTreeNode `json:"children"`
}
