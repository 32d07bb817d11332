package models

import "encoding/json"

// Envelope is the wrapper every backend response arrives in.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// EnableStatus is the role/dept enable flag: "1" enabled, "2" disabled.
type EnableStatus string

const (
	StatusEnabled  EnableStatus = "1"
	StatusDisabled EnableStatus = "2"
)

// SortItem orders a paginated query by one column.
type SortItem struct {
	Column string `json:"column"`
	Asc    bool   `json:"asc"`
}

// PaginatingSearchParams is the common page request, sent as query parameters.
type PaginatingSearchParams struct {
	Current int        `json:"current"`
	Size    int        `json:"size"`
	Sorts   []SortItem `json:"sorts,omitempty"`
}

// Page is the common paginated response body.
type Page[T any] struct {
	Records []T `json:"records"`
	Current int `json:"current"`
	Size    int `json:"size"`
	Total   int `json:"total"`
}
