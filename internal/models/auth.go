package models

// LoginParams are sent by the user API as query parameters.
type LoginParams struct {
	LoginName string `json:"loginName"`
	Password  string `json:"password"`
}

// LoginForm is the multipart form posted by the auth API. Password is
// expected to be hashed by the caller.
type LoginForm struct {
	LoginName   string
	Password    string
	TenantAlias string
}

type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
