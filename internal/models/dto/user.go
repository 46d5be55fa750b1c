package dto

type CreateUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles" validate:"required,min=1"`
}

type UpdateUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Roles    []string `json:"roles" validate:"required,min=1"`
	Active   *bool    `json:"active" validate:"required"`
	Password string   `json:"password,omitempty"`
}
