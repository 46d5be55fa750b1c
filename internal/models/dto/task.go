package dto

import "github.com/hongminglow/tasks-be/internal/models"

type CreateTaskRequest struct {
	Owner       string `json:"owner" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// UpdateTaskRequest overwrites every mutable field. Completed is a pointer so
// an absent value can be told apart from false.
type UpdateTaskRequest struct {
	Owner       string `json:"owner" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Completed   *bool  `json:"completed" validate:"required"`
}

type TaskResponse struct {
	Message string      `json:"message"`
	Task    models.Task `json:"task"`
}
