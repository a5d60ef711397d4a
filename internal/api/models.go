package api

import (
	"github.com/phrazzld/taskapp/internal/domain"
)

// CreateTaskRequest is the payload of POST /tasks. Any client-supplied
// owner is ignored; the owner is always the requester.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// RegisterRequest is the payload of POST /users.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Age      int    `json:"age"      validate:"gte=0"`
}

// LoginRequest is the payload of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by registration and login.
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}
