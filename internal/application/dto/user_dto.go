package dto

import (
	"time"

	"github.com/jhoicas/materiales-api/internal/domain/access"
)

// CreateUserRequest entrada para crear un usuario local (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Username   string `json:"username" validate:"required"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role" validate:"required"`
	OfficeID   string `json:"office_id"`
	ApproverID string `json:"approver_id"`
}

// UpdateUserRequest entrada para actualizar un usuario.
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
	OfficeID   *string `json:"office_id"`
	ApproverID *string `json:"approver_id"`
	IsActive   *bool   `json:"is_active"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	OfficeID    string    `json:"office_id,omitempty"`
	IsDirectory bool      `json:"is_directory"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token       string             `json:"token"`
	ExpiresIn   int                `json:"expires_in"` // segundos
	User        UserResponse       `json:"user"`
	Permissions access.Permissions `json:"permissions"`
}

// SessionResponse usuario autenticado y sus permisos efectivos (GET /auth/me).
type SessionResponse struct {
	User        UserResponse       `json:"user"`
	OfficeName  string             `json:"office_name,omitempty"`
	Permissions access.Permissions `json:"permissions"`
}

// ApproverResponse salida de un aprobador.
type ApproverResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	IsActive bool   `json:"is_active"`
}
