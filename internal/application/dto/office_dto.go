package dto

import "time"

// CreateOfficeRequest entrada para crear una oficina.
type CreateOfficeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Director    string `json:"director"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	IsPrincipal bool   `json:"is_principal"`
}

// UpdateOfficeRequest entrada para actualizar una oficina.
type UpdateOfficeRequest struct {
	Name        *string `json:"name"`
	Director    *string `json:"director"`
	Location    *string `json:"location"`
	Email       *string `json:"email"`
	IsPrincipal *bool   `json:"is_principal"`
	IsActive    *bool   `json:"is_active"`
}

// OfficeResponse salida de una oficina.
type OfficeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Director    string    `json:"director"`
	Location    string    `json:"location"`
	Email       string    `json:"email"`
	IsPrincipal bool      `json:"is_principal"`
	IsActive    bool      `json:"is_active"`
	Role        string    `json:"role,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
