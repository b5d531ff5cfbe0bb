package entity

import "time"

// Office representa una oficina o sede. La principal actúa como sede central para el reparto de valores.
type Office struct {
	ID          string
	Name        string
	Director    string
	Location    string
	Email       string
	IsPrincipal bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
