package entity

import "time"

// Delivery fila del historial de entregas de una solicitud.
type Delivery struct {
	ID          string
	RequestID   string
	Quantity    int
	DeliveredBy string
	Notes       string
	CreatedAt   time.Time
}
