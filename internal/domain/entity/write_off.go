package entity

import "time"

// WriteOff baja definitiva de una asignación devuelta.
type WriteOff struct {
	ID           string
	ProductID    string
	AssignmentID string
	Quantity     int
	Reason       string
	WrittenOffBy string
	CreatedAt    time.Time
}
