package entity

import "time"

// ResolutionState estado de una solicitud de devolución o traspaso corporativo.
type ResolutionState string

const (
	ResolutionPending  ResolutionState = "PENDIENTE"
	ResolutionApproved ResolutionState = "APROBADO"
	ResolutionRejected ResolutionState = "RECHAZADO"
)

// Label texto para mensajes sobre devoluciones ("aprobada", "rechazada").
func (s ResolutionState) Label() string {
	switch s {
	case ResolutionApproved:
		return "aprobada"
	case ResolutionRejected:
		return "rechazada"
	default:
		return "pendiente"
	}
}

// CorporateReturn solicitud de devolución de una asignación activa.
type CorporateReturn struct {
	ID           string
	ProductID    string
	OfficeID     string
	AssignmentID string
	Quantity     int
	Reason       string
	State        ResolutionState
	RequestedBy  string
	ResolvedBy   string
	Resolution   string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}
