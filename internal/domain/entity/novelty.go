package entity

import "time"

// NoveltyStatus estado de una novedad.
type NoveltyStatus string

const (
	NoveltyPending  NoveltyStatus = "pendiente"
	NoveltyAccepted NoveltyStatus = "aceptada"
	NoveltyRejected NoveltyStatus = "rechazada"
)

// Resolved indica si la novedad ya fue gestionada.
func (s NoveltyStatus) Resolved() bool {
	return s == NoveltyAccepted || s == NoveltyRejected
}

// RequestOutcome estado al que pasa la solicitud cuando la novedad se resuelve.
func (s NoveltyStatus) RequestOutcome() RequestStatus {
	if s == NoveltyAccepted {
		return RequestNoveltyAccepted
	}
	return RequestNoveltyRejected
}

// Novelty reporte de incidente (daño, pérdida, faltante) sobre una solicitud.
type Novelty struct {
	ID          string
	RequestID   string
	Type        string
	Description string
	AffectedQty int
	ReportedBy  string
	ImagePath   string
	Status      NoveltyStatus
	ResolvedBy  string
	Resolution  string
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}
