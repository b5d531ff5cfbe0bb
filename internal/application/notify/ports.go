// Package notify define el canal de notificaciones de los flujos. Las notificaciones son de
// mejor esfuerzo: se emiten después de confirmar la transacción y sus fallos solo se registran.
package notify

import (
	"context"
	"time"
)

// Kind tipo de evento; se usa también como routing key.
type Kind string

const (
	RequestCreated           Kind = "solicitud.creada"
	RequestApproved          Kind = "solicitud.aprobada"
	RequestPartiallyApproved Kind = "solicitud.aprobada_parcial"
	RequestRejected          Kind = "solicitud.rechazada"
	RequestDelivered         Kind = "solicitud.entregada"
	RequestReturned          Kind = "solicitud.devolucion"
	NoveltyReported          Kind = "novedad.registrada"
	NoveltyResolved          Kind = "novedad.resuelta"
	AssignmentCreated        Kind = "corporativo.asignacion"
	CorporateReturnRequested Kind = "corporativo.devolucion.solicitada"
	CorporateReturnResolved  Kind = "corporativo.devolucion.resuelta"
	TransferRequested        Kind = "corporativo.traspaso.solicitado"
	TransferResolved         Kind = "corporativo.traspaso.resuelto"
	AssetWrittenOff          Kind = "corporativo.baja"
	LoanCreated              Kind = "prestamo.creado"
	LoanResolved             Kind = "prestamo.resuelto"
	LoanReturned             Kind = "prestamo.devolucion"
)

// Event describe una transición de estado ya confirmada.
type Event struct {
	Kind       Kind              `json:"kind"`
	EntityID   string            `json:"entity_id"`
	OfficeID   string            `json:"office_id,omitempty"`
	Actor      string            `json:"actor,omitempty"`
	Subject    string            `json:"subject"`
	Message    string            `json:"message"`
	Recipients []string          `json:"-"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Notifier adaptador de salida (correo, broker, ...).
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapta una función al puerto Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

// Notify implementa Notifier.
func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
