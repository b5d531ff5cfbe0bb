package entity

import "time"

// Acciones registradas en el historial de inventario corporativo.
const (
	HistoryAssign           = "ASIGNAR"
	HistoryReturnRequested  = "SOLICITUD_DEVOLUCION"
	HistoryReturnApproved   = "DEVOLUCION_APROBADA"
	HistoryReturnRejected   = "DEVOLUCION_RECHAZADA"
	HistoryTransferRequest  = "SOLICITUD_TRASPASO"
	HistoryTransferApproved = "TRASPASO_APROBADO"
	HistoryTransferRejected = "TRASPASO_RECHAZADO"
	HistoryWriteOff         = "BAJA"
	HistoryDeactivate       = "DESACTIVAR"
)

// AssignmentHistory fila de auditoría de movimientos corporativos.
type AssignmentHistory struct {
	ID        string
	ProductID string
	OfficeID  string
	Action    string
	Quantity  int
	ActorName string
	Notes     string
	CreatedAt time.Time
}
