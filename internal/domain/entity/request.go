package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus estado de una solicitud de material. Los valores se persisten tal cual.
type RequestStatus int

const (
	RequestPending         RequestStatus = 1
	RequestApproved        RequestStatus = 2
	RequestRejected        RequestStatus = 3
	RequestDelivered       RequestStatus = 4
	RequestReturned        RequestStatus = 5
	RequestNoveltyAccepted RequestStatus = 9
	RequestNoveltyRejected RequestStatus = 10
)

var requestStatusNames = map[RequestStatus]string{
	RequestPending:         "pendiente",
	RequestApproved:        "aprobada",
	RequestRejected:        "rechazada",
	RequestDelivered:       "entregada",
	RequestReturned:        "devuelta",
	RequestNoveltyAccepted: "novedad aceptada",
	RequestNoveltyRejected: "novedad rechazada",
}

// requestTransitions tabla de transiciones válidas; los estados sin entrada son terminales.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:   {RequestApproved, RequestRejected},
	RequestApproved:  {RequestDelivered, RequestReturned, RequestNoveltyAccepted, RequestNoveltyRejected},
	RequestDelivered: {RequestReturned, RequestNoveltyAccepted, RequestNoveltyRejected},
}

func (s RequestStatus) String() string {
	if n, ok := requestStatusNames[s]; ok {
		return n
	}
	return "desconocido"
}

// Valid indica si el código corresponde a un estado conocido.
func (s RequestStatus) Valid() bool {
	_, ok := requestStatusNames[s]
	return ok
}

// CanTransition indica si el paso s -> next está permitido.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	for _, t := range requestTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Returnable indica si desde este estado se aceptan devoluciones.
func (s RequestStatus) Returnable() bool {
	return s == RequestApproved || s == RequestDelivered
}

// Terminal indica que no hay transiciones de salida.
func (s RequestStatus) Terminal() bool {
	return len(requestTransitions[s]) == 0
}

// RequestStatuses devuelve los estados conocidos en orden de código.
func RequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestPending, RequestApproved, RequestRejected, RequestDelivered,
		RequestReturned, RequestNoveltyAccepted, RequestNoveltyRejected,
	}
}

// MaterialRequest es una solicitud de material de una oficina.
// Version se incrementa en cada escritura y se usa para control de concurrencia optimista.
type MaterialRequest struct {
	ID                string
	OfficeID          string
	MaterialID        string
	Requested         int
	Delivered         int
	Status            RequestStatus
	ApproverID        string
	ProcessedBy       string // usuario que aprobó/rechazó
	OfficePercent     decimal.Decimal
	TotalValue        decimal.Decimal
	OfficeValue       decimal.Decimal
	HeadquartersValue decimal.Decimal
	Requester         string
	Observation       string
	HasNovelty        bool
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ApprovedAt        *time.Time
	LastDeliveryAt    *time.Time
}
