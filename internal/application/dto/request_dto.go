package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRequestRequest body para POST /api/requests.
type CreateRequestRequest struct {
	OfficeID      string          `json:"office_id"`
	MaterialID    string          `json:"material_id"`
	Quantity      int             `json:"quantity"`
	OfficePercent decimal.Decimal `json:"office_percent"`
	Observation   string          `json:"observation"`
}

// PartialApproveRequest body para aprobación parcial.
type PartialApproveRequest struct {
	Quantity int `json:"quantity"`
}

// RejectRequest body para rechazar.
type RejectRequest struct {
	Observation string `json:"observation"`
}

// RegisterReturnRequest body para registrar una devolución.
type RegisterReturnRequest struct {
	Quantity    int    `json:"quantity"`
	Observation string `json:"observation"`
	Condition   string `json:"condition"`
}

// RequestResponse salida de una solicitud.
type RequestResponse struct {
	ID                string          `json:"id"`
	OfficeID          string          `json:"office_id"`
	MaterialID        string          `json:"material_id"`
	Requested         int             `json:"requested"`
	Delivered         int             `json:"delivered"`
	Status            int             `json:"status"`
	StatusLabel       string          `json:"status_label"`
	ApproverID        string          `json:"approver_id,omitempty"`
	ProcessedBy       string          `json:"processed_by,omitempty"`
	OfficePercent     decimal.Decimal `json:"office_percent"`
	TotalValue        decimal.Decimal `json:"total_value"`
	OfficeValue       decimal.Decimal `json:"office_value"`
	HeadquartersValue decimal.Decimal `json:"headquarters_value"`
	Requester         string          `json:"requester"`
	Observation       string          `json:"observation,omitempty"`
	HasNovelty        bool            `json:"has_novelty"`
	CreatedAt         time.Time       `json:"created_at"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	LastDeliveryAt    *time.Time      `json:"last_delivery_at,omitempty"`
}

// RequestListResponse lista paginada de solicitudes.
type RequestListResponse struct {
	Items []RequestResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ReturnInfoResponse saldo devolvible de una solicitud.
type ReturnInfoResponse struct {
	RequestID  string `json:"request_id"`
	Status     int    `json:"status"`
	Delivered  int    `json:"delivered"`
	Returned   int    `json:"returned"`
	Returnable int    `json:"returnable"`
	CanReturn  bool   `json:"can_return"`
	Reason     string `json:"reason,omitempty"`
}

// ReturnResponse salida de una devolución registrada.
type ReturnResponse struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	MaterialID  string    `json:"material_id"`
	Quantity    int       `json:"quantity"`
	ReturnedBy  string    `json:"returned_by"`
	Observation string    `json:"observation,omitempty"`
	Condition   string    `json:"condition"`
	CreatedAt   time.Time `json:"created_at"`
}

// DeliveryResponse fila del historial de entregas.
type DeliveryResponse struct {
	ID          string    `json:"id"`
	Quantity    int       `json:"quantity"`
	DeliveredBy string    `json:"delivered_by"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
