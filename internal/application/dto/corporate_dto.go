package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCorporateProductRequest entrada para crear un producto corporativo.
type CreateCorporateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Supplier    string          `json:"supplier"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	Available   int             `json:"available"`
	MinStock    int             `json:"min_stock"`
	IsAssetable bool            `json:"is_assetable"`
}

// UpdateCorporateProductRequest entrada para actualizar un producto corporativo.
type UpdateCorporateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Supplier    *string          `json:"supplier"`
	UnitValue   *decimal.Decimal `json:"unit_value"`
	MinStock    *int             `json:"min_stock"`
}

// CorporateProductResponse salida de un producto corporativo.
type CorporateProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	Available   int             `json:"available"`
	MinStock    int             `json:"min_stock"`
	LowStock    bool            `json:"low_stock"`
	IsAssetable bool            `json:"is_assetable"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AssignRequest body para asignar un producto a una oficina.
type AssignRequest struct {
	OfficeID string `json:"office_id"`
	Quantity int    `json:"quantity"`
}

// CorporateReturnRequest body para solicitar la devolución de una asignación.
type CorporateReturnRequest struct {
	ProductID string `json:"product_id"`
	OfficeID  string `json:"office_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// TransferRequest body para solicitar un traspaso.
type TransferRequest struct {
	ProductID    string `json:"product_id"`
	FromOfficeID string `json:"from_office_id"`
	ToOfficeID   string `json:"to_office_id"`
	Reason       string `json:"reason"`
}

// ResolveRequest body para aprobar/rechazar una devolución o traspaso.
type ResolveRequest struct {
	Notes string `json:"notes"`
}

// WriteOffRequest body para dar de baja una asignación devuelta.
type WriteOffRequest struct {
	ProductID    string `json:"product_id"`
	AssignmentID string `json:"assignment_id"`
	Reason       string `json:"reason"`
}

// AssignmentResponse salida de una asignación.
type AssignmentResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	OfficeID  string    `json:"office_id"`
	Quantity  int       `json:"quantity"`
	State     string    `json:"state"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CorporateReturnResponse salida de una solicitud de devolución.
type CorporateReturnResponse struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"product_id"`
	OfficeID     string     `json:"office_id"`
	AssignmentID string     `json:"assignment_id"`
	Quantity     int        `json:"quantity"`
	Reason       string     `json:"reason,omitempty"`
	State        string     `json:"state"`
	RequestedBy  string     `json:"requested_by"`
	ResolvedBy   string     `json:"resolved_by,omitempty"`
	Resolution   string     `json:"resolution,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// TransferResponse salida de un traspaso.
type TransferResponse struct {
	ID                 string     `json:"id"`
	ProductID          string     `json:"product_id"`
	FromOfficeID       string     `json:"from_office_id"`
	ToOfficeID         string     `json:"to_office_id"`
	SourceAssignmentID string     `json:"source_assignment_id"`
	TargetAssignmentID string     `json:"target_assignment_id,omitempty"`
	Quantity           int        `json:"quantity"`
	Reason             string     `json:"reason,omitempty"`
	State              string     `json:"state"`
	RequestedBy        string     `json:"requested_by"`
	ResolvedBy         string     `json:"resolved_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

// HistoryResponse fila del historial corporativo.
type HistoryResponse struct {
	ID        string    `json:"id"`
	OfficeID  string    `json:"office_id,omitempty"`
	Action    string    `json:"action"`
	Quantity  int       `json:"quantity"`
	ActorName string    `json:"actor"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StockBalanceResponse conservación de stock de un producto: libre + asignado.
type StockBalanceResponse struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Assigned  int    `json:"assigned"`
	Total     int    `json:"total"`
}
