package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest entrada para crear un material.
type CreateMaterialRequest struct {
	Name      string          `json:"name" validate:"required,min=1,max=200"`
	UnitValue decimal.Decimal `json:"unit_value"`
	Available int             `json:"available"`
	OfficeID  string          `json:"office_id"`
	ImagePath string          `json:"image_path"`
}

// UpdateMaterialRequest entrada para actualizar un material. El stock solo cambia por flujos.
type UpdateMaterialRequest struct {
	Name      *string          `json:"name"`
	UnitValue *decimal.Decimal `json:"unit_value"`
	OfficeID  *string          `json:"office_id"`
	ImagePath *string          `json:"image_path"`
	IsActive  *bool            `json:"is_active"`
}

// MaterialResponse salida de un material.
type MaterialResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	UnitValue  decimal.Decimal `json:"unit_value"`
	Available  int             `json:"available"`
	TotalValue decimal.Decimal `json:"total_value"`
	OfficeID   string          `json:"office_id,omitempty"`
	ImagePath  string          `json:"image_path,omitempty"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MaterialStatsResponse conteo de solicitudes de un material.
type MaterialStatsResponse struct {
	MaterialID  string         `json:"material_id"`
	ByStatus    map[string]int `json:"by_status"`
	Total       int            `json:"total"`
	Delivered   int            `json:"delivered_units"`
	WithNovelty int            `json:"with_novelty"`
}
