package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CorporateProduct activo del inventario corporativo. Available es el stock sin asignar.
type CorporateProduct struct {
	ID          string
	Code        string
	Name        string
	Description string
	Category    string
	Supplier    string
	UnitValue   decimal.Decimal
	Available   int
	MinStock    int
	IsAssetable bool
	CreatedBy   string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock indica si el stock libre está en o por debajo del mínimo.
func (p *CorporateProduct) LowStock() bool {
	return p.MinStock > 0 && p.Available <= p.MinStock
}
