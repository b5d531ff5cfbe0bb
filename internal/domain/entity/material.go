package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material es un artículo POP con stock propio. Available solo cambia por aprobaciones y devoluciones.
type Material struct {
	ID        string
	Name      string
	UnitValue decimal.Decimal
	Available int
	OfficeID  string // oficina que administra el material (opcional)
	ImagePath string
	CreatedBy string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalValue valor del stock disponible.
func (m *Material) TotalValue() decimal.Decimal {
	return m.UnitValue.Mul(decimal.NewFromInt(int64(m.Available)))
}
