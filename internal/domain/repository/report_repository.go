package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// CorporateStock resumen de stock de un producto corporativo.
type CorporateStock struct {
	ProductID string
	Code      string
	Name      string
	Available int
	Assigned  int
	UnitValue decimal.Decimal
}

// OfficeHolding unidades asignadas a una oficina por producto.
type OfficeHolding struct {
	OfficeID    string
	OfficeName  string
	ProductCode string
	ProductName string
	Quantity    int
	UnitValue   decimal.Decimal
}

// ReportRepository consultas read-only para reportes y dashboard.
type ReportRepository interface {
	CorporateStock(ctx context.Context) ([]CorporateStock, error)
	OfficeHoldings(ctx context.Context, officeID string) ([]OfficeHolding, error)
	PendingCorporate(ctx context.Context) (returns, transfers int, err error)
	DeliveredValue(ctx context.Context, officeID string) (office, headquarters decimal.Decimal, err error)
}
