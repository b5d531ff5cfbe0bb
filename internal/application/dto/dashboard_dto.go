package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	RequestsByStatus map[string]int `json:"requests_by_status"`
	PendingRequests  int            `json:"pending_requests"`

	PendingCorporateReturns   int `json:"pending_corporate_returns"`
	PendingCorporateTransfers int `json:"pending_corporate_transfers"`

	PendingNovelties int `json:"pending_novelties"`

	// Valor entregado repartido entre oficina y sede principal.
	DeliveredOfficeValue decimal.Decimal `json:"delivered_office_value"`
	DeliveredHQValue     decimal.Decimal `json:"delivered_hq_value"`

	CorporateStockValue decimal.Decimal `json:"corporate_stock_value"`
	LowStockProducts    []string        `json:"low_stock_products"`
}
