package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes y dashboard.
type ReportRepo struct {
	db Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(db Querier) *ReportRepo {
	return &ReportRepo{db: db}
}

// CorporateStock stock disponible y asignado por producto activo.
func (r *ReportRepo) CorporateStock(ctx context.Context) ([]repository.CorporateStock, error) {
	query := `
		SELECT p.id, p.code, p.name, p.available,
			COALESCE(SUM(a.quantity) FILTER (WHERE a.is_active AND a.state = $1), 0),
			p.unit_value
		FROM corporate_products p
		LEFT JOIN assignments a ON a.product_id = p.id
		WHERE p.is_active
		GROUP BY p.id
		ORDER BY p.code`
	rows, err := r.db.Query(ctx, query, string(entity.AssignmentAssigned))
	if err != nil {
		return nil, fmt.Errorf("corporate stock: %w", err)
	}
	defer rows.Close()
	var out []repository.CorporateStock
	for rows.Next() {
		var cs repository.CorporateStock
		if err := rows.Scan(&cs.ProductID, &cs.Code, &cs.Name, &cs.Available, &cs.Assigned, &cs.UnitValue); err != nil {
			return nil, fmt.Errorf("scan corporate stock: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// OfficeHoldings unidades asignadas por oficina; officeID vacío = todas.
func (r *ReportRepo) OfficeHoldings(ctx context.Context, officeID string) ([]repository.OfficeHolding, error) {
	var w filter
	w.conds = append(w.conds, "a.is_active")
	w.add("a.state = $%d", string(entity.AssignmentAssigned))
	if officeID != "" {
		w.add("a.office_id = $%d", officeID)
	}
	query := `
		SELECT a.office_id, o.name, p.code, p.name, a.quantity, p.unit_value
		FROM assignments a
		JOIN offices o ON o.id = a.office_id
		JOIN corporate_products p ON p.id = a.product_id` + w.where() + `
		ORDER BY o.name, p.code`
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("office holdings: %w", err)
	}
	defer rows.Close()
	var out []repository.OfficeHolding
	for rows.Next() {
		var h repository.OfficeHolding
		if err := rows.Scan(&h.OfficeID, &h.OfficeName, &h.ProductCode, &h.ProductName, &h.Quantity, &h.UnitValue); err != nil {
			return nil, fmt.Errorf("scan office holding: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// PendingCorporate cuenta devoluciones y traspasos pendientes.
func (r *ReportRepo) PendingCorporate(ctx context.Context) (int, int, error) {
	var returns, transfers int
	query := `
		SELECT (SELECT count(*) FROM corporate_returns WHERE state = $1),
			(SELECT count(*) FROM transfers WHERE state = $1)`
	if err := r.db.QueryRow(ctx, query, string(entity.ResolutionPending)).Scan(&returns, &transfers); err != nil {
		return 0, 0, fmt.Errorf("pending corporate: %w", err)
	}
	return returns, transfers, nil
}

// DeliveredValue suma los valores de oficina y sede de las solicitudes con entregas.
func (r *ReportRepo) DeliveredValue(ctx context.Context, officeID string) (decimal.Decimal, decimal.Decimal, error) {
	var w filter
	w.conds = append(w.conds, "delivered > 0")
	if officeID != "" {
		w.add("office_id = $%d", officeID)
	}
	office, hq := decimal.Zero, decimal.Zero
	query := `SELECT COALESCE(SUM(office_value), 0), COALESCE(SUM(headquarters_value), 0) FROM material_requests` + w.where()
	if err := r.db.QueryRow(ctx, query, w.args...).Scan(&office, &hq); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("delivered value: %w", err)
	}
	return office, hq, nil
}
