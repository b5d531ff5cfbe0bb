package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reporte sobre el store en memoria.
type ReportRepo struct{ s *Store }

// NewReportRepository construye el repositorio.
func NewReportRepository(s *Store) *ReportRepo { return &ReportRepo{s: s} }

func (r *ReportRepo) CorporateStock(_ context.Context) ([]repository.CorporateStock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]repository.CorporateStock, 0, len(r.s.d.products))
	for _, p := range r.s.d.products {
		if !p.IsActive {
			continue
		}
		cs := repository.CorporateStock{
			ProductID: p.ID, Code: p.Code, Name: p.Name,
			Available: p.Available, UnitValue: p.UnitValue,
		}
		for _, a := range r.s.d.assignments {
			if a.ProductID == p.ID && a.Holding() {
				cs.Assigned += a.Quantity
			}
		}
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *ReportRepo) OfficeHoldings(_ context.Context, officeID string) ([]repository.OfficeHolding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []repository.OfficeHolding
	for _, a := range r.s.d.assignments {
		if !a.Holding() || (officeID != "" && a.OfficeID != officeID) {
			continue
		}
		p := r.s.d.products[a.ProductID]
		o := r.s.d.offices[a.OfficeID]
		out = append(out, repository.OfficeHolding{
			OfficeID: a.OfficeID, OfficeName: o.Name,
			ProductCode: p.Code, ProductName: p.Name,
			Quantity: a.Quantity, UnitValue: p.UnitValue,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OfficeName != out[j].OfficeName {
			return out[i].OfficeName < out[j].OfficeName
		}
		return out[i].ProductCode < out[j].ProductCode
	})
	return out, nil
}

func (r *ReportRepo) PendingCorporate(_ context.Context) (int, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	returns, transfers := 0, 0
	for _, x := range r.s.d.corpReturns {
		if x.State == entity.ResolutionPending {
			returns++
		}
	}
	for _, t := range r.s.d.transfers {
		if t.State == entity.ResolutionPending {
			transfers++
		}
	}
	return returns, transfers, nil
}

func (r *ReportRepo) DeliveredValue(_ context.Context, officeID string) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	office, hq := decimal.Zero, decimal.Zero
	for _, req := range r.s.d.requests {
		if req.Delivered == 0 || (officeID != "" && req.OfficeID != officeID) {
			continue
		}
		office = office.Add(req.OfficeValue)
		hq = hq.Add(req.HeadquartersValue)
	}
	return office, hq, nil
}
