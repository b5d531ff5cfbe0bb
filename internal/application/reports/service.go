// Package reports contiene el resumen del dashboard y los reportes PDF.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// Deps dependencias del servicio de reportes.
type Deps struct {
	Reports    repository.ReportRepository
	Requests   repository.RequestRepository
	Materials  repository.MaterialRepository
	Offices    repository.OfficeRepository
	Deliveries repository.DeliveryRepository
	Returns    repository.ReturnRepository
	Novelties  repository.NoveltyRepository
	Products   repository.CorporateProductRepository
	CorpReturn repository.CorporateReturnRepository
	Transfers  repository.TransferRepository
	PDF        PDFRenderer
}

// Service consultas read-only para el dashboard y los PDF.
type Service struct {
	d   Deps
	now func() time.Time
}

// NewService construye el servicio.
func NewService(d Deps) *Service {
	return &Service{d: d, now: time.Now}
}

// Dashboard arma el resumen. Las consultas son independientes y se lanzan en paralelo;
// el primer error cancela el resto.
func (s *Service) Dashboard(ctx context.Context, scope access.Scope) (*dto.DashboardSummaryDTO, error) {
	out := &dto.DashboardSummaryDTO{
		RequestsByStatus:     map[string]int{},
		DeliveredOfficeValue: decimal.Zero,
		DeliveredHQValue:     decimal.Zero,
		CorporateStockValue:  decimal.Zero,
		LowStockProducts:     []string{},
	}
	if scope.Deny {
		return out, nil
	}
	officeID, err := s.scopeOffice(ctx, scope)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.d.Requests.CountByStatus(gctx, repository.RequestFilter{OfficeID: officeID})
		if err != nil {
			return fmt.Errorf("dashboard: solicitudes: %w", err)
		}
		for st, n := range counts {
			out.RequestsByStatus[st.String()] = n
		}
		out.PendingRequests = counts[entity.RequestPending]
		return nil
	})

	g.Go(func() error {
		if officeID == "" {
			r, t, err := s.d.Reports.PendingCorporate(gctx)
			if err != nil {
				return fmt.Errorf("dashboard: pendientes corporativos: %w", err)
			}
			out.PendingCorporateReturns, out.PendingCorporateTransfers = r, t
			return nil
		}
		rets, err := s.d.CorpReturn.ListByState(gctx, entity.ResolutionPending, officeID)
		if err != nil {
			return fmt.Errorf("dashboard: devoluciones: %w", err)
		}
		trs, err := s.d.Transfers.ListByState(gctx, entity.ResolutionPending, officeID)
		if err != nil {
			return fmt.Errorf("dashboard: traspasos: %w", err)
		}
		out.PendingCorporateReturns, out.PendingCorporateTransfers = len(rets), len(trs)
		return nil
	})

	g.Go(func() error {
		list, err := s.d.Novelties.List(gctx, repository.NoveltyFilter{Status: entity.NoveltyPending, OfficeID: officeID})
		if err != nil {
			return fmt.Errorf("dashboard: novedades: %w", err)
		}
		out.PendingNovelties = len(list)
		return nil
	})

	g.Go(func() error {
		office, hq, err := s.d.Reports.DeliveredValue(gctx, officeID)
		if err != nil {
			return fmt.Errorf("dashboard: valor entregado: %w", err)
		}
		out.DeliveredOfficeValue, out.DeliveredHQValue = office, hq
		return nil
	})

	g.Go(func() error {
		stock, err := s.d.Reports.CorporateStock(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: stock corporativo: %w", err)
		}
		out.CorporateStockValue = stockValue(stock)
		products, err := s.d.Products.List(gctx, true)
		if err != nil {
			return fmt.Errorf("dashboard: productos: %w", err)
		}
		for _, p := range products {
			if p.LowStock() {
				out.LowStockProducts = append(out.LowStockProducts, p.Name)
			}
		}
		sort.Strings(out.LowStockProducts)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CorporateReportPDF reporte de inventario corporativo; con officeID solo esa oficina.
// Un alcance restringido solo puede pedir su propia oficina.
func (s *Service) CorporateReportPDF(ctx context.Context, officeID string, scope access.Scope) ([]byte, error) {
	if scope.Deny {
		return nil, domain.ErrForbidden
	}
	own, err := s.scopeOffice(ctx, scope)
	if err != nil {
		return nil, err
	}
	if own != "" {
		if officeID != "" && officeID != own {
			return nil, domain.ErrForbidden
		}
		officeID = own
	}
	rep := CorporateReport{GeneratedAt: s.now()}
	if officeID != "" {
		o, err := s.d.Offices.GetByID(ctx, officeID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, fmt.Errorf("%w: oficina %s", domain.ErrNotFound, officeID)
		}
		rep.OfficeName = o.Name
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rep.Holdings, err = s.d.Reports.OfficeHoldings(gctx, officeID)
		return err
	})
	if officeID == "" {
		g.Go(func() error {
			var err error
			rep.Stock, err = s.d.Reports.CorporateStock(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if officeID == "" {
		rep.TotalValue = stockValue(rep.Stock)
	} else {
		rep.TotalValue = decimal.Zero
		for _, h := range rep.Holdings {
			rep.TotalValue = rep.TotalValue.Add(h.UnitValue.Mul(decimal.NewFromInt(int64(h.Quantity))))
		}
	}
	return s.d.PDF.CorporateInventory(ctx, rep)
}

// RequestReceiptPDF comprobante de una solicitud con entregas y devoluciones.
func (s *Service) RequestReceiptPDF(ctx context.Context, requestID string, scope access.Scope) ([]byte, error) {
	req, err := s.d.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: solicitud", domain.ErrNotFound)
	}
	office, err := s.d.Offices.GetByID(ctx, req.OfficeID)
	if err != nil {
		return nil, err
	}
	name := ""
	if office != nil {
		name = office.Name
	}
	if !scope.AllowsOffice(req.OfficeID, name) {
		return nil, domain.ErrForbidden
	}
	material, err := s.d.Materials.GetByID(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil || office == nil {
		return nil, fmt.Errorf("%w: material u oficina de la solicitud", domain.ErrNotFound)
	}
	deliveries, err := s.d.Deliveries.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	returns, err := s.d.Returns.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return s.d.PDF.RequestReceipt(ctx, RequestReceipt{
		GeneratedAt: s.now(),
		Request:     req,
		Material:    material,
		Office:      office,
		Deliveries:  deliveries,
		Returns:     returns,
	})
}

func (s *Service) scopeOffice(ctx context.Context, scope access.Scope) (string, error) {
	if scope.OfficeID != "" || scope.OfficeName == "" {
		return scope.OfficeID, nil
	}
	o, err := s.d.Offices.GetByName(ctx, scope.OfficeName)
	if err != nil {
		return "", err
	}
	if o == nil {
		return "", fmt.Errorf("%w: oficina %s", domain.ErrNotFound, scope.OfficeName)
	}
	return o.ID, nil
}

// stockValue valor total del inventario corporativo (libre + asignado).
func stockValue(stock []repository.CorporateStock) decimal.Decimal {
	total := decimal.Zero
	for _, st := range stock {
		total = total.Add(st.UnitValue.Mul(decimal.NewFromInt(int64(st.Available + st.Assigned))))
	}
	return total
}
