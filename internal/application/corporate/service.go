// Package corporate implementa el inventario corporativo: catálogo de activos, asignaciones a
// oficinas, devoluciones, traspasos entre oficinas y bajas.
//
// Todo cambio de stock o de estado de una asignación ocurre en una sola transacción junto con su
// fila de historial. El stock libre del producto más lo asignado activo se conserva.
package corporate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

const codeAttempts = 5

// Deps dependencias del servicio corporativo.
type Deps struct {
	Tx          TxRunner
	Products    repository.CorporateProductRepository
	Assignments repository.AssignmentRepository
	Returns     repository.CorporateReturnRepository
	Transfers   repository.TransferRepository
	WriteOffs   repository.WriteOffRepository
	History     repository.HistoryRepository
	Offices     repository.OfficeRepository
	Users       repository.UserRepository
	Notifier    *notify.Dispatcher
}

// Service casos de uso del inventario corporativo.
type Service struct {
	tx          TxRunner
	products    repository.CorporateProductRepository
	assignments repository.AssignmentRepository
	returns     repository.CorporateReturnRepository
	transfers   repository.TransferRepository
	writeOffs   repository.WriteOffRepository
	history     repository.HistoryRepository
	offices     repository.OfficeRepository
	users       repository.UserRepository
	notifier    *notify.Dispatcher
	now         func() time.Time
}

// NewService construye el servicio.
func NewService(d Deps) *Service {
	return &Service{
		tx:          d.Tx,
		products:    d.Products,
		assignments: d.Assignments,
		returns:     d.Returns,
		transfers:   d.Transfers,
		writeOffs:   d.WriteOffs,
		history:     d.History,
		offices:     d.Offices,
		users:       d.Users,
		notifier:    d.Notifier,
		now:         time.Now,
	}
}

// CreateProduct da de alta un producto con código único CORP-XXXXXXXX.
func (s *Service) CreateProduct(ctx context.Context, in dto.CreateCorporateProductRequest, actor string) (*dto.CorporateProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.Available < 0 || in.MinStock < 0 || in.UnitValue.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: cantidades y valor deben ser positivos", domain.ErrInvalidInput)
	}
	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := &entity.CorporateProduct{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        name,
		Description: in.Description,
		Category:    in.Category,
		Supplier:    in.Supplier,
		UnitValue:   in.UnitValue,
		Available:   in.Available,
		MinStock:    in.MinStock,
		IsAssetable: in.IsAssetable,
		CreatedBy:   actor,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := NewProductCode()
		existing, err := s.products.GetByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: no se pudo generar un código único", domain.ErrDuplicate)
}

// NewProductCode genera un código CORP- seguido de 8 caracteres hexadecimales en mayúscula.
func NewProductCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "CORP-" + strings.ToUpper(raw[:8])
}

// UpdateProduct actualiza datos descriptivos. El stock solo cambia por los flujos.
func (s *Service) UpdateProduct(ctx context.Context, id string, in dto.UpdateCorporateProductRequest) (*dto.CorporateProductResponse, error) {
	var out *entity.CorporateProduct
	err := s.run(ctx, func(t *tx) error {
		p, err := t.products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto", domain.ErrNotFound)
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
			}
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Category != nil {
			p.Category = *in.Category
		}
		if in.Supplier != nil {
			p.Supplier = *in.Supplier
		}
		if in.UnitValue != nil {
			if in.UnitValue.LessThan(decimal.Zero) {
				return fmt.Errorf("%w: valor unitario", domain.ErrInvalidInput)
			}
			p.UnitValue = *in.UnitValue
		}
		if in.MinStock != nil {
			if *in.MinStock < 0 {
				return fmt.Errorf("%w: stock mínimo", domain.ErrInvalidInput)
			}
			p.MinStock = *in.MinStock
		}
		p.UpdatedAt = s.now()
		if err := t.products.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(out), nil
}

// DeactivateProduct baja lógica del producto con su fila de historial.
func (s *Service) DeactivateProduct(ctx context.Context, id, actor string) error {
	return s.run(ctx, func(t *tx) error {
		p, err := t.products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto", domain.ErrNotFound)
		}
		if !p.IsActive {
			return nil
		}
		now := s.now()
		p.IsActive = false
		p.UpdatedAt = now
		if err := t.products.Update(ctx, p); err != nil {
			return err
		}
		return t.history.Create(ctx, s.historyRow(p.ID, "", entity.HistoryDeactivate, 0, actor, "Producto desactivado", now))
	})
}

// GetProduct devuelve un producto por ID.
func (s *Service) GetProduct(ctx context.Context, id string) (*dto.CorporateProductResponse, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto", domain.ErrNotFound)
	}
	return toProductResponse(p), nil
}

func (s *Service) historyRow(productID, officeID, action string, qty int, actor, notes string, at time.Time) *entity.AssignmentHistory {
	return &entity.AssignmentHistory{
		ID:        uuid.New().String(),
		ProductID: productID,
		OfficeID:  officeID,
		Action:    action,
		Quantity:  qty,
		ActorName: actor,
		Notes:     notes,
		CreatedAt: at,
	}
}

func (s *Service) office(ctx context.Context, id string) (*entity.Office, error) {
	o, err := s.offices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: oficina", domain.ErrNotFound)
	}
	return o, nil
}

func (s *Service) notify(ctx context.Context, kind notify.Kind, entityID, actor, subject, msg string, offices ...*entity.Office) {
	if !s.notifier.Enabled() {
		return
	}
	ev := notify.Event{
		Kind:     kind,
		EntityID: entityID,
		Actor:    actor,
		Subject:  subject,
		Message:  msg,
	}
	for _, o := range offices {
		if o == nil {
			continue
		}
		if ev.OfficeID == "" {
			ev.OfficeID = o.ID
		}
		if o.Email != "" {
			ev.Recipients = append(ev.Recipients, o.Email)
		}
	}
	s.notifier.Dispatch(ctx, ev)
}
