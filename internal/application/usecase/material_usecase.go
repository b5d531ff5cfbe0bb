package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// MaterialUseCase catálogo de material POP. El stock inicial se fija al crear;
// después solo lo mueven aprobaciones, devoluciones y préstamos.
type MaterialUseCase struct {
	repo    repository.MaterialRepository
	offices repository.OfficeRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository, offices repository.OfficeRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, offices: offices}
}

// Create crea un material.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest, createdBy string) (*dto.MaterialResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre del material es obligatorio", domain.ErrInvalidInput)
	}
	if in.UnitValue.IsNegative() {
		return nil, fmt.Errorf("%w: el valor unitario no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.Available < 0 {
		return nil, fmt.Errorf("%w: la cantidad disponible no puede ser negativa", domain.ErrInvalidInput)
	}
	if err := uc.checkOffice(ctx, in.OfficeID); err != nil {
		return nil, err
	}
	now := time.Now()
	m := &entity.Material{
		ID:        uuid.New().String(),
		Name:      name,
		UnitValue: in.UnitValue,
		Available: in.Available,
		OfficeID:  in.OfficeID,
		ImagePath: in.ImagePath,
		CreatedBy: createdBy,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// GetByID obtiene un material por ID.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return toMaterialResponse(m), nil
}

// Update actualiza datos descriptivos de un material.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: el nombre del material es obligatorio", domain.ErrInvalidInput)
		}
		m.Name = name
	}
	if in.UnitValue != nil {
		if in.UnitValue.IsNegative() {
			return nil, fmt.Errorf("%w: el valor unitario no puede ser negativo", domain.ErrInvalidInput)
		}
		m.UnitValue = *in.UnitValue
	}
	if in.OfficeID != nil {
		if err := uc.checkOffice(ctx, *in.OfficeID); err != nil {
			return nil, err
		}
		m.OfficeID = *in.OfficeID
	}
	if in.ImagePath != nil {
		m.ImagePath = *in.ImagePath
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	m.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// List lista materiales con filtros.
func (uc *MaterialUseCase) List(ctx context.Context, filter repository.MaterialFilter) ([]dto.MaterialResponse, error) {
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return items, nil
}

func (uc *MaterialUseCase) checkOffice(ctx context.Context, officeID string) error {
	if officeID == "" {
		return nil
	}
	o, err := uc.offices.GetByID(ctx, officeID)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("%w: oficina %s", domain.ErrNotFound, officeID)
	}
	return nil
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:         m.ID,
		Name:       m.Name,
		UnitValue:  m.UnitValue,
		Available:  m.Available,
		TotalValue: m.TotalValue(),
		OfficeID:   m.OfficeID,
		ImagePath:  m.ImagePath,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
