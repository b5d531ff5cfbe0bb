package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// OfficeUseCase casos de uso CRUD para oficinas.
type OfficeUseCase struct {
	repo repository.OfficeRepository
}

// NewOfficeUseCase construye el caso de uso.
func NewOfficeUseCase(repo repository.OfficeRepository) *OfficeUseCase {
	return &OfficeUseCase{repo: repo}
}

// Create crea una oficina. Si se marca como principal, las demás dejan de serlo.
func (uc *OfficeUseCase) Create(ctx context.Context, in dto.CreateOfficeRequest) (*dto.OfficeResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la oficina es obligatorio", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe la oficina %q", domain.ErrDuplicate, name)
	}
	now := time.Now()
	office := &entity.Office{
		ID:          uuid.New().String(),
		Name:        name,
		Director:    strings.TrimSpace(in.Director),
		Location:    strings.TrimSpace(in.Location),
		Email:       strings.TrimSpace(in.Email),
		IsPrincipal: in.IsPrincipal,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if office.IsPrincipal {
		if err := uc.clearPrincipal(ctx, office.ID); err != nil {
			return nil, err
		}
	}
	if err := uc.repo.Create(ctx, office); err != nil {
		return nil, err
	}
	return toOfficeResponse(office), nil
}

// GetByID obtiene una oficina por ID.
func (uc *OfficeUseCase) GetByID(ctx context.Context, id string) (*dto.OfficeResponse, error) {
	office, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, domain.ErrNotFound
	}
	return toOfficeResponse(office), nil
}

// Update actualiza una oficina.
func (uc *OfficeUseCase) Update(ctx context.Context, id string, in dto.UpdateOfficeRequest) (*dto.OfficeResponse, error) {
	office, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: el nombre de la oficina es obligatorio", domain.ErrInvalidInput)
		}
		if other, err := uc.repo.GetByName(ctx, name); err != nil {
			return nil, err
		} else if other != nil && other.ID != office.ID {
			return nil, fmt.Errorf("%w: ya existe la oficina %q", domain.ErrDuplicate, name)
		}
		office.Name = name
	}
	if in.Director != nil {
		office.Director = strings.TrimSpace(*in.Director)
	}
	if in.Location != nil {
		office.Location = strings.TrimSpace(*in.Location)
	}
	if in.Email != nil {
		office.Email = strings.TrimSpace(*in.Email)
	}
	if in.IsActive != nil {
		office.IsActive = *in.IsActive
	}
	if in.IsPrincipal != nil {
		if *in.IsPrincipal && !office.IsPrincipal {
			if err := uc.clearPrincipal(ctx, office.ID); err != nil {
				return nil, err
			}
		}
		office.IsPrincipal = *in.IsPrincipal
	}
	office.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, office); err != nil {
		return nil, err
	}
	return toOfficeResponse(office), nil
}

// List lista oficinas (solo activas si onlyActive).
func (uc *OfficeUseCase) List(ctx context.Context, onlyActive bool) ([]dto.OfficeResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OfficeResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOfficeResponse(o))
	}
	return items, nil
}

func (uc *OfficeUseCase) clearPrincipal(ctx context.Context, keepID string) error {
	current, err := uc.repo.GetPrincipal(ctx)
	if err != nil || current == nil || current.ID == keepID {
		return err
	}
	current.IsPrincipal = false
	current.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, current)
}

func toOfficeResponse(o *entity.Office) *dto.OfficeResponse {
	if o == nil {
		return nil
	}
	return &dto.OfficeResponse{
		ID:          o.ID,
		Name:        o.Name,
		Director:    o.Director,
		Location:    o.Location,
		Email:       o.Email,
		IsPrincipal: o.IsPrincipal,
		IsActive:    o.IsActive,
		Role:        string(access.OfficeRoleFor(o.Name)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
