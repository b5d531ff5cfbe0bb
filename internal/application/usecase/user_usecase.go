package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-api/internal/application/auth"
	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// UserUseCase administración de usuarios locales.
type UserUseCase struct {
	repo      repository.UserRepository
	offices   repository.OfficeRepository
	approvers repository.ApproverRepository
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, offices repository.OfficeRepository, approvers repository.ApproverRepository) *UserUseCase {
	return &UserUseCase{repo: repo, offices: offices, approvers: approvers}
}

// Create crea un usuario local: hashea password con bcrypt y normaliza el rol.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return nil, fmt.Errorf("%w: el usuario es obligatorio", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	role, err := validRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, in.OfficeID, in.ApproverID); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = username
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Name:         name,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Role:         string(role),
		OfficeID:     in.OfficeID,
		ApproverID:   in.ApproverID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// EnsureAdmin crea el administrador local si el usuario no existe. created es false cuando ya
// estaba registrado; en ese caso no se modifica.
func (uc *UserUseCase) EnsureAdmin(ctx context.Context, username, password, name, email string) (user *dto.UserResponse, created bool, err error) {
	user, err = uc.Create(ctx, dto.CreateUserRequest{
		Username: username,
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(access.RoleAdmin),
	})
	if errors.Is(err, domain.ErrUsernameAlreadyExists) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return auth.ToUserResponse(user), nil
}

// Update actualiza un usuario. Cambiar la contraseña de un usuario de directorio no está permitido.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Role != nil {
		role, err := validRole(*in.Role)
		if err != nil {
			return nil, err
		}
		user.Role = string(role)
	}
	office, approver := user.OfficeID, user.ApproverID
	if in.OfficeID != nil {
		office = *in.OfficeID
	}
	if in.ApproverID != nil {
		approver = *in.ApproverID
	}
	if err := uc.checkRefs(ctx, office, approver); err != nil {
		return nil, err
	}
	user.OfficeID, user.ApproverID = office, approver
	if in.Password != nil {
		if user.IsDirectory {
			return nil, fmt.Errorf("%w: la contraseña de un usuario de directorio se gestiona en el directorio", domain.ErrInvalidInput)
		}
		if len(*in.Password) < minPasswordLen {
			return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// List lista usuarios paginados.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.UserResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *auth.ToUserResponse(u))
	}
	return items, nil
}

// Approvers lista los aprobadores activos.
func (uc *UserUseCase) Approvers(ctx context.Context) ([]dto.ApproverResponse, error) {
	list, err := uc.approvers.List(ctx, true)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ApproverResponse, 0, len(list))
	for _, a := range list {
		items = append(items, dto.ApproverResponse{ID: a.ID, Name: a.Name, Email: a.Email, IsActive: a.IsActive})
	}
	return items, nil
}

func (uc *UserUseCase) checkRefs(ctx context.Context, officeID, approverID string) error {
	if officeID != "" {
		o, err := uc.offices.GetByID(ctx, officeID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: oficina %s", domain.ErrNotFound, officeID)
		}
	}
	if approverID != "" {
		a, err := uc.approvers.GetByID(ctx, approverID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: aprobador %s", domain.ErrNotFound, approverID)
		}
	}
	return nil
}

func validRole(raw string) (access.Role, error) {
	role := access.NormalizeRole(raw)
	if !role.IsValid() {
		return "", fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, raw)
	}
	return role, nil
}
