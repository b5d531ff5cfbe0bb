package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
	"github.com/jhoicas/materiales-api/pkg/jwt"
	"github.com/jhoicas/materiales-api/pkg/logger"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login local o por directorio y sesión actual.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	officeRepo repository.OfficeRepository
	directory  Directory // nil = solo autenticación local
	jwtCfg     JWTConfig
	log        zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth. directory puede ser nil.
func NewAuthUseCase(userRepo repository.UserRepository, officeRepo repository.OfficeRepository, directory Directory, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		officeRepo: officeRepo,
		directory:  directory,
		jwtCfg:     jwtCfg,
		log:        log.With().Str("component", "auth").Logger(),
	}
}

// Login verifica credenciales y retorna token + usuario + permisos.
// Un usuario local con contraseña se valida solo con bcrypt; el resto pasa por el directorio
// (si está configurado) y se sincroniza en la tabla de usuarios.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	switch {
	case user != nil && !user.IsDirectory && user.PasswordHash != "":
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
			uc.log.Info().Str("username", logger.SanitizeUsername(username)).Msg("login local fallido")
			return nil, domain.ErrUnauthorized
		}
	case uc.directory != nil:
		du, err := uc.directory.Authenticate(ctx, username, in.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				uc.log.Info().Str("username", logger.SanitizeUsername(username)).Msg("login de directorio fallido")
				return nil, domain.ErrUnauthorized
			}
			return nil, fmt.Errorf("%w: directorio: %v", domain.ErrConnection, err)
		}
		user, err = uc.syncDirectoryUser(ctx, user, du)
		if err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrUnauthorized
	}

	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.OfficeID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("username", logger.SanitizeUsername(user.Username)).Str("role", user.Role).Msg("login correcto")
	return &dto.LoginResponse{
		Token:       token,
		ExpiresIn:   uc.jwtCfg.ExpMinutes * 60,
		User:        *ToUserResponse(user),
		Permissions: access.Resolve(user.Role),
	}, nil
}

// syncDirectoryUser crea o actualiza el usuario local a partir de los datos del directorio.
// El rol del directorio solo se aplica al crear o si el usuario aún es "usuario"; así se
// conservan roles asignados a mano por un administrador.
func (uc *AuthUseCase) syncDirectoryUser(ctx context.Context, user *entity.User, du *DirectoryUser) (*entity.User, error) {
	now := time.Now()
	role := RoleFromDirectory(du)
	officeID := uc.officeFromDepartment(ctx, du.Department)

	if user == nil {
		user = &entity.User{
			ID:          uuid.New().String(),
			Username:    strings.ToLower(du.Username),
			Name:        du.Name,
			Email:       du.Email,
			Role:        string(role),
			OfficeID:    officeID,
			IsDirectory: true,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if user.Name == "" {
			user.Name = user.Username
		}
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		uc.log.Info().Str("username", logger.SanitizeUsername(user.Username)).Str("role", user.Role).Msg("usuario de directorio creado")
		return user, nil
	}

	user.IsDirectory = true
	if du.Name != "" {
		user.Name = du.Name
	}
	if du.Email != "" {
		user.Email = du.Email
	}
	current := access.NormalizeRole(user.Role)
	if current == "" || current == access.RoleUser {
		user.Role = string(role)
	}
	if user.OfficeID == "" {
		user.OfficeID = officeID
	}
	user.UpdatedAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *AuthUseCase) officeFromDepartment(ctx context.Context, department string) string {
	if uc.officeRepo == nil || strings.TrimSpace(department) == "" {
		return ""
	}
	o, err := uc.officeRepo.GetByName(ctx, strings.TrimSpace(department))
	if err != nil || o == nil {
		return ""
	}
	return o.ID
}

// Me devuelve el usuario de la sesión con sus permisos efectivos.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.SessionResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	out := &dto.SessionResponse{
		User:        *ToUserResponse(user),
		Permissions: access.Resolve(user.Role),
	}
	if user.OfficeID != "" && uc.officeRepo != nil {
		if o, err := uc.officeRepo.GetByID(ctx, user.OfficeID); err == nil && o != nil {
			out.OfficeName = o.Name
		}
	}
	return out, nil
}

// ToUserResponse convierte la entidad a DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		OfficeID:    u.OfficeID,
		IsDirectory: u.IsDirectory,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
