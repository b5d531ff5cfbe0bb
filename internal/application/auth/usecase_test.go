package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/materiales-api/internal/application/auth"
	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
	"github.com/jhoicas/materiales-api/pkg/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

type fakeDirectory struct {
	users map[string]*auth.DirectoryUser // username -> datos
	pass  string
	err   error
	calls int
}

func (f *fakeDirectory) Authenticate(_ context.Context, username, password string) (*auth.DirectoryUser, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	du, ok := f.users[username]
	if !ok || password != f.pass {
		return nil, auth.ErrInvalidCredentials
	}
	return du, nil
}

type fixture struct {
	users   *memory.UserRepo
	offices *memory.OfficeRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := memory.NewStore()
	return fixture{users: memory.NewUserRepository(s), offices: memory.NewOfficeRepository(s)}
}

func (f fixture) useCase(dir auth.Directory) *auth.AuthUseCase {
	return auth.NewAuthUseCase(f.users, f.offices, dir,
		auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"}, zerolog.Nop())
}

func (f fixture) localUser(t *testing.T, username, password, role string, active bool) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &entity.User{
		ID: "u-" + username, Username: username, Name: username, PasswordHash: string(hash),
		Role: role, OfficeID: "of-1", IsActive: active, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestLogin_LocalUser(t *testing.T) {
	f := newFixture(t)
	f.localUser(t, "admin", "secreto123", "administrador", true)
	dir := &fakeDirectory{}
	uc := f.useCase(dir)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Username: "ADMIN", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "u-admin", out.User.ID)
	assert.Equal(t, 3600, out.ExpiresIn)
	assert.Equal(t, access.RoleAdmin, out.Permissions.Role)
	assert.Zero(t, dir.calls, "un usuario local no consulta el directorio")

	claims, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", claims.UserID)
	assert.Equal(t, "of-1", claims.OfficeID)
	assert.Equal(t, "administrador", claims.Role)
}

func TestLogin_LocalWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.localUser(t, "admin", "secreto123", "administrador", true)
	dir := &fakeDirectory{}

	_, err := f.useCase(dir).Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, dir.calls)
}

func TestLogin_InactiveUser(t *testing.T) {
	f := newFixture(t)
	f.localUser(t, "pedro", "secreto123", "usuario", false)

	_, err := f.useCase(nil).Login(context.Background(), dto.LoginRequest{Username: "pedro", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin_UnknownUserWithoutDirectory(t *testing.T) {
	f := newFixture(t)
	_, err := f.useCase(nil).Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	f := newFixture(t)
	_, err := f.useCase(nil).Login(context.Background(), dto.LoginRequest{Username: "  ", Password: ""})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_DirectoryCreatesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.offices.Create(ctx, &entity.Office{ID: "of-log", Name: "Logística", IsActive: true}))
	dir := &fakeDirectory{pass: "ad-pass", users: map[string]*auth.DirectoryUser{
		"jperez": {Username: "JPerez", Name: "Juan Pérez", Email: "jperez@corp.local", Department: "Logística"},
	}}

	out, err := f.useCase(dir).Login(ctx, dto.LoginRequest{Username: "jperez", Password: "ad-pass"})
	require.NoError(t, err)
	assert.Equal(t, "jperez", out.User.Username)
	assert.True(t, out.User.IsDirectory)
	assert.Equal(t, string(access.RoleInventoryLeader), out.User.Role)
	assert.Equal(t, "of-log", out.User.OfficeID)

	stored, err := f.users.GetByUsername(ctx, "jperez")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.PasswordHash)
	assert.True(t, stored.IsActive)
}

func TestLogin_DirectorySyncKeepsManualRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &entity.User{
		ID: "u-ana", Username: "ana", Name: "Ana", Role: "aprobador", IsDirectory: true, IsActive: true,
	}))
	dir := &fakeDirectory{pass: "ad-pass", users: map[string]*auth.DirectoryUser{
		"ana": {Username: "ana", Name: "Ana Gómez", Email: "ana@corp.local", Department: "Ventas"},
	}}

	out, err := f.useCase(dir).Login(ctx, dto.LoginRequest{Username: "ana", Password: "ad-pass"})
	require.NoError(t, err)
	assert.Equal(t, "aprobador", out.User.Role)
	assert.Equal(t, "Ana Gómez", out.User.Name)
	assert.Equal(t, "ana@corp.local", out.User.Email)
}

func TestLogin_DirectoryRejects(t *testing.T) {
	f := newFixture(t)
	dir := &fakeDirectory{pass: "ad-pass", users: map[string]*auth.DirectoryUser{}}
	_, err := f.useCase(dir).Login(context.Background(), dto.LoginRequest{Username: "x", Password: "y"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_DirectoryUnavailable(t *testing.T) {
	f := newFixture(t)
	dir := &fakeDirectory{err: errors.New("dial tcp: timeout")}
	_, err := f.useCase(dir).Login(context.Background(), dto.LoginRequest{Username: "x", Password: "y"})
	assert.ErrorIs(t, err, domain.ErrConnection)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.offices.Create(ctx, &entity.Office{ID: "of-1", Name: "Cedritos", IsActive: true}))
	f.localUser(t, "ofi", "secreto123", "oficina_cedritos", true)

	me, err := f.useCase(nil).Me(ctx, "u-ofi")
	require.NoError(t, err)
	assert.Equal(t, "Cedritos", me.OfficeName)
	assert.Equal(t, access.FilterOwn, me.Permissions.OfficeFilter)

	_, err = f.useCase(nil).Me(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRoleFromDirectory(t *testing.T) {
	cases := []struct {
		name string
		du   *auth.DirectoryUser
		want access.Role
	}{
		{"gerencia", &auth.DirectoryUser{Department: "Gerencia General"}, access.RoleAdmin},
		{"grupo admin", &auth.DirectoryUser{Department: "Ventas", Groups: []string{"CN=Administradores"}}, access.RoleAdmin},
		{"almacén con tilde", &auth.DirectoryUser{Department: "Almacén"}, access.RoleInventoryLeader},
		{"contabilidad", &auth.DirectoryUser{Department: "Contabilidad"}, access.RoleTreasury},
		{"rrhh", &auth.DirectoryUser{Department: "RRHH"}, access.RoleUser},
		{"nil", nil, access.RoleUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, auth.RoleFromDirectory(tc.du))
		})
	}
}
