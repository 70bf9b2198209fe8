package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/backoffice-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "secreto-de-pruebas"
	password   = "matkhau123"
)

type authFixture struct {
	db        *apptest.DB
	uc        *auth.AuthUseCase
	companyID string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := apptest.NewDB()
	f := &authFixture{db: db, companyID: uuid.NewString()}
	db.Companies[f.companyID] = &entity.Company{ID: f.companyID, Name: "Công ty TNHH Minh Phát", Status: entity.CompanyStatusActive}
	f.uc = auth.NewAuthUseCase(&apptest.UserRepo{DB: db}, &apptest.CompanyRepo{DB: db}, auth.JWTConfig{
		Secret: testSecret, ExpMinutes: 30, Issuer: "backoffice-api-test",
	})
	return f
}

func (f *authFixture) register(t *testing.T, email, role string) *dto.UserResponse {
	t.Helper()
	u, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{
		Email: email, Password: password, CompanyID: f.companyID, Name: email, Role: role,
	})
	require.NoError(t, err)
	return u
}

func TestRegister_PrimerUsuarioEsAdmin(t *testing.T) {
	f := newAuthFixture(t)

	first := f.register(t, "QuanLy@MinhPhat.vn", entity.RoleSales)
	assert.Equal(t, entity.RoleAdmin, first.Role, "una empresa sin admin activo recibe su primer admin")
	assert.Equal(t, "quanly@minhphat.vn", first.Email)

	second := f.register(t, "banhang@minhphat.vn", "")
	assert.Equal(t, entity.RoleSales, second.Role)
}

func TestRegister_ConAdminSoloVentas(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "quanly@minhphat.vn", "")

	for _, role := range []string{entity.RoleAdmin, entity.RoleAccountant, entity.RoleWarehouse} {
		_, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{
			Email: role + "@minhphat.vn", Password: password, CompanyID: f.companyID, Name: role, Role: role,
		})
		assert.True(t, errors.Is(err, domain.ErrForbidden), role)
	}
	assert.Len(t, f.db.Users, 1)
}

func TestRegister_EmailDuplicadoYEmpresaInexistente(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "quanly@minhphat.vn", "")

	_, err := f.uc.RegisterUser(ctx, dto.RegisterRequest{
		Email: " QUANLY@minhphat.vn", Password: password, CompanyID: f.companyID, Name: "Otro",
	})
	assert.True(t, errors.Is(err, domain.ErrEmailAlreadyExists))

	_, err = f.uc.RegisterUser(ctx, dto.RegisterRequest{
		Email: "moi@minhphat.vn", Password: password, CompanyID: uuid.NewString(), Name: "Nuevo",
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLogin_TokenConClaims(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "quanly@minhphat.vn", "")

	out, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: " QuanLy@MinhPhat.vn ", Password: password})
	require.NoError(t, err)
	assert.Equal(t, u.ID, out.User.ID)
	assert.NotNil(t, out.User.LastLoginAt)
	assert.True(t, out.ExpiresAt.After(f.db.Users[u.ID].CreatedAt))

	claims, err := pkgjwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, f.companyID, claims.CompanyID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "quanly@minhphat.vn", "")

	_, err := f.uc.Login(ctx, dto.LoginRequest{Email: "quanly@minhphat.vn", Password: "sai-mat-khau"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "khongco@minhphat.vn", Password: password})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "email inexistente responde igual")
}

func TestLogin_CuentaInactiva(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "quanly@minhphat.vn", "")
	u := f.register(t, "banhang@minhphat.vn", "")
	f.db.Users[u.ID].Status = entity.UserStatusInactive

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "banhang@minhphat.vn", Password: password})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.register(t, "quanly@minhphat.vn", "")

	err := f.uc.ChangePassword(ctx, f.companyID, u.ID, dto.ChangePasswordRequest{CurrentPassword: "sai", NewPassword: "moi-12345"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	require.NoError(t, f.uc.ChangePassword(ctx, f.companyID, u.ID, dto.ChangePasswordRequest{CurrentPassword: password, NewPassword: "moi-12345"}))

	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "quanly@minhphat.vn", Password: password})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "la contraseña anterior ya no sirve")
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "quanly@minhphat.vn", Password: "moi-12345"})
	assert.NoError(t, err)

	err = f.uc.ChangePassword(ctx, f.companyID, uuid.NewString(), dto.ChangePasswordRequest{CurrentPassword: password, NewPassword: "x-12345678"})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestMe(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "quanly@minhphat.vn", "")

	me, err := f.uc.Me(context.Background(), f.companyID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "quanly@minhphat.vn", me.Email)

	_, err = f.uc.Me(context.Background(), uuid.NewString(), u.ID)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}
