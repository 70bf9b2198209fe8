package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	db        *apptest.DB
	uc        *usecase.UserUseCase
	companyID string
	admin     *entity.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	db := apptest.NewDB()
	f := &userFixture{db: db, uc: usecase.NewUserUseCase(&apptest.UserRepo{DB: db}), companyID: uuid.NewString()}
	f.admin = f.seed("quanly@minhphat.vn", entity.RoleAdmin)
	return f
}

func (f *userFixture) seed(email, role string) *entity.User {
	u := &entity.User{
		ID: uuid.NewString(), CompanyID: f.companyID, Email: email, Name: email,
		Role: role, Status: entity.UserStatusActive, CreatedAt: time.Now(),
	}
	f.db.Users[u.ID] = u
	return u
}

func strPtr(s string) *string { return &s }

func TestUserCreate_EmailDuplicadoYRol(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	u, err := f.uc.Create(ctx, f.companyID, dto.CreateUserRequest{
		Email: " KeToan@MinhPhat.vn ", Password: "matkhau123", Name: " Nguyễn Thị Hoa ", Role: entity.RoleAccountant,
	})
	require.NoError(t, err)
	assert.Equal(t, "ketoan@minhphat.vn", u.Email)
	assert.Equal(t, "Nguyễn Thị Hoa", u.Name)
	assert.Equal(t, entity.UserStatusActive, u.Status)
	assert.NotEqual(t, "matkhau123", f.db.Users[u.ID].PasswordHash)

	_, err = f.uc.Create(ctx, f.companyID, dto.CreateUserRequest{
		Email: "ketoan@minhphat.vn", Password: "matkhau123", Name: "Otra", Role: entity.RoleSales,
	})
	assert.True(t, errors.Is(err, domain.ErrEmailAlreadyExists))

	_, err = f.uc.Create(ctx, f.companyID, dto.CreateUserRequest{
		Email: "kho@minhphat.vn", Password: "matkhau123", Name: "Kho", Role: "owner",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestUserUpdate_NoPuedeDesactivarseASiMismo(t *testing.T) {
	f := newUserFixture(t)
	f.seed("admin2@minhphat.vn", entity.RoleAdmin)

	_, err := f.uc.Update(context.Background(), f.companyID, f.admin.ID, f.admin.ID,
		dto.UpdateUserRequest{Status: strPtr(entity.UserStatusInactive)})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, entity.UserStatusActive, f.db.Users[f.admin.ID].Status)
}

func TestUserUpdate_UltimoAdminActivo(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	other := f.seed("kho@minhphat.vn", entity.RoleWarehouse)

	_, err := f.uc.Update(ctx, f.companyID, other.ID, f.admin.ID, dto.UpdateUserRequest{Role: strPtr(entity.RoleSales)})
	assert.True(t, errors.Is(err, domain.ErrConflict), "no se puede degradar al último admin")

	_, err = f.uc.Update(ctx, f.companyID, other.ID, f.admin.ID, dto.UpdateUserRequest{Status: strPtr(entity.UserStatusInactive)})
	assert.True(t, errors.Is(err, domain.ErrConflict), "no se puede desactivar al último admin")
	assert.Equal(t, entity.RoleAdmin, f.db.Users[f.admin.ID].Role)

	second := f.seed("admin2@minhphat.vn", entity.RoleAdmin)
	out, err := f.uc.Update(ctx, f.companyID, second.ID, f.admin.ID, dto.UpdateUserRequest{
		Role: strPtr(entity.RoleAccountant), Name: strPtr(" Trần Văn Nam "),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAccountant, out.Role)
	assert.Equal(t, "Trần Văn Nam", out.Name)
}

func TestUserUpdate_UsuarioDeOtraEmpresa(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.uc.Update(context.Background(), uuid.NewString(), f.admin.ID, f.admin.ID, dto.UpdateUserRequest{Name: strPtr("x")})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestUserDelete_Invariantes(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	sales := f.seed("banhang@minhphat.vn", entity.RoleSales)

	err := f.uc.Delete(ctx, f.companyID, f.admin.ID, f.admin.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict), "no puede eliminar su propia cuenta")

	second := f.seed("admin2@minhphat.vn", entity.RoleAdmin)
	require.NoError(t, f.uc.Delete(ctx, f.companyID, f.admin.ID, second.ID))

	err = f.uc.Delete(ctx, f.companyID, sales.ID, f.admin.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict), "el último admin activo no se borra")
	assert.Contains(t, f.db.Users, f.admin.ID)

	err = f.uc.Delete(ctx, f.companyID, f.admin.ID, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestUserResetPassword(t *testing.T) {
	f := newUserFixture(t)
	sales := f.seed("banhang@minhphat.vn", entity.RoleSales)

	require.NoError(t, f.uc.ResetPassword(context.Background(), f.companyID, sales.ID, dto.ResetPasswordRequest{NewPassword: "moi-12345"}))
	assert.NotEmpty(t, f.db.Users[sales.ID].PasswordHash)
	assert.NotEqual(t, "moi-12345", f.db.Users[sales.ID].PasswordHash)
}

func TestUserList_FiltraPorRol(t *testing.T) {
	f := newUserFixture(t)
	f.seed("kho@minhphat.vn", entity.RoleWarehouse)
	f.seed("banhang@minhphat.vn", entity.RoleSales)

	out, err := f.uc.List(context.Background(), f.companyID, dto.UserListQuery{Role: entity.RoleSales})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "banhang@minhphat.vn", out.Items[0].Email)
	assert.Equal(t, 1, out.Page.Total)
}
