package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// UserUseCase administración de usuarios de la empresa (solo admin).
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// List lista usuarios con búsqueda por nombre/email, filtros y paginación.
func (uc *UserUseCase) List(ctx context.Context, companyID string, q dto.UserListQuery) (*dto.UserListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, companyID, repository.UserFilter{
		ListParams: ToListParams(q.ListQuery),
		Role:       q.Role,
		Status:     q.Status,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Create crea un usuario en la empresa del administrador.
func (uc *UserUseCase) Create(ctx context.Context, companyID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if !entity.ValidRole(in.Role) {
		return nil, domain.Invalid("role", "rol no soportado")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario de la empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// Update cambia nombre, rol o estado.
// Un admin no puede desactivarse a sí mismo y el último admin activo no puede perder el rol ni desactivarse.
func (uc *UserUseCase) Update(ctx context.Context, companyID, actorID, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && *in.Status == entity.UserStatusInactive && id == actorID {
		return nil, fmt.Errorf("%w: no puede desactivar su propia cuenta", domain.ErrConflict)
	}
	demotes := in.Role != nil && *in.Role != entity.RoleAdmin
	deactivates := in.Status != nil && *in.Status == entity.UserStatusInactive
	if user.IsAdmin() && user.IsActive() && (demotes || deactivates) {
		if err := uc.ensureAnotherAdmin(ctx, companyID); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		if !entity.ValidRole(*in.Role) {
			return nil, domain.Invalid("role", "rol no soportado")
		}
		user.Role = *in.Role
	}
	if in.Status != nil {
		if !entity.ValidUserStatus(*in.Status) {
			return nil, domain.Invalid("status", "estado no soportado")
		}
		user.Status = *in.Status
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// ResetPassword asigna una nueva contraseña (acción de administrador).
func (uc *UserUseCase) ResetPassword(ctx context.Context, companyID, id string, in dto.ResetPasswordRequest) error {
	user, err := uc.get(ctx, companyID, id)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return uc.repo.UpdatePassword(ctx, user.ID, hash)
}

// Delete elimina un usuario. No se permite borrar la propia cuenta ni el último admin activo.
func (uc *UserUseCase) Delete(ctx context.Context, companyID, actorID, id string) error {
	if id == actorID {
		return fmt.Errorf("%w: no puede eliminar su propia cuenta", domain.ErrConflict)
	}
	user, err := uc.get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() && user.IsActive() {
		if err := uc.ensureAnotherAdmin(ctx, companyID); err != nil {
			return err
		}
	}
	return uc.repo.Delete(ctx, companyID, id)
}

func (uc *UserUseCase) get(ctx context.Context, companyID, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (uc *UserUseCase) ensureAnotherAdmin(ctx context.Context, companyID string) error {
	n, err := uc.repo.CountActiveAdmins(ctx, companyID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("%w: la empresa debe conservar al menos un administrador activo", domain.ErrConflict)
	}
	return nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		CompanyID:   u.CompanyID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToListParams traduce la query HTTP a parámetros de repositorio.
func ToListParams(q dto.ListQuery) repository.ListParams {
	return repository.ListParams{
		Search: strings.TrimSpace(q.Search),
		Sort:   q.Sort,
		Desc:   q.Desc(),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
}
