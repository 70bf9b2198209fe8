package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login y cambio de contraseña.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, companyRepo: companyRepo, jwtCfg: jwtCfg}
}

// HashPassword genera el hash bcrypt de la contraseña.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// El primer usuario de una empresa sin administradores activos queda como admin;
// después el registro público solo crea usuarios de ventas y el resto de roles
// los asigna un administrador desde /api/users.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound // empresa no existe
	}

	admins, err := uc.userRepo.CountActiveAdmins(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	role := in.Role
	switch {
	case admins == 0:
		role = entity.RoleAdmin
	case role == "" || role == entity.RoleSales:
		role = entity.RoleSales
	default:
		return nil, fmt.Errorf("%w: el rol %s solo lo asigna un administrador", domain.ErrForbidden, role)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email inexistente y password incorrecto devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, fmt.Errorf("%w: la cuenta está inactiva", domain.ErrForbidden)
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes, jwt.Subject{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		Role:      user.Role,
	})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := uc.userRepo.TouchLogin(ctx, user.ID); err == nil {
		user.LastLoginAt = &now
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:      *toUserResponse(user),
	}, nil
}

// Me devuelve el usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, companyID, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

// ChangePassword cambia la contraseña propia verificando la actual.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, companyID, userID string, in dto.ChangePasswordRequest) error {
	user, err := uc.userRepo.GetByID(ctx, companyID, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: la contraseña actual no coincide", domain.ErrUnauthorized)
	}
	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return uc.userRepo.UpdatePassword(ctx, user.ID, hash)
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
