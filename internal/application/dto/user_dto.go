package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin accountant warehouse sales"`
}

// UpdateUserRequest cambios administrativos sobre un usuario.
type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=200"`
	Role   *string `json:"role" validate:"omitempty,oneof=admin accountant warehouse sales"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ResetPasswordRequest body de PUT /api/users/:id/password.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ChangePasswordRequest body de PUT /api/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// UserListQuery filtros de GET /api/users.
type UserListQuery struct {
	ListQuery
	Role   string `query:"role" validate:"omitempty,oneof=admin accountant warehouse sales"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive"`
}

// RegisterRequest entrada para registro (auth): email, password, company_id.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=200"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	CompanyID string `json:"company_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Role      string `json:"role" validate:"omitempty,oneof=admin accountant warehouse sales"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
