package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/textnorm"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, company_id, email, password_hash, name, role, status, last_login_at, created_at, updated_at`

var userSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"status":     "status",
	"created_at": "created_at",
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (id, company_id, email, password_hash, name, role, status, search_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.CompanyID, strings.ToLower(u.Email), u.PasswordHash, u.Name, u.Role, u.Status,
		textnorm.Join(u.Name, u.Email), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario de la empresa.
func (r *UserRepo) GetByID(ctx context.Context, companyID, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email (cualquier company).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update actualiza nombre, rol y estado.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE users SET name = $3, role = $4, status = $5, search_text = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2`,
		u.CompanyID, u.ID, u.Name, u.Role, u.Status, textnorm.Join(u.Name, u.Email), u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdatePassword reemplaza el hash de la contraseña.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// TouchLogin registra la fecha del último inicio de sesión.
func (r *UserRepo) TouchLogin(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	return nil
}

// Delete elimina un usuario de la empresa.
func (r *UserRepo) Delete(ctx context.Context, companyID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM users WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista usuarios con búsqueda, filtros, orden y paginación.
func (r *UserRepo) List(ctx context.Context, companyID string, f repository.UserFilter) ([]*entity.User, int, error) {
	w := newWhere("company_id = ?", companyID)
	w.search("", textnorm.Fold(f.Search))
	w.addIf(f.Role != "", "role = ?", f.Role)
	w.addIf(f.Status != "", "status = ?", f.Status)

	query := `SELECT ` + userColumns + `, COUNT(*) OVER() FROM users` + w.sql() +
		orderBy(userSortColumns, f.Sort, f.Desc, "created_at DESC") + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.User
		total int
	)
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status,
			&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, total, rows.Err()
}

// CountActiveAdmins cuenta los administradores activos de la empresa.
func (r *UserRepo) CountActiveAdmins(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE company_id = $1 AND role = 'admin' AND status = 'active'`, companyID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func scanUser(row pgxScanner) (*entity.User, error) {
	var u entity.User
	if err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
