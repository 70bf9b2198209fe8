package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, name, tax_code, address, phone, email, status, created_at, updated_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO companies (`+companyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.TaxCode, c.Address, c.Phone, c.Email, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
}

// GetByTaxCode obtiene una empresa por MST.
func (r *CompanyRepo) GetByTaxCode(ctx context.Context, taxCode string) (*entity.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE tax_code = $1`, taxCode)
}

func (r *CompanyRepo) getOne(ctx context.Context, query string, arg any) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// Update actualiza los datos de la empresa.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE companies SET name = $2, tax_code = $3, address = $4, phone = $5, email = $6, status = $7, updated_at = $8
		WHERE id = $1`,
		c.ID, c.Name, c.TaxCode, c.Address, c.Phone, c.Email, c.Status, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive devuelve las empresas activas.
func (r *CompanyRepo) ListActive(ctx context.Context) ([]*entity.Company, error) {
	rows, err := r.q.Query(ctx, `SELECT `+companyColumns+` FROM companies WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCompany(row pgxScanner) (*entity.Company, error) {
	var c entity.Company
	if err := row.Scan(&c.ID, &c.Name, &c.TaxCode, &c.Address, &c.Phone, &c.Email, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
