package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/textnorm"
)

var _ repository.PartnerRepository = (*PartnerRepo)(nil)

// PartnerRepo persistencia de clientes y proveedores (tabla partners, columna kind).
type PartnerRepo struct {
	q Querier
}

// NewPartnerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartnerRepository(q Querier) *PartnerRepo {
	return &PartnerRepo{q: q}
}

const partnerColumns = `id, company_id, kind, code, name, tax_code, phone, email, address, contact_person, bank_account, note, created_at, updated_at`

var partnerSortColumns = map[string]string{
	"code":       "code",
	"name":       "name",
	"tax_code":   "tax_code",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func partnerSearchText(p *entity.Partner) string {
	return textnorm.Join(p.Code, p.Name, p.TaxCode, p.Phone, p.Email)
}

// Create persiste una contraparte.
func (r *PartnerRepo) Create(ctx context.Context, p *entity.Partner) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO partners (`+partnerColumns+`, search_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.CompanyID, p.Kind, p.Code, p.Name, nullIfEmpty(p.TaxCode), p.Phone, p.Email, p.Address,
		p.ContactPerson, p.BankAccount, p.Note, p.CreatedAt, p.UpdatedAt, partnerSearchText(p),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

// GetByID obtiene una contraparte por ID dentro de la empresa y tipo.
func (r *PartnerRepo) GetByID(ctx context.Context, companyID, kind, id string) (*entity.Partner, error) {
	return r.getOne(ctx, `SELECT `+partnerColumns+` FROM partners WHERE company_id = $1 AND kind = $2 AND id = $3`, companyID, kind, id)
}

// GetByTaxCode obtiene una contraparte por MST.
func (r *PartnerRepo) GetByTaxCode(ctx context.Context, companyID, kind, taxCode string) (*entity.Partner, error) {
	return r.getOne(ctx, `SELECT `+partnerColumns+` FROM partners WHERE company_id = $1 AND kind = $2 AND tax_code = $3`, companyID, kind, taxCode)
}

func (r *PartnerRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Partner, error) {
	p, err := scanPartner(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return p, nil
}

// Update actualiza los datos de la contraparte (el tipo no cambia).
func (r *PartnerRepo) Update(ctx context.Context, p *entity.Partner) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE partners SET code = $4, name = $5, tax_code = $6, phone = $7, email = $8, address = $9,
			contact_person = $10, bank_account = $11, note = $12, search_text = $13, updated_at = $14
		WHERE company_id = $1 AND kind = $2 AND id = $3`,
		p.CompanyID, p.Kind, p.ID, p.Code, p.Name, nullIfEmpty(p.TaxCode), p.Phone, p.Email, p.Address,
		p.ContactPerson, p.BankAccount, p.Note, partnerSearchText(p), p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update partner: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la contraparte. Si la referencia una factura o deuda devuelve ErrInUse.
func (r *PartnerRepo) Delete(ctx context.Context, companyID, kind, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM partners WHERE company_id = $1 AND kind = $2 AND id = $3`, companyID, kind, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete partner: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista contrapartes con búsqueda sin acentos, orden y paginación.
func (r *PartnerRepo) List(ctx context.Context, companyID, kind string, p repository.ListParams) ([]*entity.Partner, int, error) {
	w := newWhere("company_id = ?", companyID)
	w.add("kind = ?", kind)
	w.search("", textnorm.Fold(p.Search))

	query := `SELECT ` + partnerColumns + `, COUNT(*) OVER() FROM partners` + w.sql() +
		orderBy(partnerSortColumns, p.Sort, p.Desc, "code ASC") + w.page(p.Limit, p.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.Partner
		total int
	)
	for rows.Next() {
		var (
			pt  entity.Partner
			tax *string
		)
		if err := rows.Scan(&pt.ID, &pt.CompanyID, &pt.Kind, &pt.Code, &pt.Name, &tax, &pt.Phone, &pt.Email, &pt.Address,
			&pt.ContactPerson, &pt.BankAccount, &pt.Note, &pt.CreatedAt, &pt.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan partner: %w", err)
		}
		pt.TaxCode = derefString(tax)
		list = append(list, &pt)
	}
	return list, total, rows.Err()
}

// IsReferenced indica si alguna factura usa la contraparte.
func (r *PartnerRepo) IsReferenced(ctx context.Context, companyID, kind, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM import_invoices WHERE company_id = $1 AND supplier_id = $2)`
	if kind == entity.PartnerCustomer {
		query = `SELECT EXISTS (SELECT 1 FROM export_invoices WHERE company_id = $1 AND customer_id = $2)`
	}
	var exists bool
	if err := r.q.QueryRow(ctx, query, companyID, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("partner references: %w", err)
	}
	return exists, nil
}

func scanPartner(row pgxScanner) (*entity.Partner, error) {
	var (
		p   entity.Partner
		tax *string
	)
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Kind, &p.Code, &p.Name, &tax, &p.Phone, &p.Email, &p.Address,
		&p.ContactPerson, &p.BankAccount, &p.Note, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.TaxCode = derefString(tax)
	return &p, nil
}
