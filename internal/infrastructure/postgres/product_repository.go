package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/textnorm"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, company_id, sku, name, unit, category, description, price, cost, vat_rate, stock, min_stock, created_at, updated_at`

var productSortColumns = map[string]string{
	"sku":        "sku",
	"name":       "name",
	"category":   "category",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// Create persiste un nuevo producto. Cost y Stock inician en 0.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`, search_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.CompanyID, p.SKU, p.Name, p.Unit, p.Category, p.Description, p.Price, p.Cost, p.VATRate,
		p.Stock, p.MinStock, p.CreatedAt, p.UpdatedAt, textnorm.Join(p.SKU, p.Name, p.Category),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetBySKU obtiene un producto por empresa y SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE company_id = $1 AND sku = $2`, companyID, sku)
}

// GetForUpdate obtiene el producto bloqueando la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza un producto existente. No permite modificar Cost ni Stock (se manejan vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET sku = $3, name = $4, unit = $5, category = $6, description = $7, price = $8,
			vat_rate = $9, min_stock = $10, search_text = $11, updated_at = $12
		WHERE company_id = $1 AND id = $2`,
		p.CompanyID, p.ID, p.SKU, p.Name, p.Unit, p.Category, p.Description, p.Price, p.VATRate, p.MinStock,
		textnorm.Join(p.SKU, p.Name, p.Category), p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStockAndCost actualiza existencia y costo (usado por el motor de inventario).
func (r *ProductRepo) UpdateStockAndCost(ctx context.Context, id string, stock, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, cost = $3, updated_at = now() WHERE id = $1`,
		id, stock, cost,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, companyID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con búsqueda, categoría, bajo stock, orden y paginación.
func (r *ProductRepo) List(ctx context.Context, companyID string, f repository.ProductFilter) ([]*entity.Product, int, error) {
	w := newWhere("company_id = ?", companyID)
	w.search("", textnorm.Fold(f.Search))
	w.addIf(f.Category != "", "category = ?", f.Category)
	w.addIf(f.LowStock, "min_stock > 0 AND stock <= min_stock")

	query := `SELECT ` + productColumns + `, COUNT(*) OVER() FROM products` + w.sql() +
		orderBy(productSortColumns, f.Sort, f.Desc, "sku ASC") + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.Product
		total int
	)
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Unit, &p.Category, &p.Description, &p.Price,
			&p.Cost, &p.VATRate, &p.Stock, &p.MinStock, &p.CreatedAt, &p.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, total, rows.Err()
}

// IsReferenced indica si alguna línea de factura o movimiento usa el producto.
func (r *ProductRepo) IsReferenced(ctx context.Context, companyID, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM import_invoice_lines WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM export_invoice_lines WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM inventory_movements WHERE company_id = $2 AND product_id = $1)`,
		id, companyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("product references: %w", err)
	}
	return exists, nil
}

func scanProduct(row pgxScanner) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Unit, &p.Category, &p.Description, &p.Price,
		&p.Cost, &p.VATRate, &p.Stock, &p.MinStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
