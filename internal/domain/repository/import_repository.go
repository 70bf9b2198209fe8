package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ImportFilter filtros del listado de facturas de compra.
type ImportFilter struct {
	ListParams
	DateRange
	SupplierID string
	Status     string
	Source     string
}

// ImportInvoiceRepository puerto de persistencia de facturas de compra.
type ImportInvoiceRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, inv *entity.ImportInvoice) error
	// GetByID devuelve la factura con sus líneas.
	GetByID(ctx context.Context, companyID, id string) (*entity.ImportInvoice, error)
	ExistsByNumber(ctx context.Context, companyID, supplierID, series, number string) (bool, error)
	ExistsByFingerprint(ctx context.Context, companyID, fingerprint string) (bool, error)
	List(ctx context.Context, companyID string, f ImportFilter) ([]*entity.ImportInvoice, int, error)
	MarkCancelled(ctx context.Context, id string, at time.Time) error
	AddPaid(ctx context.Context, id string, delta decimal.Decimal) error
	SetAttachment(ctx context.Context, id, attachmentID string) error
}
