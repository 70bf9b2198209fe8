package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ExportFilter filtros del listado de facturas de venta.
type ExportFilter struct {
	ListParams
	DateRange
	CustomerID string
	Status     string
}

// ExportInvoiceRepository puerto de persistencia de facturas de venta.
type ExportInvoiceRepository interface {
	Create(ctx context.Context, inv *entity.ExportInvoice) error
	GetByID(ctx context.Context, companyID, id string) (*entity.ExportInvoice, error)
	ExistsByNumber(ctx context.Context, companyID, number string) (bool, error)
	List(ctx context.Context, companyID string, f ExportFilter) ([]*entity.ExportInvoice, int, error)
	MarkCancelled(ctx context.Context, id string, at time.Time) error
	AddPaid(ctx context.Context, id string, delta decimal.Decimal) error
}
