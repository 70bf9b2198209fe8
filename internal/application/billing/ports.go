package billing

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockMover integra facturación con inventario.
// Cada método usa los repositorios del caller (misma transacción).
// Si retorna error (ej: ErrInsufficientStock), el caller debe hacer rollback.
type StockMover interface {
	LockProducts(ctx context.Context, st repository.TxStores, companyID string, ids []string) (map[string]*entity.Product, error)
	Receive(ctx context.Context, st repository.TxStores, in inventory.MovementInput) (*entity.Product, error)
	Issue(ctx context.Context, st repository.TxStores, in inventory.MovementInput) (decimal.Decimal, error)
	ReverseReceipt(ctx context.Context, st repository.TxStores, in inventory.MovementInput) error
	ReverseIssue(ctx context.Context, st repository.TxStores, in inventory.MovementInput) error
}

var _ StockMover = (*inventory.StockService)(nil)

// IssuerProfile datos del emisor impresos en los documentos cuando la empresa
// no tiene su perfil completo.
type IssuerProfile struct {
	Name    string
	TaxCode string
	Address string
	Phone   string
	Email   string
}

// apply completa los campos vacíos de la empresa con el perfil por defecto.
func (p IssuerProfile) apply(c *entity.Company) *entity.Company {
	out := entity.Company{}
	if c != nil {
		out = *c
	}
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&out.Name, p.Name)
	fill(&out.TaxCode, p.TaxCode)
	fill(&out.Address, p.Address)
	fill(&out.Phone, p.Phone)
	fill(&out.Email, p.Email)
	return &out
}
