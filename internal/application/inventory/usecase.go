package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockService aplica movimientos de inventario sobre repositorios atados a una transacción.
// Cada operación bloquea la fila del producto (SELECT FOR UPDATE), recalcula stock y costo
// promedio y deja el registro en el kardex. El caller hace Commit o Rollback.
type StockService struct {
	now func() time.Time
}

// NewStockService construye el servicio.
func NewStockService() *StockService {
	return &StockService{now: time.Now}
}

// MovementInput datos de un movimiento.
// Quantity siempre positiva; el tipo de operación define el signo en el kardex.
type MovementInput struct {
	CompanyID string
	UserID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	RefType   string
	RefID     string
	Note      string
}

// LockProducts bloquea las filas en orden de ID para que dos facturas concurrentes
// con los mismos productos no se bloqueen mutuamente. Devuelve los productos por ID.
func (s *StockService) LockProducts(ctx context.Context, st repository.TxStores, companyID string, ids []string) (map[string]*entity.Product, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)
	out := make(map[string]*entity.Product, len(unique))
	for _, id := range unique {
		p, err := st.Products.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		out[id] = p
	}
	return out, nil
}

// Receive entrada (IN): suma stock y recalcula el costo promedio ponderado.
func (s *StockService) Receive(ctx context.Context, st repository.TxStores, in MovementInput) (*entity.Product, error) {
	if !in.Quantity.IsPositive() || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	p, err := s.lock(ctx, st, in)
	if err != nil {
		return nil, err
	}
	newCost := inventory.CostCalculator(p.Stock, p.Cost, in.Quantity, in.UnitCost)
	return s.apply(ctx, st, p, entity.MovementTypeIN, in.Quantity, in.UnitCost, newCost, in)
}

// Issue salida (OUT) valorizada al costo promedio actual. Devuelve el costo unitario aplicado.
// Sin existencias suficientes devuelve *domain.StockError (envuelve ErrInsufficientStock).
func (s *StockService) Issue(ctx context.Context, st repository.TxStores, in MovementInput) (decimal.Decimal, error) {
	if !in.Quantity.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	p, err := s.lock(ctx, st, in)
	if err != nil {
		return decimal.Zero, err
	}
	if p.Stock.LessThan(in.Quantity) {
		return decimal.Zero, stockError(p, in.Quantity)
	}
	if _, err := s.apply(ctx, st, p, entity.MovementTypeOUT, in.Quantity.Neg(), p.Cost, p.Cost, in); err != nil {
		return decimal.Zero, err
	}
	return p.Cost, nil
}

// ReverseReceipt deshace una entrada (anulación de compra): retira la cantidad y
// devuelve el costo promedio al que había antes de la entrada.
func (s *StockService) ReverseReceipt(ctx context.Context, st repository.TxStores, in MovementInput) error {
	p, err := s.lock(ctx, st, in)
	if err != nil {
		return err
	}
	if p.Stock.LessThan(in.Quantity) {
		return stockError(p, in.Quantity)
	}
	newCost := inventory.CostAfterReversal(p.Stock, p.Cost, in.Quantity, in.UnitCost)
	_, err = s.apply(ctx, st, p, entity.MovementTypeOUT, in.Quantity.Neg(), in.UnitCost, newCost, in)
	return err
}

// ReverseIssue deshace una salida (anulación de venta): reingresa la mercancía al costo de la salida.
func (s *StockService) ReverseIssue(ctx context.Context, st repository.TxStores, in MovementInput) error {
	_, err := s.Receive(ctx, st, in)
	return err
}

// Adjust ajuste manual: delta positivo entra al costo indicado (por defecto el costo actual),
// delta negativo sale al costo actual sin dejar stock negativo.
func (s *StockService) Adjust(ctx context.Context, st repository.TxStores, in MovementInput, delta decimal.Decimal, unitCost *decimal.Decimal) (*entity.Product, error) {
	if delta.IsZero() {
		return nil, domain.Invalid("quantity", "el ajuste no puede ser cero")
	}
	p, err := s.lock(ctx, st, in)
	if err != nil {
		return nil, err
	}
	if delta.IsPositive() {
		cost := p.Cost
		if unitCost != nil {
			if unitCost.IsNegative() {
				return nil, domain.Invalid("unit_cost", "no puede ser negativo")
			}
			cost = *unitCost
		}
		newCost := inventory.CostCalculator(p.Stock, p.Cost, delta, cost)
		return s.apply(ctx, st, p, entity.MovementTypeADJUSTMENT, delta, cost, newCost, in)
	}
	if p.Stock.Add(delta).IsNegative() {
		return nil, stockError(p, delta.Neg())
	}
	return s.apply(ctx, st, p, entity.MovementTypeADJUSTMENT, delta, p.Cost, p.Cost, in)
}

func (s *StockService) lock(ctx context.Context, st repository.TxStores, in MovementInput) (*entity.Product, error) {
	p, err := st.Products.GetForUpdate(ctx, in.CompanyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	return p, nil
}

// apply persiste stock y costo y registra el movimiento. signedQty lleva el signo del kardex.
func (s *StockService) apply(
	ctx context.Context,
	st repository.TxStores,
	p *entity.Product,
	movType string,
	signedQty, unitCost, newCost decimal.Decimal,
	in MovementInput,
) (*entity.Product, error) {
	newStock := p.Stock.Add(signedQty)
	if err := st.Products.UpdateStockAndCost(ctx, p.ID, newStock, newCost); err != nil {
		return nil, err
	}
	mov := &entity.InventoryMovement{
		ID:         uuid.New().String(),
		CompanyID:  in.CompanyID,
		ProductID:  p.ID,
		Type:       movType,
		Quantity:   signedQty,
		UnitCost:   unitCost,
		TotalCost:  signedQty.Mul(unitCost).Round(2),
		StockAfter: newStock,
		RefType:    in.RefType,
		RefID:      in.RefID,
		Note:       in.Note,
		CreatedBy:  in.UserID,
		CreatedAt:  s.now(),
	}
	if err := st.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	p.Stock, p.Cost = newStock, newCost
	return p, nil
}

func stockError(p *entity.Product, requested decimal.Decimal) error {
	return &domain.StockError{SKU: p.SKU, Requested: requested.String(), Available: p.Stock.String()}
}
