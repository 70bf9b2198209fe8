package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/invoice"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ExportUseCase registra facturas de venta y descuenta el inventario en una sola transacción.
type ExportUseCase struct {
	txRunner  repository.TxRunner
	exports   repository.ExportInvoiceRepository
	partners  repository.PartnerRepository
	companies repository.CompanyRepository
	stock     StockMover
	issuer    IssuerProfile
	loc       *time.Location
	now       func() time.Time
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(
	txRunner repository.TxRunner,
	exports repository.ExportInvoiceRepository,
	partners repository.PartnerRepository,
	companies repository.CompanyRepository,
	stock StockMover,
	issuer IssuerProfile,
	loc *time.Location,
) *ExportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportUseCase{
		txRunner:  txRunner,
		exports:   exports,
		partners:  partners,
		companies: companies,
		stock:     stock,
		issuer:    issuer,
		loc:       loc,
		now:       time.Now,
	}
}

// Create valida existencias, registra salidas al costo promedio vigente (COGS por línea),
// numera la factura si no trae número, guarda cabecera y líneas y crea la deuda RECEIVABLE.
// Sin stock suficiente devuelve *domain.StockError con el SKU y no persiste nada.
func (uc *ExportUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateExportRequest) (*dto.ExportInvoiceResponse, error) {
	issue, due, err := invoiceDates(in.IssueDate, in.DueDate, uc.loc, uc.now())
	if err != nil {
		return nil, err
	}
	customer, err := uc.partners.GetByID(ctx, companyID, entity.PartnerCustomer, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.CustomerID)
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	company = uc.issuer.apply(company)

	now := uc.now()
	inv := &entity.ExportInvoice{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Number:       strings.TrimSpace(in.Number),
		IssueDate:    issue,
		DueDate:      due,
		Note:         in.Note,
		Status:       entity.InvoiceStatusCompleted,
		PaidAmount:   in.PaidAmount,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	inv.Lines = newLines(inv.ID, in.Lines)

	err = uc.txRunner.Run(ctx, func(st repository.TxStores) error {
		products, err := uc.stock.LockProducts(ctx, st, companyID, productIDs(inv.Lines))
		if err != nil {
			return err
		}
		fillLines(inv.Lines, products, true)
		totals, err := invoice.ComputeTotals(inv.Lines)
		if err != nil {
			return err
		}
		inv.NetAmount, inv.TaxAmount, inv.GrandTotal = totals.Net, totals.Tax, totals.Grand
		if err := invoice.ValidatePaid(inv.PaidAmount, inv.GrandTotal); err != nil {
			return err
		}
		if err := uc.assignNumber(ctx, st, inv); err != nil {
			return err
		}

		costTotal := decimal.Zero
		for i := range inv.Lines {
			l := &inv.Lines[i]
			cost, err := uc.stock.Issue(ctx, st, inventory.MovementInput{
				CompanyID: companyID,
				UserID:    userID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				RefType:   entity.MovementRefExport,
				RefID:     inv.ID,
				Note:      "Venta " + inv.Number,
			})
			if err != nil {
				return err
			}
			l.UnitCost = cost
			costTotal = costTotal.Add(l.Quantity.Mul(cost))
		}
		inv.CostTotal = costTotal.Round(2)

		inv.LookupCode, err = invoice.LookupCode(invoice.LookupParams{
			Number:          inv.Number,
			IssueDate:       inv.IssueDate,
			Grand:           inv.GrandTotal,
			Tax:             inv.TaxAmount,
			SellerTaxCode:   company.TaxCode,
			CustomerTaxCode: customer.TaxCode,
		})
		if err != nil {
			return err
		}
		if err := st.Exports.Create(ctx, inv); err != nil {
			return err
		}
		if debt := newInvoiceDebt(companyID, entity.DebtReceivable, customer.ID, entity.InvoiceTypeExport,
			inv.ID, inv.Number, inv.GrandTotal, inv.PaidAmount, inv.DueDate, now); debt != nil {
			debt.PartnerName = customer.Name
			if err := st.Debts.Create(ctx, debt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ExportResponse(inv), nil
}

// assignNumber usa el número indicado (único por empresa) o toma el siguiente PX<yyyymm>-NNNN.
func (uc *ExportUseCase) assignNumber(ctx context.Context, st repository.TxStores, inv *entity.ExportInvoice) error {
	if inv.Number != "" {
		exists, err := st.Exports.ExistsByNumber(ctx, inv.CompanyID, inv.Number)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: la factura %s ya existe", domain.ErrDuplicate, inv.Number)
		}
		return nil
	}
	seq, err := st.Sequences.Next(ctx, inv.CompanyID, invoice.ExportNumberScope(inv.IssueDate))
	if err != nil {
		return err
	}
	inv.Number = invoice.FormatExportNumber(inv.IssueDate, seq)
	return nil
}

// Cancel anula la venta: reingresa la mercancía al costo de la salida y anula la deuda.
// 409 si ya estaba anulada o si la deuda tiene abonos.
func (uc *ExportUseCase) Cancel(ctx context.Context, companyID, userID, id string) (*dto.ExportInvoiceResponse, error) {
	var out *entity.ExportInvoice
	err := uc.txRunner.Run(ctx, func(st repository.TxStores) error {
		inv, err := st.Exports.GetByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.Status == entity.InvoiceStatusCancelled {
			return fmt.Errorf("%w: la factura ya está anulada", domain.ErrConflict)
		}
		debt, err := cancellableDebt(ctx, st, entity.InvoiceTypeExport, inv.ID)
		if err != nil {
			return err
		}
		now := uc.now()
		if err := st.Exports.MarkCancelled(ctx, inv.ID, now); err != nil {
			return err
		}
		if _, err := uc.stock.LockProducts(ctx, st, companyID, productIDs(inv.Lines)); err != nil {
			return err
		}
		for _, l := range inv.Lines {
			if err := uc.stock.ReverseIssue(ctx, st, inventory.MovementInput{
				CompanyID: companyID,
				UserID:    userID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitCost:  l.UnitCost,
				RefType:   entity.MovementRefExportCancel,
				RefID:     inv.ID,
				Note:      "Anulación venta " + inv.Number,
			}); err != nil {
				return err
			}
		}
		if err := closeDebt(ctx, st, debt, now); err != nil {
			return err
		}
		inv.Status, inv.CancelledAt = entity.InvoiceStatusCancelled, &now
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ExportResponse(out), nil
}

// GetByID devuelve la venta con sus líneas.
func (uc *ExportUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ExportInvoiceResponse, error) {
	inv, err := uc.exports.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return ExportResponse(inv), nil
}

// List lista ventas con búsqueda por número/cliente, filtros y paginación.
func (uc *ExportUseCase) List(ctx context.Context, companyID string, q dto.InvoiceListQuery) (*dto.ExportListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.list(ctx, companyID, q)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ExportInvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *ExportResponse(inv))
	}
	return &dto.ExportListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

func (uc *ExportUseCase) list(ctx context.Context, companyID string, q dto.InvoiceListQuery) ([]*entity.ExportInvoice, int, error) {
	dr, err := dateRange(q.StartDate, q.EndDate, uc.loc)
	if err != nil {
		return nil, 0, err
	}
	return uc.exports.List(ctx, companyID, repository.ExportFilter{
		ListParams: usecase.ToListParams(q.ListQuery),
		DateRange:  dr,
		CustomerID: q.PartnerID,
		Status:     q.Status,
	})
}
