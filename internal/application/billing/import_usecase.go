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

// ImportUseCase registra facturas de compra: entrada de inventario, costo promedio
// y cuenta por pagar en una sola transacción.
type ImportUseCase struct {
	txRunner    repository.TxRunner
	imports     repository.ImportInvoiceRepository
	partners    repository.PartnerRepository
	attachments repository.AttachmentRepository
	stock       StockMover
	loc         *time.Location
	now         func() time.Time
}

// NewImportUseCase construye el caso de uso. loc define el día calendario de las fechas.
func NewImportUseCase(
	txRunner repository.TxRunner,
	imports repository.ImportInvoiceRepository,
	partners repository.PartnerRepository,
	attachments repository.AttachmentRepository,
	stock StockMover,
	loc *time.Location,
) *ImportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ImportUseCase{
		txRunner:    txRunner,
		imports:     imports,
		partners:    partners,
		attachments: attachments,
		stock:       stock,
		loc:         loc,
		now:         time.Now,
	}
}

// importDraft compra lista para registrar, venga del formulario, de un XML o de la sincronización.
type importDraft struct {
	CompanyID    string
	UserID       string
	SupplierID   string
	Series       string
	Number       string
	IssueDate    time.Time
	DueDate      *time.Time
	Note         string
	Source       string
	PaidAmount   decimal.Decimal
	AttachmentID string
	Fingerprint  string
	Lines        []dto.InvoiceLineRequest
}

// Create registra una compra manual.
func (uc *ImportUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateImportRequest) (*dto.ImportInvoiceResponse, error) {
	issue, due, err := invoiceDates(in.IssueDate, in.DueDate, uc.loc, uc.now())
	if err != nil {
		return nil, err
	}
	if in.AttachmentID != "" {
		a, err := uc.attachments.GetByID(ctx, companyID, in.AttachmentID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, fmt.Errorf("%w: adjunto %s", domain.ErrNotFound, in.AttachmentID)
		}
	}
	inv, err := uc.create(ctx, importDraft{
		CompanyID:    companyID,
		UserID:       userID,
		SupplierID:   in.SupplierID,
		Series:       strings.TrimSpace(in.Series),
		Number:       strings.TrimSpace(in.Number),
		IssueDate:    issue,
		DueDate:      due,
		Note:         in.Note,
		Source:       entity.InvoiceSourceManual,
		PaidAmount:   in.PaidAmount,
		AttachmentID: in.AttachmentID,
		Lines:        in.Lines,
	})
	if err != nil {
		return nil, err
	}
	return ImportResponse(inv), nil
}

// create bloquea los productos, calcula totales, suma stock con costo promedio,
// guarda cabecera y líneas y crea la deuda PAYABLE por el saldo. Todo o nada.
func (uc *ImportUseCase) create(ctx context.Context, d importDraft) (*entity.ImportInvoice, error) {
	supplier, err := uc.partners.GetByID(ctx, d.CompanyID, entity.PartnerSupplier, d.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, d.SupplierID)
	}
	if d.Number == "" {
		return nil, domain.Invalid("number", "es obligatorio")
	}

	now := uc.now()
	inv := &entity.ImportInvoice{
		ID:             uuid.New().String(),
		CompanyID:      d.CompanyID,
		SupplierID:     supplier.ID,
		SupplierName:   supplier.Name,
		Series:         d.Series,
		Number:         d.Number,
		IssueDate:      d.IssueDate,
		DueDate:        d.DueDate,
		Note:           d.Note,
		Source:         d.Source,
		Status:         entity.InvoiceStatusCompleted,
		PaidAmount:     d.PaidAmount,
		AttachmentID:   d.AttachmentID,
		XMLFingerprint: d.Fingerprint,
		CreatedBy:      d.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	inv.Lines = newLines(inv.ID, d.Lines)

	err = uc.txRunner.Run(ctx, func(st repository.TxStores) error {
		exists, err := st.Imports.ExistsByNumber(ctx, d.CompanyID, supplier.ID, inv.Series, inv.Number)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: la factura %s %s del proveedor ya fue registrada", domain.ErrDuplicate, inv.Series, inv.Number)
		}
		products, err := uc.stock.LockProducts(ctx, st, d.CompanyID, productIDs(inv.Lines))
		if err != nil {
			return err
		}
		fillLines(inv.Lines, products, false)
		totals, err := invoice.ComputeTotals(inv.Lines)
		if err != nil {
			return err
		}
		inv.NetAmount, inv.TaxAmount, inv.GrandTotal = totals.Net, totals.Tax, totals.Grand
		if err := invoice.ValidatePaid(inv.PaidAmount, inv.GrandTotal); err != nil {
			return err
		}
		if err := st.Imports.Create(ctx, inv); err != nil {
			return err
		}
		for _, l := range inv.Lines {
			if _, err := uc.stock.Receive(ctx, st, inventory.MovementInput{
				CompanyID: d.CompanyID,
				UserID:    d.UserID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitCost:  lineUnitCost(l),
				RefType:   entity.MovementRefImport,
				RefID:     inv.ID,
				Note:      "Compra " + inv.Number,
			}); err != nil {
				return err
			}
		}
		if debt := newInvoiceDebt(d.CompanyID, entity.DebtPayable, supplier.ID, entity.InvoiceTypeImport,
			inv.ID, inv.Number, inv.GrandTotal, inv.PaidAmount, inv.DueDate, now); debt != nil {
			debt.PartnerName = supplier.Name
			if err := st.Debts.Create(ctx, debt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if inv.AttachmentID != "" {
		if err := uc.attachments.LinkInvoice(ctx, inv.AttachmentID, entity.InvoiceTypeImport, inv.ID); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// Cancel anula la compra: retira la mercancía, revierte el costo promedio y anula la deuda.
// 409 si ya estaba anulada, si la deuda tiene abonos o si el stock quedaría negativo.
func (uc *ImportUseCase) Cancel(ctx context.Context, companyID, userID, id string) (*dto.ImportInvoiceResponse, error) {
	var out *entity.ImportInvoice
	err := uc.txRunner.Run(ctx, func(st repository.TxStores) error {
		inv, err := st.Imports.GetByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.Status == entity.InvoiceStatusCancelled {
			return fmt.Errorf("%w: la factura ya está anulada", domain.ErrConflict)
		}
		debt, err := cancellableDebt(ctx, st, entity.InvoiceTypeImport, inv.ID)
		if err != nil {
			return err
		}
		now := uc.now()
		if err := st.Imports.MarkCancelled(ctx, inv.ID, now); err != nil {
			return err
		}
		if _, err := uc.stock.LockProducts(ctx, st, companyID, productIDs(inv.Lines)); err != nil {
			return err
		}
		for _, l := range inv.Lines {
			if err := uc.stock.ReverseReceipt(ctx, st, inventory.MovementInput{
				CompanyID: companyID,
				UserID:    userID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitCost:  lineUnitCost(l),
				RefType:   entity.MovementRefImportCancel,
				RefID:     inv.ID,
				Note:      "Anulación compra " + inv.Number,
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
	return ImportResponse(out), nil
}

// GetByID devuelve la compra con sus líneas.
func (uc *ImportUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ImportInvoiceResponse, error) {
	inv, err := uc.imports.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return ImportResponse(inv), nil
}

// List lista compras con búsqueda por número/proveedor, filtros y paginación.
func (uc *ImportUseCase) List(ctx context.Context, companyID string, q dto.InvoiceListQuery) (*dto.ImportListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.list(ctx, companyID, q)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ImportInvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *ImportResponse(inv))
	}
	return &dto.ImportListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

func (uc *ImportUseCase) list(ctx context.Context, companyID string, q dto.InvoiceListQuery) ([]*entity.ImportInvoice, int, error) {
	dr, err := dateRange(q.StartDate, q.EndDate, uc.loc)
	if err != nil {
		return nil, 0, err
	}
	return uc.imports.List(ctx, companyID, repository.ImportFilter{
		ListParams: usecase.ToListParams(q.ListQuery),
		DateRange:  dr,
		SupplierID: q.PartnerID,
		Status:     q.Status,
		Source:     q.Source,
	})
}
