package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/debt"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// DocumentUseCase genera los documentos descargables: PDF de compras y ventas,
// estado de cuenta por contraparte y listados en Excel.
type DocumentUseCase struct {
	imports   *ImportUseCase
	exports   *ExportUseCase
	debts     repository.DebtRepository
	companies repository.CompanyRepository
	partners  repository.PartnerRepository
	pdf       ports.DocumentPDFGenerator
	sheets    ports.SpreadsheetWriter
	issuer    IssuerProfile
	now       func() time.Time
}

// NewDocumentUseCase construye el caso de uso inyectando todas sus dependencias.
func NewDocumentUseCase(
	imports *ImportUseCase,
	exports *ExportUseCase,
	debts repository.DebtRepository,
	companies repository.CompanyRepository,
	partners repository.PartnerRepository,
	pdf ports.DocumentPDFGenerator,
	sheets ports.SpreadsheetWriter,
	issuer IssuerProfile,
) *DocumentUseCase {
	return &DocumentUseCase{
		imports:   imports,
		exports:   exports,
		debts:     debts,
		companies: companies,
		partners:  partners,
		pdf:       pdf,
		sheets:    sheets,
		issuer:    issuer,
		now:       time.Now,
	}
}

// ImportPDF nota de recepción de mercancía de una compra.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe en la empresa del token.
func (uc *DocumentUseCase) ImportPDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	inv, err := uc.imports.imports.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	supplier, err := uc.partners.GetByID(ctx, companyID, entity.PartnerSupplier, inv.SupplierID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener proveedor: %w", err)
	}
	pdf, err := uc.pdf.GenerateImportPDF(ctx, inv, company, supplier)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, fileName("compra", inv.Series+inv.Number, "pdf"), nil
}

// ExportPDF factura de venta con el QR del código de consulta.
func (uc *DocumentUseCase) ExportPDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	inv, err := uc.exports.exports.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	customer, err := uc.partners.GetByID(ctx, companyID, entity.PartnerCustomer, inv.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	pdf, err := uc.pdf.GenerateExportPDF(ctx, inv, company, customer)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, fileName("venta", inv.Number, "pdf"), nil
}

// DebtStatementPDF estado de cuenta de una contraparte. debtType vacío se deduce del tipo de contraparte.
func (uc *DocumentUseCase) DebtStatementPDF(ctx context.Context, companyID, partnerID, debtType string) ([]byte, string, error) {
	partner, err := uc.findPartner(ctx, companyID, partnerID, debtType)
	if err != nil {
		return nil, "", err
	}
	if debtType == "" {
		debtType = DebtTypeFor(partner.Kind)
	}
	today := uc.now().In(uc.imports.loc)
	list, _, err := uc.debts.List(ctx, companyID, repository.DebtFilter{
		ListParams: repository.ListParams{Sort: "due_date", Limit: maxSheetRows},
		Type:       debtType,
		PartnerID:  partner.ID,
		Today:      today,
	})
	if err != nil {
		return nil, "", err
	}
	debts := make([]*entity.Debt, 0, len(list))
	for _, d := range list {
		debt.Refresh(d, today)
		if d.Status != entity.DebtCancelled {
			debts = append(debts, d)
		}
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	pdf, err := uc.pdf.GenerateDebtStatement(ctx, &ports.DebtStatement{
		Company: company,
		Partner: partner,
		Type:    debtType,
		Debts:   debts,
		AsOf:    now,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, fileName("estado_cuenta", partner.Code+"_"+now.Format("20060102"), "pdf"), nil
}

// findPartner busca la contraparte según el tipo de deuda; sin tipo prueba proveedor y cliente.
func (uc *DocumentUseCase) findPartner(ctx context.Context, companyID, partnerID, debtType string) (*entity.Partner, error) {
	kinds := []string{entity.PartnerSupplier, entity.PartnerCustomer}
	switch debtType {
	case entity.DebtPayable:
		kinds = kinds[:1]
	case entity.DebtReceivable:
		kinds = kinds[1:]
	}
	for _, k := range kinds {
		p, err := uc.partners.GetByID(ctx, companyID, k, partnerID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: contraparte %s", domain.ErrNotFound, partnerID)
}

// ImportsXLSX listado de compras con los mismos filtros de GET /api/imports (sin paginar).
func (uc *DocumentUseCase) ImportsXLSX(ctx context.Context, companyID string, q dto.InvoiceListQuery) ([]byte, error) {
	q.Limit, q.Offset = maxSheetRows, 0
	list, _, err := uc.imports.list(ctx, companyID, q)
	if err != nil {
		return nil, err
	}
	sheet := ports.Sheet{
		Name:    "Compras",
		Headers: []string{"Fecha", "Serie", "Número", "Proveedor", "Origen", "Estado", "Neto", "IVA", "Total", "Pagado", "Saldo"},
	}
	for _, inv := range list {
		sheet.Rows = append(sheet.Rows, []any{
			inv.IssueDate.Format(dto.DateLayout), inv.Series, inv.Number, inv.SupplierName, inv.Source, inv.Status,
			inv.NetAmount.InexactFloat64(), inv.TaxAmount.InexactFloat64(), inv.GrandTotal.InexactFloat64(),
			inv.PaidAmount.InexactFloat64(), remaining(inv.GrandTotal, inv.PaidAmount).InexactFloat64(),
		})
	}
	return uc.sheets.Write([]ports.Sheet{sheet})
}

// ExportsXLSX listado de ventas con los mismos filtros de GET /api/exports (sin paginar).
func (uc *DocumentUseCase) ExportsXLSX(ctx context.Context, companyID string, q dto.InvoiceListQuery) ([]byte, error) {
	q.Limit, q.Offset = maxSheetRows, 0
	list, _, err := uc.exports.list(ctx, companyID, q)
	if err != nil {
		return nil, err
	}
	sheet := ports.Sheet{
		Name:    "Ventas",
		Headers: []string{"Fecha", "Número", "Cliente", "Estado", "Neto", "IVA", "Total", "Costo", "Margen", "Pagado", "Saldo"},
	}
	for _, inv := range list {
		sheet.Rows = append(sheet.Rows, []any{
			inv.IssueDate.Format(dto.DateLayout), inv.Number, inv.CustomerName, inv.Status,
			inv.NetAmount.InexactFloat64(), inv.TaxAmount.InexactFloat64(), inv.GrandTotal.InexactFloat64(),
			inv.CostTotal.InexactFloat64(), inv.NetAmount.Sub(inv.CostTotal).InexactFloat64(),
			inv.PaidAmount.InexactFloat64(), remaining(inv.GrandTotal, inv.PaidAmount).InexactFloat64(),
		})
	}
	return uc.sheets.Write([]ports.Sheet{sheet})
}

// DebtsXLSX listado de deudas con los filtros de GET /api/debts (sin paginar).
func (uc *DocumentUseCase) DebtsXLSX(ctx context.Context, companyID string, q dto.DebtListQuery) ([]byte, error) {
	q.Limit, q.Offset = maxSheetRows, 0
	today := uc.now().In(uc.imports.loc)
	list, _, err := uc.debts.List(ctx, companyID, debtFilter(q, today))
	if err != nil {
		return nil, err
	}
	sheet := ports.Sheet{
		Name:    "Deudas",
		Headers: []string{"Tipo", "Contraparte", "Factura", "Vence", "Estado", "Monto", "Pagado", "Saldo"},
	}
	for _, d := range list {
		debt.Refresh(d, today)
		sheet.Rows = append(sheet.Rows, []any{
			d.Type, d.PartnerName, d.InvoiceNumber, dto.FormatDate(d.DueDate), d.Status,
			d.Amount.InexactFloat64(), d.PaidAmount.InexactFloat64(), d.Remaining().InexactFloat64(),
		})
	}
	return uc.sheets.Write([]ports.Sheet{sheet})
}

func (uc *DocumentUseCase) company(ctx context.Context, companyID string) (*entity.Company, error) {
	c, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	return uc.issuer.apply(c), nil
}

// fileName nombre de descarga sin espacios ni barras.
func fileName(prefix, id, ext string) string {
	clean := strings.NewReplacer(" ", "_", "/", "-", "\\", "-").Replace(id)
	return fmt.Sprintf("%s_%s.%s", prefix, clean, ext)
}
