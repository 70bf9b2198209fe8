package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/invoice"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/taxcode"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// autoSKUPrefix prefijo de los SKU generados para productos sin código en el XML.
const autoSKUPrefix = "SP"

// errForeignBuyer el XML está emitido a otro comprador; la sincronización lo omite.
var errForeignBuyer = errors.New("la MST del comprador no es la de la empresa")

// XMLImportUseCase vista previa e importación de facturas electrónicas XML.
type XMLImportUseCase struct {
	parser      ports.InvoiceXMLParser
	matcher     previewMatcher
	partners    repository.PartnerRepository
	products    repository.ProductRepository
	sequences   repository.SequenceRepository
	imports     *ImportUseCase
	attachments *usecase.AttachmentUseCase
}

// NewXMLImportUseCase construye el caso de uso.
func NewXMLImportUseCase(
	parser ports.InvoiceXMLParser,
	companies repository.CompanyRepository,
	partners repository.PartnerRepository,
	products repository.ProductRepository,
	sequences repository.SequenceRepository,
	imports *ImportUseCase,
	attachments *usecase.AttachmentUseCase,
) *XMLImportUseCase {
	return &XMLImportUseCase{
		parser: parser,
		matcher: previewMatcher{
			companies: companies,
			partners:  partners,
			products:  products,
			imports:   imports.imports,
		},
		partners:    partners,
		products:    products,
		sequences:   sequences,
		imports:     imports,
		attachments: attachments,
	}
}

// Preview interpreta el XML y lo cruza con proveedores, productos y compras ya registradas. Solo lectura.
func (uc *XMLImportUseCase) Preview(ctx context.Context, companyID string, data []byte) (*dto.InvoicePreviewDTO, error) {
	parsed, err := uc.parse(data)
	if err != nil {
		return nil, err
	}
	return uc.matcher.build(ctx, companyID, entity.InvoiceSourceXML, parsed)
}

// Import registra la compra a partir del XML y lo guarda como adjunto de la factura.
func (uc *XMLImportUseCase) Import(ctx context.Context, companyID, userID, fileName string, data []byte, opts dto.XMLImportOptions) (*dto.ImportInvoiceResponse, error) {
	inv, err := uc.importXML(ctx, companyID, userID, fileName, data, opts, entity.InvoiceSourceXML, "")
	if err != nil {
		return nil, err
	}
	return ImportResponse(inv), nil
}

// importXML crea proveedor y productos faltantes fuera de la transacción de la compra
// (son maestros válidos aunque la compra falle) y luego registra la compra.
// Duplicados por huella o por proveedor+serie+número devuelven ErrDuplicate.
// Con buyerTaxCode, un XML emitido a otro comprador devuelve errForeignBuyer.
func (uc *XMLImportUseCase) importXML(ctx context.Context, companyID, userID, fileName string, data []byte,
	opts dto.XMLImportOptions, source, buyerTaxCode string) (*entity.ImportInvoice, error) {
	parsed, err := uc.parse(data)
	if err != nil {
		return nil, err
	}
	if buyerTaxCode != "" && taxcode.Normalize(parsed.Buyer.TaxCode) != taxcode.Normalize(buyerTaxCode) {
		return nil, fmt.Errorf("%w: %q", errForeignBuyer, parsed.Buyer.TaxCode)
	}
	if parsed.Fingerprint != "" {
		dup, err := uc.imports.imports.ExistsByFingerprint(ctx, companyID, parsed.Fingerprint)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, fmt.Errorf("%w: el XML ya fue importado", domain.ErrDuplicate)
		}
	}
	if len(parsed.Lines) == 0 {
		return nil, domain.Invalid("file", "el XML no contiene líneas de mercancía")
	}

	supplier, err := uc.ensureSupplier(ctx, companyID, parsed.Seller)
	if err != nil {
		return nil, err
	}
	dup, err := uc.imports.imports.ExistsByNumber(ctx, companyID, supplier.ID, parsed.Series, parsed.Number)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: la factura %s %s del proveedor ya fue registrada", domain.ErrDuplicate, parsed.Series, parsed.Number)
	}

	lines, err := uc.resolveLines(ctx, companyID, parsed.Lines, opts.AutoCreateProducts)
	if err != nil {
		return nil, err
	}

	issue := parsed.IssueDate
	if issue.IsZero() {
		n := uc.imports.now().In(uc.imports.loc)
		issue = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, uc.imports.loc)
	}
	due, err := dto.ParseDate(opts.DueDate, uc.imports.loc)
	if err != nil {
		return nil, domain.Invalid("due_date", "formato esperado YYYY-MM-DD")
	}
	if due != nil && due.Before(issue) {
		return nil, domain.Invalid("due_date", "no puede ser anterior a la fecha de emisión")
	}

	inv, err := uc.imports.create(ctx, importDraft{
		CompanyID:   companyID,
		UserID:      userID,
		SupplierID:  supplier.ID,
		Series:      parsed.Series,
		Number:      parsed.Number,
		IssueDate:   issue,
		DueDate:     due,
		Note:        opts.Note,
		Source:      source,
		PaidAmount:  opts.PaidAmount,
		Fingerprint: parsed.Fingerprint,
		Lines:       lines,
	})
	if err != nil {
		return nil, err
	}

	att, err := uc.attachments.Store(ctx, companyID, userID, usecase.UploadInput{
		FileName:    fileName,
		MIMEType:    "application/xml",
		Data:        data,
		InvoiceType: entity.InvoiceTypeImport,
		InvoiceID:   inv.ID,
	})
	if err != nil {
		log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("compra importada sin adjunto XML")
		return inv, nil
	}
	if err := uc.imports.imports.SetAttachment(ctx, inv.ID, att.ID); err != nil {
		log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo enlazar el XML a la compra")
		return inv, nil
	}
	inv.AttachmentID = att.ID
	return inv, nil
}

func (uc *XMLImportUseCase) parse(data []byte) (*ports.ParsedInvoice, error) {
	parsed, err := uc.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: XML de factura: %v", domain.ErrInvalidInput, err)
	}
	return parsed, nil
}

// ensureSupplier busca el proveedor por MST y lo crea si no existe.
func (uc *XMLImportUseCase) ensureSupplier(ctx context.Context, companyID string, seller ports.ParsedParty) (*entity.Partner, error) {
	taxCode := taxcode.Normalize(seller.TaxCode)
	if taxCode == "" {
		return nil, domain.Invalid("file", "el XML no trae la MST del vendedor")
	}
	if err := taxcode.Validate(taxCode); err != nil {
		return nil, domain.Invalid("file", "MST del vendedor inválida: "+seller.TaxCode)
	}
	p, err := uc.partners.GetByTaxCode(ctx, companyID, entity.PartnerSupplier, taxCode)
	if err != nil || p != nil {
		return p, err
	}
	now := time.Now()
	p = &entity.Partner{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Kind:      entity.PartnerSupplier,
		Name:      strings.TrimSpace(seller.Name),
		TaxCode:   taxCode,
		Address:   strings.TrimSpace(seller.Address),
		Note:      "Creado desde XML",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Name == "" {
		p.Name = taxCode
	}
	if err := usecase.CreatePartnerWithCode(ctx, uc.partners, uc.sequences, p); err != nil {
		return nil, err
	}
	log.Info().Str("company_id", companyID).Str("tax_code", taxCode).Msg("proveedor creado desde XML")
	return p, nil
}

// resolveLines asocia cada línea a un producto por código. Sin coincidencia crea el producto
// cuando autoCreate está activo; si no, falla indicando el código.
func (uc *XMLImportUseCase) resolveLines(ctx context.Context, companyID string, parsed []ports.ParsedLine, autoCreate bool) ([]dto.InvoiceLineRequest, error) {
	created := map[string]*entity.Product{}
	out := make([]dto.InvoiceLineRequest, 0, len(parsed))
	for _, l := range parsed {
		code := strings.TrimSpace(l.Code)
		var prod *entity.Product
		var err error
		if code != "" {
			if prod = created[code]; prod == nil {
				prod, err = uc.products.GetBySKU(ctx, companyID, code)
				if err != nil {
					return nil, err
				}
			}
		}
		if prod == nil {
			if !autoCreate {
				return nil, domain.Invalid("lines", fmt.Sprintf("producto sin coincidencia: %s %s", code, l.Name))
			}
			if prod, err = uc.createProduct(ctx, companyID, code, l); err != nil {
				return nil, err
			}
			if code != "" {
				created[code] = prod
			}
		}
		rate := l.VATRate
		out = append(out, dto.InvoiceLineRequest{
			ProductID: prod.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			VATRate:   &rate,
		})
	}
	return out, nil
}

func (uc *XMLImportUseCase) createProduct(ctx context.Context, companyID, code string, l ports.ParsedLine) (*entity.Product, error) {
	if code == "" {
		n, err := uc.sequences.Next(ctx, companyID, autoSKUPrefix)
		if err != nil {
			return nil, err
		}
		code = invoice.FormatPartnerCode(autoSKUPrefix, n)
	}
	vat := l.VATRate
	if !invoice.ValidVATRate(vat) {
		vat = decimal.Zero
	}
	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SKU:       code,
		Name:      strings.TrimSpace(l.Name),
		Unit:      strings.TrimSpace(l.Unit),
		VATRate:   vat,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Name == "" {
		p.Name = code
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("crear producto %s: %w", code, err)
	}
	return p, nil
}
