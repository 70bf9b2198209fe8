package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// ocrTimeout límite de cada llamada al modelo de visión.
const ocrTimeout = 60 * time.Second

// OCRUseCase orquesta la lectura asistida por IA de facturas escaneadas.
// Es de solo lectura: el usuario revisa la vista previa y registra la compra manualmente.
type OCRUseCase struct {
	extractor ports.InvoiceExtractor
	matcher   previewMatcher
	timeout   time.Duration
}

// NewOCRUseCase construye el caso de uso inyectando el puerto InvoiceExtractor.
func NewOCRUseCase(
	extractor ports.InvoiceExtractor,
	companies repository.CompanyRepository,
	partners repository.PartnerRepository,
	products repository.ProductRepository,
	imports repository.ImportInvoiceRepository,
) *OCRUseCase {
	return &OCRUseCase{
		extractor: extractor,
		matcher:   previewMatcher{companies: companies, partners: partners, products: products, imports: imports},
		timeout:   ocrTimeout,
	}
}

// Preview valida el archivo y delega la extracción al LLM.
// Envuelve el contexto con un timeout para que las latencias externas no bloqueen el servidor.
func (uc *OCRUseCase) Preview(ctx context.Context, companyID, fileName, mimeType string, content []byte) (*dto.InvoicePreviewDTO, error) {
	mime := usecase.NormalizeMIME(mimeType, fileName)
	switch mime {
	case "image/png", "image/jpeg", "image/webp", "application/pdf":
	default:
		return nil, domain.Invalid("file", "se espera una imagen (PNG, JPEG, WEBP) o un PDF")
	}
	if len(content) == 0 {
		return nil, domain.Invalid("file", "el archivo está vacío")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	parsed, err := uc.extractor.ExtractInvoice(ctx, fileName, mime, content)
	if err != nil {
		return nil, fmt.Errorf("%w: OCR de factura: %v", domain.ErrExternalService, err)
	}
	return uc.matcher.build(ctx, companyID, entity.InvoiceSourceOCR, parsed)
}
