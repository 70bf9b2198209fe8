package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/billing"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

// AIHandler lectura asistida por IA (OCR) de facturas escaneadas o fotografiadas.
type AIHandler struct {
	uc        *billing.OCRUseCase
	maxUpload int64
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *billing.OCRUseCase, maxUpload int64) *AIHandler {
	return &AIHandler{uc: uc, maxUpload: maxUpload}
}

// PreviewInvoice godoc
// @Summary      Vista previa OCR de una factura
// @Description  Envía la imagen o PDF al proveedor LLM configurado (Anthropic o Gemini) y devuelve
//
//	la misma vista previa que el XML. Es de solo lectura: no registra nada.
//
// @Tags         imports
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Imagen (PNG, JPEG, WEBP) o PDF"
// @Success      200   {object}  dto.InvoicePreviewDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/imports/ocr/preview [post]
func (h *AIHandler) PreviewInvoice(c *fiber.Ctx) error {
	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Preview(c.UserContext(), GetCompanyID(c), up.Name, up.MIMEType, up.Data)
	if err != nil {
		if errors.Is(err, domain.ErrExternalService) {
			return errorJSON(c, fiber.StatusBadGateway, "AI_UNAVAILABLE", "el servicio de lectura de facturas no respondió; intenta de nuevo")
		}
		return writeError(c, err)
	}
	return c.JSON(out)
}
