package http

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
)

// AttachmentHandler subida y descarga de XML, PDF e imágenes de facturas.
type AttachmentHandler struct {
	uc        *usecase.AttachmentUseCase
	maxUpload int64
}

func NewAttachmentHandler(uc *usecase.AttachmentUseCase, maxUpload int64) *AttachmentHandler {
	return &AttachmentHandler{uc: uc, maxUpload: maxUpload}
}

// Upload godoc
// @Summary      Subir adjunto
// @Description  XML, PDF o imagen hasta el tamaño configurado. Registra nombre, MIME, tamaño y SHA-256
//
//	(sobre la forma canónica en el caso de XML).
//
// @Tags         attachments
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file          formData  file    true   "Archivo"
// @Param        invoice_type  formData  string  false  "IMPORT|EXPORT"
// @Param        invoice_id    formData  string  false  "ID de la factura"
// @Success      201  {object}  dto.AttachmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/attachments [post]
func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		return writeError(c, err)
	}
	link := dto.AttachmentQuery{InvoiceType: c.FormValue("invoice_type"), InvoiceID: c.FormValue("invoice_id")}
	if ok, err := validateDTO(c, &link); !ok {
		return err
	}
	out, err := h.uc.Upload(c.UserContext(), GetCompanyID(c), GetUserID(c), usecase.UploadInput{
		FileName:    up.Name,
		MIMEType:    up.MIMEType,
		Data:        up.Data,
		InvoiceType: link.InvoiceType,
		InvoiceID:   link.InvoiceID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar adjuntos
// @Tags         attachments
// @Security     Bearer
// @Produce      json
// @Param        invoice_type  query  string  false  "IMPORT|EXPORT"
// @Param        invoice_id    query  string  false  "ID de la factura"
// @Success      200  {object}  dto.AttachmentListResponse
// @Router       /api/attachments [get]
func (h *AttachmentHandler) List(c *fiber.Ctx) error {
	var q dto.AttachmentQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Download godoc
// @Summary      Descargar adjunto
// @Tags         attachments
// @Security     Bearer
// @Produce      octet-stream
// @Param        id   path  string  true  "ID del adjunto"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/attachments/{id}/download [get]
func (h *AttachmentHandler) Download(c *fiber.Ctx) error {
	meta, body, err := h.uc.Open(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, meta.MIMEType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(meta.FileName)))
	// fasthttp cierra body al terminar de enviarlo.
	return c.SendStream(body, int(meta.Size))
}

// Delete godoc
// @Summary      Eliminar adjunto
// @Tags         attachments
// @Security     Bearer
// @Param        id   path  string  true  "ID del adjunto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
