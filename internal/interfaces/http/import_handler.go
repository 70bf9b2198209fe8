package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/billing"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ImportHandler compras a proveedores: registro manual, desde XML, anulación y documentos.
type ImportHandler struct {
	imports   *billing.ImportUseCase
	xml       *billing.XMLImportUseCase
	docs      *billing.DocumentUseCase
	maxUpload int64
}

// NewImportHandler construye el handler. maxUpload limita el tamaño del XML subido.
func NewImportHandler(imports *billing.ImportUseCase, xml *billing.XMLImportUseCase, docs *billing.DocumentUseCase, maxUpload int64) *ImportHandler {
	return &ImportHandler{imports: imports, xml: xml, docs: docs, maxUpload: maxUpload}
}

// Create godoc
// @Summary      Registrar compra
// @Description  En una transacción: entrada de stock, costo promedio, kardex, cabecera y líneas,
//
//	y deuda PAYABLE por grand_total − paid_amount.
//
// @Tags         imports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateImportRequest  true  "Compra"
// @Success      201   {object}  dto.ImportInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/imports [post]
func (h *ImportHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateImportRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.imports.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar compras
// @Tags         imports
// @Security     Bearer
// @Produce      json
// @Param        search      query  string  false  "Número o proveedor"
// @Param        partner_id  query  string  false  "Proveedor"
// @Param        status      query  string  false  "COMPLETED|CANCELLED"
// @Param        source      query  string  false  "MANUAL|XML|OCR|SYNC"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        sort        query  string  false  "issue_date|number|grand_total|created_at"
// @Param        order       query  string  false  "asc|desc"
// @Param        limit       query  int     false  "Límite (default 20)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ImportListResponse
// @Router       /api/imports [get]
func (h *ImportHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.imports.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener compra con líneas
// @Tags         imports
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.ImportInvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/imports/{id} [get]
func (h *ImportHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.imports.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Anular compra
// @Description  Revierte el stock y anula la deuda. 409 si el stock quedaría negativo o la deuda tiene abonos.
// @Tags         imports
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.ImportInvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/imports/{id}/cancel [post]
func (h *ImportHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.imports.Cancel(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportXLSX godoc
// @Summary      Exportar compras a Excel
// @Description  Mismos filtros que el listado, sin paginar.
// @Tags         imports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file
// @Router       /api/imports/export.xlsx [get]
func (h *ImportHandler) ExportXLSX(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	data, err := h.docs.ImportsXLSX(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return sendDownload(c, data, "compras.xlsx", mimeXLSX)
}

// PDF godoc
// @Summary      Nota de recepción en PDF
// @Tags         imports
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/imports/{id}/pdf [get]
func (h *ImportHandler) PDF(c *fiber.Ctx) error {
	data, name, err := h.docs.ImportPDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendDownload(c, data, name, mimePDF)
}

// PreviewXML godoc
// @Summary      Vista previa de factura electrónica XML
// @Description  Solo lectura: vendedor, comprador, líneas, totales, proveedor y productos reconocidos
//
//	y marca de duplicado por huella del XML.
//
// @Tags         imports
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "XML de la factura"
// @Success      200   {object}  dto.InvoicePreviewDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/imports/xml/preview [post]
func (h *ImportHandler) PreviewXML(c *fiber.Ctx) error {
	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.xml.Preview(c.UserContext(), GetCompanyID(c), up.Data)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ImportXML godoc
// @Summary      Registrar compra desde XML
// @Description  Crea el proveedor por MST si no existe y, con auto_create_products=true, los productos
//
//	desconocidos. El XML queda guardado como adjunto de la compra.
//
// @Tags         imports
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file                  formData  file    true   "XML de la factura"
// @Param        auto_create_products  formData  bool    false  "Crear productos desconocidos"
// @Param        paid_amount           formData  string  false  "Monto pagado al registrar"
// @Param        due_date              formData  string  false  "YYYY-MM-DD"
// @Param        note                  formData  string  false  "Nota"
// @Success      201   {object}  dto.ImportInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/imports/xml [post]
func (h *ImportHandler) ImportXML(c *fiber.Ctx) error {
	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		return writeError(c, err)
	}
	opts, err := xmlImportOptions(c)
	if err != nil {
		return writeError(c, err)
	}
	if ok, err := validateDTO(c, &opts); !ok {
		return err
	}
	out, err := h.xml.Import(c.UserContext(), GetCompanyID(c), GetUserID(c), up.Name, up.Data, opts)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// xmlImportOptions lee los campos del formulario multipart.
func xmlImportOptions(c *fiber.Ctx) (dto.XMLImportOptions, error) {
	opts := dto.XMLImportOptions{
		DueDate: strings.TrimSpace(c.FormValue("due_date")),
		Note:    c.FormValue("note"),
	}
	if v := strings.TrimSpace(c.FormValue("auto_create_products")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, domain.Invalid("auto_create_products", "debe ser true o false")
		}
		opts.AutoCreateProducts = b
	}
	if v := strings.TrimSpace(c.FormValue("paid_amount")); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return opts, domain.Invalid("paid_amount", "monto inválido")
		}
		opts.PaidAmount = d
	}
	return opts, nil
}
