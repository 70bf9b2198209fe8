package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/backoffice-api/internal/application/analytics"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
)

// AnalyticsHandler maneja los reportes de compras, ventas, rentabilidad y cartera.
type AnalyticsHandler struct {
	uc *appanalytics.ReportUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *appanalytics.ReportUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen del período
// @Description  Total comprado, vendido (neto), costo de ventas, utilidad bruta, margen %,
//
//	saldos por cobrar/pagar, deudas vencidas y valor del inventario.
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Inicio (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date    query  string  false  "Fin (YYYY-MM-DD). Default: hoy."
// @Success      200  {object}  dto.SummaryReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/summary [get]
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	var q dto.ReportPeriodQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.Summary(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetRevenue godoc
// @Summary      Serie de ingresos
// @Description  Ventas, costo, utilidad y compras por día o por mes; los períodos sin movimiento van en cero.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        group_by    query  string  false  "day|month (default day)"
// @Success      200  {object}  dto.RevenueReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/revenue [get]
func (h *AnalyticsHandler) GetRevenue(c *fiber.Ctx) error {
	var q dto.RevenueReportRequest
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.Revenue(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetTopProducts godoc
// @Summary      Ranking de productos (Pareto 80/20)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        top_n       query  int     false  "Máx. productos (default 20, max 200)"
// @Success      200  {object}  dto.TopProductsReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/top-products [get]
func (h *AnalyticsHandler) GetTopProducts(c *fiber.Ctx) error {
	var q dto.TopProductsRequest
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.TopProducts(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetAging godoc
// @Summary      Antigüedad de cartera
// @Description  Saldos abiertos por tipo en tramos: al día, 1-30, 31-60, 61-90 y más de 90 días.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AgingReportDTO
// @Router       /api/reports/debts/aging [get]
func (h *AnalyticsHandler) GetAging(c *fiber.Ctx) error {
	out, err := h.uc.Aging(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportWorkbook godoc
// @Summary      Libro Excel de reportes
// @Description  Hojas: resumen, ingresos, productos, inventario y antigüedad de cartera.
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {file}  file
// @Router       /api/reports/export.xlsx [get]
func (h *AnalyticsHandler) ExportWorkbook(c *fiber.Ctx) error {
	var q dto.ReportPeriodQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	data, err := h.uc.Workbook(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return sendDownload(c, data, "bao_cao.xlsx", mimeXLSX)
}
