package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/debt"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // Principio de Pareto: los primeros SKUs que acumulan el 80% de ingresos
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// ReportUseCase orquesta las consultas de reportes y aplica las reglas de negocio:
//   - Márgenes y utilidad bruta del período.
//   - Ranking de productos por ingreso con marca Pareto.
//   - Antigüedad de saldos por tramo de mora.
type ReportUseCase struct {
	reports   repository.ReportRepository
	inventory *inventory.ReplenishmentUseCase
	sheets    ports.SpreadsheetWriter
	loc       *time.Location
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(reports repository.ReportRepository, inv *inventory.ReplenishmentUseCase, sheets ports.SpreadsheetWriter, loc *time.Location) *ReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportUseCase{reports: reports, inventory: inv, sheets: sheets, loc: loc, now: time.Now}
}

// Summary totales del período más saldos abiertos y valor del inventario.
func (uc *ReportUseCase) Summary(ctx context.Context, companyID string, q dto.ReportPeriodQuery) (*dto.SummaryReportDTO, error) {
	start, end, err := uc.parsePeriod(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	// Tres consultas independientes en paralelo.
	type totalsResult struct {
		t   repository.SalesTotals
		err error
	}
	type debtResult struct {
		t   repository.DebtTotals
		err error
	}
	type valueResult struct {
		v   decimal.Decimal
		err error
	}
	totalsCh := make(chan totalsResult, 1)
	debtCh := make(chan debtResult, 1)
	valueCh := make(chan valueResult, 1)

	go func() {
		t, err := uc.reports.GetSalesTotals(ctx, companyID, start, end)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.reports.GetDebtTotals(ctx, companyID)
		debtCh <- debtResult{t, err}
	}()
	go func() {
		v, err := uc.reports.GetInventoryValue(ctx, companyID)
		valueCh <- valueResult{v, err}
	}()

	totals, debts, value := <-totalsCh, <-debtCh, <-valueCh
	if totals.err != nil {
		return nil, fmt.Errorf("reports: totales: %w", totals.err)
	}
	if debts.err != nil {
		return nil, fmt.Errorf("reports: saldos: %w", debts.err)
	}
	if value.err != nil {
		return nil, fmt.Errorf("reports: inventario: %w", value.err)
	}

	profit := totals.t.ExportTotal.Sub(totals.t.COGS)
	return &dto.SummaryReportDTO{
		Period:                period(start, end),
		ImportTotal:           totals.t.ImportTotal.Round(2),
		ImportCount:           totals.t.ImportCount,
		ExportTotal:           totals.t.ExportTotal.Round(2),
		ExportTax:             totals.t.ExportTax.Round(2),
		ExportCount:           totals.t.ExportCount,
		COGS:                  totals.t.COGS.Round(2),
		GrossProfit:           profit.Round(2),
		MarginPct:             pct(profit, totals.t.ExportTotal),
		ReceivableOutstanding: debts.t.ReceivableOutstanding.Round(2),
		PayableOutstanding:    debts.t.PayableOutstanding.Round(2),
		OverdueReceivables:    debts.t.OverdueReceivables,
		OverduePayables:       debts.t.OverduePayables,
		InventoryValue:        value.v.Round(2),
	}, nil
}

// Revenue serie de ventas, costo, utilidad y compras por día o mes; los períodos sin movimiento van en cero.
func (uc *ReportUseCase) Revenue(ctx context.Context, companyID string, q dto.RevenueReportRequest) (*dto.RevenueReportDTO, error) {
	start, end, err := uc.parsePeriod(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	groupBy := q.GroupBy
	if groupBy == "" {
		groupBy = "day"
	}
	rows, err := uc.reports.GetRevenueSeries(ctx, companyID, start, end, groupBy)
	if err != nil {
		return nil, fmt.Errorf("reports: serie: %w", err)
	}
	return &dto.RevenueReportDTO{
		Period:  period(start, end),
		GroupBy: groupBy,
		Points:  fillSeries(rows, start, end, groupBy),
	}, nil
}

// fillSeries completa la serie con todos los días o meses del rango.
func fillSeries(rows []repository.PeriodRow, start, end time.Time, groupBy string) []dto.RevenuePointDTO {
	layout := dto.DateLayout
	step := func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	cur := start
	if groupBy == "month" {
		layout = "2006-01"
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
		cur = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	}
	byKey := make(map[string]repository.PeriodRow, len(rows))
	for _, r := range rows {
		byKey[r.Period.Format(layout)] = r
	}
	points := []dto.RevenuePointDTO{}
	for ; !cur.After(end); cur = step(cur) {
		key := cur.Format(layout)
		r := byKey[key]
		points = append(points, dto.RevenuePointDTO{
			Period:      key,
			Revenue:     r.Revenue.Round(2),
			COGS:        r.COGS.Round(2),
			Profit:      r.Revenue.Sub(r.COGS).Round(2),
			ImportSpend: r.ImportSpend.Round(2),
		})
	}
	return points
}

// TopProducts ranking de productos por ingreso con análisis Pareto.
func (uc *ReportUseCase) TopProducts(ctx context.Context, companyID string, q dto.TopProductsRequest) (*dto.TopProductsReportDTO, error) {
	start, end, err := uc.parsePeriod(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	topN := q.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}
	// El Pareto se calcula sobre todos los productos vendidos y luego se recorta a topN.
	rows, err := uc.reports.GetSKUMargins(ctx, companyID, start, end, 0)
	if err != nil {
		return nil, fmt.Errorf("reports: SKUs: %w", err)
	}
	ranking := buildSKURanking(rows)
	total := decimal.Zero
	paretoCount := 0
	for _, r := range ranking {
		total = total.Add(r.GrossRevenue)
		if r.IsTopPareto {
			paretoCount++
		}
	}
	if len(ranking) > topN {
		ranking = ranking[:topN]
	}
	return &dto.TopProductsReportDTO{
		Period:       period(start, end),
		TotalRevenue: total.Round(2),
		Items:        ranking,
		ParetoCount:  paretoCount,
	}, nil
}

// buildSKURanking convierte los SKUs en DTOs enriquecidos con:
//   - Rank (posición ordinal por ingreso descendente).
//   - MarginPct y RevenuePct por SKU.
//   - CumulativeRevenuePct acumulado (para curva Pareto).
//   - IsTopPareto: true si este SKU cae dentro del primer 80% de ingresos acumulados.
func buildSKURanking(rows []repository.SKUMarginResult) []dto.SKURankingDTO {
	if len(rows) == 0 {
		return []dto.SKURankingDTO{}
	}

	var totalRevenue decimal.Decimal
	for _, r := range rows {
		totalRevenue = totalRevenue.Add(r.GrossRevenue)
	}

	ranking := make([]dto.SKURankingDTO, 0, len(rows))
	var cumulative decimal.Decimal

	for i, r := range rows {
		revenuePct := pct(r.GrossRevenue, totalRevenue)
		cumulative = cumulative.Add(revenuePct)
		// El primer SKU siempre cuenta aunque por sí solo supere el umbral.
		isPareto := cumulative.LessThanOrEqual(pareto80) || (i == 0)

		ranking = append(ranking, dto.SKURankingDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			UnitsSold:        r.UnitsSold,
			GrossRevenue:     r.GrossRevenue.Round(2),
			TotalCOGS:        r.TotalCOGS.Round(2),
			GrossProfit:      r.GrossProfit.Round(2),
			MarginPct:        pct(r.GrossProfit, r.GrossRevenue),
			RevenuePct:       revenuePct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      isPareto,
		})
	}
	return ranking
}

// Aging antigüedad de los saldos abiertos por tipo y tramo de mora.
func (uc *ReportUseCase) Aging(ctx context.Context, companyID string) (*dto.AgingReportDTO, error) {
	debts, err := uc.reports.ListOpenDebts(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("reports: deudas abiertas: %w", err)
	}
	today := uc.now().In(uc.loc)
	out := &dto.AgingReportDTO{AsOf: today.Format(dto.DateLayout)}
	for _, t := range []string{entity.DebtReceivable, entity.DebtPayable} {
		byBucket := map[string]*dto.AgingBucketDTO{}
		group := dto.AgingByTypeDTO{Type: t}
		for _, b := range debt.AgingBuckets {
			group.Buckets = append(group.Buckets, dto.AgingBucketDTO{Bucket: b})
		}
		for i := range group.Buckets {
			byBucket[group.Buckets[i].Bucket] = &group.Buckets[i]
		}
		for _, d := range debts {
			if d.Type != t {
				continue
			}
			b := byBucket[debt.AgingBucket(d.DueDate, today)]
			b.Amount = b.Amount.Add(d.Remaining())
			b.Count++
			group.Total = group.Total.Add(d.Remaining())
		}
		out.Types = append(out.Types, group)
	}
	return out, nil
}

// Workbook libro Excel con resumen, serie mensual, top productos, inventario y antigüedad.
func (uc *ReportUseCase) Workbook(ctx context.Context, companyID string, q dto.ReportPeriodQuery) ([]byte, error) {
	summary, err := uc.Summary(ctx, companyID, q)
	if err != nil {
		return nil, err
	}
	revenue, err := uc.Revenue(ctx, companyID, dto.RevenueReportRequest{ReportPeriodQuery: q, GroupBy: "day"})
	if err != nil {
		return nil, err
	}
	top, err := uc.TopProducts(ctx, companyID, dto.TopProductsRequest{ReportPeriodQuery: q, TopN: maxTopN})
	if err != nil {
		return nil, err
	}
	inv, err := uc.inventory.InventoryReport(ctx, companyID)
	if err != nil {
		return nil, err
	}
	aging, err := uc.Aging(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return uc.sheets.Write([]ports.Sheet{
		summarySheet(summary),
		revenueSheet(revenue),
		topSheet(top),
		inventorySheet(inv),
		agingSheet(aging),
	})
}

func summarySheet(s *dto.SummaryReportDTO) ports.Sheet {
	f := func(d decimal.Decimal) float64 { return d.InexactFloat64() }
	return ports.Sheet{
		Name:    "Resumen",
		Headers: []string{"Indicador", "Valor"},
		Rows: [][]any{
			{"Desde", s.Period.StartDate},
			{"Hasta", s.Period.EndDate},
			{"Compras (neto)", f(s.ImportTotal)},
			{"Número de compras", s.ImportCount},
			{"Ventas (neto)", f(s.ExportTotal)},
			{"IVA ventas", f(s.ExportTax)},
			{"Número de ventas", s.ExportCount},
			{"Costo de ventas", f(s.COGS)},
			{"Utilidad bruta", f(s.GrossProfit)},
			{"Margen %", f(s.MarginPct)},
			{"Por cobrar", f(s.ReceivableOutstanding)},
			{"Por pagar", f(s.PayableOutstanding)},
			{"Cuentas por cobrar vencidas", s.OverdueReceivables},
			{"Cuentas por pagar vencidas", s.OverduePayables},
			{"Valor del inventario", f(s.InventoryValue)},
		},
	}
}

func revenueSheet(r *dto.RevenueReportDTO) ports.Sheet {
	sh := ports.Sheet{Name: "Ingresos", Headers: []string{"Período", "Ventas", "Costo", "Utilidad", "Compras"}}
	for _, p := range r.Points {
		sh.Rows = append(sh.Rows, []any{p.Period, p.Revenue.InexactFloat64(), p.COGS.InexactFloat64(),
			p.Profit.InexactFloat64(), p.ImportSpend.InexactFloat64()})
	}
	return sh
}

func topSheet(t *dto.TopProductsReportDTO) ports.Sheet {
	sh := ports.Sheet{Name: "Top productos", Headers: []string{"#", "SKU", "Producto", "Unidades", "Ingreso", "Costo", "Utilidad", "Margen %", "Acumulado %", "Pareto"}}
	for _, r := range t.Items {
		sh.Rows = append(sh.Rows, []any{r.Rank, r.SKU, r.ProductName, r.UnitsSold.InexactFloat64(), r.GrossRevenue.InexactFloat64(),
			r.TotalCOGS.InexactFloat64(), r.GrossProfit.InexactFloat64(), r.MarginPct.InexactFloat64(),
			r.CumulativeRevPct.InexactFloat64(), r.IsTopPareto})
	}
	return sh
}

func inventorySheet(inv *dto.InventoryReportDTO) ports.Sheet {
	sh := ports.Sheet{Name: "Inventario", Headers: []string{"SKU", "Producto", "Unidad", "Categoría", "Stock", "Mínimo", "Costo", "Valor", "Stock bajo", "Reponer"}}
	for _, it := range inv.Items {
		sh.Rows = append(sh.Rows, []any{it.SKU, it.ProductName, it.Unit, it.Category, it.CurrentStock.InexactFloat64(),
			it.MinStock.InexactFloat64(), it.UnitCost.InexactFloat64(), it.StockValue.InexactFloat64(), it.LowStock,
			it.SuggestedOrderQty.InexactFloat64()})
	}
	return sh
}

func agingSheet(a *dto.AgingReportDTO) ports.Sheet {
	sh := ports.Sheet{Name: "Antigüedad", Headers: []string{"Tipo", "Tramo", "Documentos", "Saldo"}}
	for _, t := range a.Types {
		for _, b := range t.Buckets {
			sh.Rows = append(sh.Rows, []any{t.Type, b.Bucket, b.Count, b.Amount.InexactFloat64()})
		}
	}
	return sh
}

// parsePeriod convierte los strings de fecha en días calendario; por defecto del primer día del mes a hoy.
func (uc *ReportUseCase) parsePeriod(startStr, endStr string) (start, end time.Time, err error) {
	return parsePeriod(startStr, endStr, uc.now().In(uc.loc))
}

func parsePeriod(startStr, endStr string, now time.Time) (start, end time.Time, err error) {
	loc := now.Location()
	if endStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else if end, err = time.ParseInLocation(dto.DateLayout, endStr, loc); err != nil {
		return time.Time{}, time.Time{}, domain.Invalid("end_date", "formato esperado YYYY-MM-DD")
	}
	if startStr == "" {
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, loc)
	} else if start, err = time.ParseInLocation(dto.DateLayout, startStr, loc); err != nil {
		return time.Time{}, time.Time{}, domain.Invalid("start_date", "formato esperado YYYY-MM-DD")
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, domain.Invalid("start_date", "no puede ser posterior a end_date")
	}
	return start, end, nil
}

func period(start, end time.Time) dto.PeriodDTO {
	return dto.PeriodDTO{StartDate: start.Format(dto.DateLayout), EndDate: end.Format(dto.DateLayout)}
}

// pct part/total*100 con 2 decimales; 0 si total no es positivo.
func pct(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}
