// Package analytics contiene los casos de uso para reportes de negocio y el
// Dashboard de Analítica Financiera.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

const dashboardTopSKUs = 5 // número de SKUs en el widget del dashboard

// DashboardUseCase genera el resumen financiero del día y del mes en curso.
//
// Fuente de datos: ReportRepository (consultas read-only).
// Si hay caché configurada el resumen se guarda por empresa y día durante ttl.
type DashboardUseCase struct {
	reports repository.ReportRepository
	cache   ports.Cache
	ttl     time.Duration
	loc     *time.Location
	now     func() time.Time
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil.
func NewDashboardUseCase(reports repository.ReportRepository, cache ports.Cache, ttl time.Duration, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{reports: reports, cache: cache, ttl: ttl, loc: loc, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO para la empresa indicada.
//
// Cuatro llamadas en paralelo:
//  1. GetSalesTotals(hoy)     → TodaySales + TodayMargin
//  2. GetSalesTotals(mes)     → MonthlySales + MonthlyMargin
//  3. GetSKUMargins(mes, 5)   → TopSKUs
//  4. GetDebtTotals           → saldos por cobrar y por pagar
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now().In(uc.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, uc.loc)
	key := fmt.Sprintf("dashboard:%s:%s", companyID, today.Format(dto.DateLayout))

	if cached := uc.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	type totalsResult struct {
		t   repository.SalesTotals
		err error
	}
	type skusResult struct {
		rows []repository.SKUMarginResult
		err  error
	}
	type debtResult struct {
		t   repository.DebtTotals
		err error
	}

	todayCh := make(chan totalsResult, 1)
	monthCh := make(chan totalsResult, 1)
	skusCh := make(chan skusResult, 1)
	debtCh := make(chan debtResult, 1)

	go func() {
		t, err := uc.reports.GetSalesTotals(ctx, companyID, today, today)
		todayCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.reports.GetSalesTotals(ctx, companyID, monthStart, today)
		monthCh <- totalsResult{t, err}
	}()
	go func() {
		rows, err := uc.reports.GetSKUMargins(ctx, companyID, monthStart, today, dashboardTopSKUs)
		skusCh <- skusResult{rows, err}
	}()
	go func() {
		t, err := uc.reports.GetDebtTotals(ctx, companyID)
		debtCh <- debtResult{t, err}
	}()

	todayRes, month, skus, debts := <-todayCh, <-monthCh, <-skusCh, <-debtCh

	if todayRes.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", todayRes.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if skus.err != nil {
		return nil, fmt.Errorf("dashboard: top SKUs: %w", skus.err)
	}
	if debts.err != nil {
		return nil, fmt.Errorf("dashboard: saldos: %w", debts.err)
	}

	monthMargin := month.t.ExportTotal.Sub(month.t.COGS)
	out := &dto.DashboardSummaryDTO{
		TodaySales:            todayRes.t.ExportTotal.Round(2),
		TodayMargin:           todayRes.t.ExportTotal.Sub(todayRes.t.COGS).Round(2),
		MonthlySales:          month.t.ExportTotal.Round(2),
		MonthlyMargin:         monthMargin.Round(2),
		MonthlyMarginPct:      pct(monthMargin, month.t.ExportTotal),
		ReceivableOutstanding: debts.t.ReceivableOutstanding.Round(2),
		PayableOutstanding:    debts.t.PayableOutstanding.Round(2),
		TopSKUs:               toTopSKUs(skus.rows),
		DateLabel:             monthLabel(now),
	}
	uc.store(ctx, key, out)
	return out, nil
}

func toTopSKUs(rows []repository.SKUMarginResult) []dto.TopSKUDTO {
	out := make([]dto.TopSKUDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopSKUDTO{
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			QuantitySold:     r.UnitsSold,
			TotalRevenue:     r.GrossRevenue.Round(2),
			MarginPercentage: pct(r.GrossRevenue.Sub(r.TotalCOGS), r.GrossRevenue),
		})
	}
	return out
}

// fromCache devuelve nil si no hay caché, no hay entrada o falla la lectura.
func (uc *DashboardUseCase) fromCache(ctx context.Context, key string) *dto.DashboardSummaryDTO {
	if uc.cache == nil {
		return nil
	}
	raw, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dashboard: lectura de caché falló")
		return nil
	}
	if !ok {
		return nil
	}
	var out dto.DashboardSummaryDTO
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dashboard: entrada de caché inválida")
		return nil
	}
	out.Cached = true
	return &out
}

func (uc *DashboardUseCase) store(ctx context.Context, key string, v *dto.DashboardSummaryDTO) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, raw, uc.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dashboard: escritura de caché falló")
	}
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Tháng 10/2024".
func monthLabel(t time.Time) string {
	return fmt.Sprintf("Tháng %d/%d", int(t.Month()), t.Year())
}

