package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 10, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// stubReports repositorio de reportes con respuestas fijas; registra los rangos consultados.
type stubReports struct {
	mu      sync.Mutex
	totals  map[time.Time]repository.SalesTotals // por fecha de inicio
	series  []repository.PeriodRow
	skus    []repository.SKUMarginResult
	debts   repository.DebtTotals
	value   decimal.Decimal
	open    []*entity.Debt
	prods   []*entity.Product
	err     error
	calls   int
	ranges  [][2]time.Time
	limits  []int
	groupBy string
}

func (s *stubReports) record(start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.ranges = append(s.ranges, [2]time.Time{start, end})
}

func (s *stubReports) GetSalesTotals(ctx context.Context, companyID string, start, end time.Time) (repository.SalesTotals, error) {
	s.record(start, end)
	return s.totals[start], s.err
}

func (s *stubReports) GetRevenueSeries(ctx context.Context, companyID string, start, end time.Time, groupBy string) ([]repository.PeriodRow, error) {
	s.record(start, end)
	s.mu.Lock()
	s.groupBy = groupBy
	s.mu.Unlock()
	return s.series, s.err
}

func (s *stubReports) GetSKUMargins(ctx context.Context, companyID string, start, end time.Time, limit int) ([]repository.SKUMarginResult, error) {
	s.record(start, end)
	s.mu.Lock()
	s.limits = append(s.limits, limit)
	s.mu.Unlock()
	rows := s.skus
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, s.err
}

func (s *stubReports) GetDebtTotals(ctx context.Context, companyID string) (repository.DebtTotals, error) {
	return s.debts, nil
}

func (s *stubReports) GetInventoryValue(ctx context.Context, companyID string) (decimal.Decimal, error) {
	return s.value, nil
}

func (s *stubReports) ListOpenDebts(ctx context.Context, companyID string) ([]*entity.Debt, error) {
	return s.open, nil
}

func (s *stubReports) ListProducts(ctx context.Context, companyID string) ([]*entity.Product, error) {
	return s.prods, nil
}

// captureSheets guarda las hojas recibidas.
type captureSheets struct{ sheets []ports.Sheet }

func (c *captureSheets) Write(sheets []ports.Sheet) ([]byte, error) {
	c.sheets = sheets
	return []byte("xlsx"), nil
}

func newReportUseCase(repo *stubReports, sheets ports.SpreadsheetWriter) *ReportUseCase {
	uc := NewReportUseCase(repo, inventory.NewReplenishmentUseCase(repo), sheets, time.UTC)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func sku(id, revenue, cogs string) repository.SKUMarginResult {
	return repository.SKUMarginResult{
		ProductID: id, SKU: "SKU-" + id, ProductName: "Producto " + id,
		UnitsSold: dec("1"), GrossRevenue: dec(revenue), TotalCOGS: dec(cogs),
		GrossProfit: dec(revenue).Sub(dec(cogs)),
	}
}

func TestParsePeriod(t *testing.T) {
	start, end, err := parsePeriod("", "", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 10, 1), start)
	assert.Equal(t, day(2024, 10, 15), end)

	start, end, err = parsePeriod("", "2024-03-20", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 1), start, "por defecto el primer día del mes de end_date")
	assert.Equal(t, day(2024, 3, 20), end)

	_, _, err = parsePeriod("2024-10-10", "2024-10-01", fixedNow)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, _, err = parsePeriod("10/01/2024", "", fixedNow)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSummary_MargenYSaldos(t *testing.T) {
	repo := &stubReports{
		totals: map[time.Time]repository.SalesTotals{
			day(2024, 10, 1): {ImportTotal: dec("5000"), ImportCount: 3, ExportTotal: dec("2000"), ExportTax: dec("200"), COGS: dec("1500"), ExportCount: 4},
		},
		debts: repository.DebtTotals{ReceivableOutstanding: dec("700"), PayableOutstanding: dec("1200"), OverdueReceivables: 1},
		value: dec("3500.456"),
	}
	out, err := newReportUseCase(repo, nil).Summary(context.Background(), "c1", dto.ReportPeriodQuery{})
	require.NoError(t, err)

	assert.Equal(t, dto.PeriodDTO{StartDate: "2024-10-01", EndDate: "2024-10-15"}, out.Period)
	assert.True(t, dec("500").Equal(out.GrossProfit))
	assert.True(t, dec("25").Equal(out.MarginPct))
	assert.True(t, dec("700").Equal(out.ReceivableOutstanding))
	assert.True(t, dec("3500.46").Equal(out.InventoryValue))
	assert.Equal(t, 4, out.ExportCount)
	assert.Equal(t, 1, out.OverdueReceivables)
}

func TestSummary_SinVentasMargenCero(t *testing.T) {
	out, err := newReportUseCase(&stubReports{}, nil).Summary(context.Background(), "c1", dto.ReportPeriodQuery{})
	require.NoError(t, err)
	assert.True(t, out.MarginPct.IsZero())
}

func TestRevenue_CompletaDiasSinMovimiento(t *testing.T) {
	repo := &stubReports{series: []repository.PeriodRow{
		{Period: day(2024, 10, 2), Revenue: dec("100"), COGS: dec("60")},
		{Period: day(2024, 10, 4), Revenue: dec("50"), COGS: dec("20"), ImportSpend: dec("300")},
	}}
	out, err := newReportUseCase(repo, nil).Revenue(context.Background(), "c1", dto.RevenueReportRequest{
		ReportPeriodQuery: dto.ReportPeriodQuery{StartDate: "2024-10-01", EndDate: "2024-10-05"},
	})
	require.NoError(t, err)

	assert.Equal(t, "day", out.GroupBy)
	require.Len(t, out.Points, 5)
	assert.Equal(t, "2024-10-01", out.Points[0].Period)
	assert.True(t, out.Points[0].Revenue.IsZero())
	assert.True(t, dec("40").Equal(out.Points[1].Profit))
	assert.True(t, dec("300").Equal(out.Points[3].ImportSpend))
	assert.Equal(t, "2024-10-05", out.Points[4].Period)
}

func TestRevenue_AgrupadoPorMes(t *testing.T) {
	repo := &stubReports{series: []repository.PeriodRow{{Period: day(2024, 9, 1), Revenue: dec("10")}}}
	out, err := newReportUseCase(repo, nil).Revenue(context.Background(), "c1", dto.RevenueReportRequest{
		ReportPeriodQuery: dto.ReportPeriodQuery{StartDate: "2024-08-15", EndDate: "2024-10-03"},
		GroupBy:           "month",
	})
	require.NoError(t, err)
	assert.Equal(t, "month", repo.groupBy)
	require.Len(t, out.Points, 3)
	assert.Equal(t, []string{"2024-08", "2024-09", "2024-10"}, []string{out.Points[0].Period, out.Points[1].Period, out.Points[2].Period})
	assert.True(t, dec("10").Equal(out.Points[1].Revenue))
}

func TestTopProducts_Pareto(t *testing.T) {
	repo := &stubReports{skus: []repository.SKUMarginResult{
		sku("a", "500", "300"),
		sku("b", "300", "100"),
		sku("c", "150", "150"),
		sku("d", "50", "10"),
	}}
	out, err := newReportUseCase(repo, nil).TopProducts(context.Background(), "c1", dto.TopProductsRequest{TopN: 3})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, repo.limits, "el Pareto se calcula sobre todos los SKUs")
	assert.True(t, dec("1000").Equal(out.TotalRevenue))
	assert.Equal(t, 2, out.ParetoCount) // 50% + 30% = 80%
	require.Len(t, out.Items, 3)

	assert.Equal(t, 1, out.Items[0].Rank)
	assert.True(t, dec("40").Equal(out.Items[0].MarginPct))
	assert.True(t, dec("50").Equal(out.Items[0].RevenuePct))
	assert.True(t, out.Items[1].IsTopPareto)
	assert.True(t, dec("80").Equal(out.Items[1].CumulativeRevPct))
	assert.False(t, out.Items[2].IsTopPareto)
	assert.True(t, out.Items[2].MarginPct.IsZero())
}

func TestBuildSKURanking_PrimerSKUSiempreEnPareto(t *testing.T) {
	ranking := buildSKURanking([]repository.SKUMarginResult{sku("a", "950", "0"), sku("b", "50", "0")})
	require.Len(t, ranking, 2)
	assert.True(t, ranking[0].IsTopPareto)
	assert.False(t, ranking[1].IsTopPareto)
	assert.Empty(t, buildSKURanking(nil))
}

func TestAging_AgrupaPorTipoYTramo(t *testing.T) {
	due := func(d time.Time) *time.Time { return &d }
	repo := &stubReports{open: []*entity.Debt{
		{Type: entity.DebtReceivable, Amount: dec("100"), DueDate: due(day(2024, 10, 20))},
		{Type: entity.DebtReceivable, Amount: dec("200"), PaidAmount: dec("50"), DueDate: due(day(2024, 10, 1))},
		{Type: entity.DebtReceivable, Amount: dec("80")},
		{Type: entity.DebtPayable, Amount: dec("500"), DueDate: due(day(2024, 6, 1))},
	}}
	out, err := newReportUseCase(repo, nil).Aging(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "2024-10-15", out.AsOf)
	require.Len(t, out.Types, 2)
	rec, pay := out.Types[0], out.Types[1]
	assert.Equal(t, entity.DebtReceivable, rec.Type)
	assert.True(t, dec("330").Equal(rec.Total))
	require.Len(t, rec.Buckets, 5)
	assert.Equal(t, "current", rec.Buckets[0].Bucket)
	assert.Equal(t, 2, rec.Buckets[0].Count)
	assert.True(t, dec("180").Equal(rec.Buckets[0].Amount))
	assert.Equal(t, "1-30", rec.Buckets[1].Bucket)
	assert.True(t, dec("150").Equal(rec.Buckets[1].Amount))

	assert.Equal(t, entity.DebtPayable, pay.Type)
	assert.Equal(t, ">90", pay.Buckets[4].Bucket)
	assert.Equal(t, 1, pay.Buckets[4].Count)
}

func TestWorkbook_CincoHojas(t *testing.T) {
	repo := &stubReports{
		skus:  []repository.SKUMarginResult{sku("a", "100", "50")},
		prods: []*entity.Product{{ID: "p", SKU: "P-1", Name: "Gạo", Stock: dec("2"), Cost: dec("10"), MinStock: dec("5")}},
	}
	sheets := &captureSheets{}
	data, err := newReportUseCase(repo, sheets).Workbook(context.Background(), "c1", dto.ReportPeriodQuery{StartDate: "2024-10-01", EndDate: "2024-10-03"})
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)

	require.Len(t, sheets.sheets, 5)
	names := make([]string, 0, 5)
	for _, s := range sheets.sheets {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Resumen", "Ingresos", "Top productos", "Inventario", "Antigüedad"}, names)
	assert.Len(t, sheets.sheets[1].Rows, 3, "un renglón por día")
	assert.Len(t, sheets.sheets[3].Rows, 1)
	assert.Equal(t, true, sheets.sheets[3].Rows[0][8], "stock bajo")
}

