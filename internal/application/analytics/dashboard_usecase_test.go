package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dashboardRepo() *stubReports {
	return &stubReports{
		totals: map[time.Time]repository.SalesTotals{
			day(2024, 10, 15): {ExportTotal: dec("300"), COGS: dec("180")},
			day(2024, 10, 1):  {ExportTotal: dec("4000"), COGS: dec("3000")},
		},
		skus: []repository.SKUMarginResult{
			sku("a", "900", "600"), sku("b", "800", "800"), sku("c", "700", "350"),
			sku("d", "600", "300"), sku("e", "500", "250"), sku("f", "100", "50"),
		},
		debts: repository.DebtTotals{ReceivableOutstanding: dec("1500"), PayableOutstanding: dec("2500.5")},
	}
}

func TestDashboardSummary(t *testing.T) {
	repo := dashboardRepo()
	uc := NewDashboardUseCase(repo, nil, time.Minute, time.UTC)
	uc.now = func() time.Time { return fixedNow }

	out, err := uc.GetSummary(context.Background(), "c1")
	require.NoError(t, err)

	assert.True(t, dec("300").Equal(out.TodaySales))
	assert.True(t, dec("120").Equal(out.TodayMargin))
	assert.True(t, dec("4000").Equal(out.MonthlySales))
	assert.True(t, dec("1000").Equal(out.MonthlyMargin))
	assert.True(t, dec("25").Equal(out.MonthlyMarginPct))
	assert.True(t, dec("2500.5").Equal(out.PayableOutstanding))
	assert.Equal(t, "Tháng 10/2024", out.DateLabel)
	assert.False(t, out.Cached)

	require.Len(t, out.TopSKUs, 5)
	assert.Equal(t, "SKU-a", out.TopSKUs[0].SKU)
	assert.True(t, dec("33.33").Equal(out.TopSKUs[0].MarginPercentage))
	assert.True(t, out.TopSKUs[1].MarginPercentage.IsZero())
	assert.Equal(t, []int{dashboardTopSKUs}, repo.limits)

	// Hoy es el rango [15, 15] y el mes [1, 15].
	assert.Contains(t, repo.ranges, [2]time.Time{day(2024, 10, 15), day(2024, 10, 15)})
	assert.Contains(t, repo.ranges, [2]time.Time{day(2024, 10, 1), day(2024, 10, 15)})
}

func TestDashboardSummary_UsaCache(t *testing.T) {
	repo := dashboardRepo()
	cache := apptest.NewCache()
	uc := NewDashboardUseCase(repo, cache, time.Minute, time.UTC)
	uc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	first, err := uc.GetSummary(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.Sets)
	assert.Contains(t, cache.Values, "dashboard:c1:2024-10-15")
	calls := repo.calls

	second, err := uc.GetSummary(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, calls, repo.calls, "la segunda lectura no consulta la base")
	assert.True(t, first.MonthlySales.Equal(second.MonthlySales))
	assert.Len(t, second.TopSKUs, 5)

	// Otro día es otra clave.
	uc.now = func() time.Time { return fixedNow.AddDate(0, 0, 1) }
	third, err := uc.GetSummary(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, third.Cached)
}

func TestDashboardSummary_ErrorDelRepositorio(t *testing.T) {
	repo := dashboardRepo()
	repo.err = errors.New("conexión cerrada")
	cache := apptest.NewCache()
	uc := NewDashboardUseCase(repo, cache, time.Minute, time.UTC)

	_, err := uc.GetSummary(context.Background(), "c1")
	assert.Error(t, err)
	assert.Zero(t, cache.Sets, "los errores no se guardan en caché")
}
