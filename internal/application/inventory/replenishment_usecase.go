package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase genera el reporte de inventario con la sugerencia de reposición.
type ReplenishmentUseCase struct {
	reports repository.ReportRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(reports repository.ReportRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{reports: reports}
}

// InventoryReport lista todos los productos con stock, valor (stock*costo), alerta de
// stock bajo y cantidad sugerida max(min*2 - stock, 0). Los productos con stock bajo van primero.
func (uc *ReplenishmentUseCase) InventoryReport(ctx context.Context, companyID string) (*dto.InventoryReportDTO, error) {
	products, err := uc.reports.ListProducts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	report := &dto.InventoryReportDTO{
		TotalValue:   decimal.Zero,
		ProductCount: len(products),
		Items:        make([]dto.ReplenishmentSuggestionDTO, 0, len(products)),
	}
	for _, p := range products {
		low := p.IsLowStock()
		if low {
			report.LowStockCount++
		}
		value := p.StockValue()
		report.TotalValue = report.TotalValue.Add(value)
		report.Items = append(report.Items, dto.ReplenishmentSuggestionDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			Unit:              p.Unit,
			Category:          p.Category,
			CurrentStock:      p.Stock,
			MinStock:          p.MinStock,
			UnitCost:          p.Cost,
			StockValue:        value,
			LowStock:          low,
			SuggestedOrderQty: inventory.SuggestedReorder(p.Stock, p.MinStock),
		})
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].LowStock && !report.Items[j].LowStock
	})
	return report, nil
}
