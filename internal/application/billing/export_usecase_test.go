package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exportReq venta de p1 al precio de lista (precio cero toma el del producto).
func (f *fixture) exportReq(number, qty string) dto.CreateExportRequest {
	return dto.CreateExportRequest{
		CustomerID: f.customer.ID,
		Number:     number,
		IssueDate:  "2024-10-15",
		DueDate:    "2024-11-14",
		Lines:      []dto.InvoiceLineRequest{{ProductID: f.p1.ID, Quantity: dec(qty)}},
	}
}

func (f *fixture) stockUp(t *testing.T, qty, price string) {
	t.Helper()
	_, err := f.imports.Create(context.Background(), f.companyID, f.userID, f.importReq("NK-"+uuid.NewString()[:8], qty, price, "0"))
	require.NoError(t, err)
}

func TestExportCreate_DescuentaStockYCalculaCOGS(t *testing.T) {
	f := newFixture(t)
	f.stockUp(t, "10", "100")

	resp, err := f.exports.Create(context.Background(), f.companyID, f.userID, f.exportReq("", "4"))
	require.NoError(t, err)

	assert.Equal(t, "PX202410-0001", resp.Number)
	assertDec(t, "600", resp.NetAmount) // 4 x 150 (precio de lista)
	assertDec(t, "60", resp.TaxAmount)
	assertDec(t, "660", resp.GrandTotal)
	assertDec(t, "400", resp.CostTotal)
	assertDec(t, "200", resp.GrossProfit)
	assert.Len(t, resp.LookupCode, 96, "SHA-384 en hexadecimal")
	require.Len(t, resp.Lines, 1)
	require.NotNil(t, resp.Lines[0].UnitCost)
	assertDec(t, "100", *resp.Lines[0].UnitCost)

	p := f.product(f.p1.ID)
	assertDec(t, "6", p.Stock)
	assertDec(t, "100", p.Cost, "la salida no cambia el costo promedio")

	d := f.debtOf(entity.InvoiceTypeExport, resp.ID)
	require.NotNil(t, d)
	assert.Equal(t, entity.DebtReceivable, d.Type)
	assertDec(t, "660", d.Amount)
	assert.Equal(t, "2024-11-14", dto.FormatDate(d.DueDate))
}

func TestExportCreate_NumeracionConsecutiva(t *testing.T) {
	f := newFixture(t)
	f.stockUp(t, "10", "100")
	ctx := context.Background()

	first, err := f.exports.Create(ctx, f.companyID, f.userID, f.exportReq("", "1"))
	require.NoError(t, err)
	second, err := f.exports.Create(ctx, f.companyID, f.userID, f.exportReq("", "1"))
	require.NoError(t, err)

	assert.Equal(t, "PX202410-0001", first.Number)
	assert.Equal(t, "PX202410-0002", second.Number)
	assert.NotEqual(t, first.LookupCode, second.LookupCode)
}

func TestExportCreate_NumeroManualDuplicado(t *testing.T) {
	f := newFixture(t)
	f.stockUp(t, "10", "100")
	ctx := context.Background()

	_, err := f.exports.Create(ctx, f.companyID, f.userID, f.exportReq("HD-01", "1"))
	require.NoError(t, err)
	_, err = f.exports.Create(ctx, f.companyID, f.userID, f.exportReq("HD-01", "1"))
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assertDec(t, "9", f.product(f.p1.ID).Stock)
}

func TestExportCreate_StockInsuficienteNoPersiste(t *testing.T) {
	f := newFixture(t)
	f.stockUp(t, "3", "100")
	ctx := context.Background()

	req := f.exportReq("", "2")
	req.Lines = append(req.Lines, dto.InvoiceLineRequest{ProductID: f.p1.ID, Quantity: dec("2"), UnitPrice: dec("140")})
	_, err := f.exports.Create(ctx, f.companyID, f.userID, req)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, "SP-001", se.SKU)
	assert.Equal(t, "1", se.Available)

	assertDec(t, "3", f.product(f.p1.ID).Stock)
	assert.Empty(t, f.db.Exports)
	assert.Len(t, f.db.Debts, 1, "solo la deuda de la compra")

	// La secuencia se revierte con la transacción.
	resp, err := f.exports.Create(ctx, f.companyID, f.userID, f.exportReq("", "1"))
	require.NoError(t, err)
	assert.Equal(t, "PX202410-0001", resp.Number)
}

func TestExportCreate_ProductoSinStock(t *testing.T) {
	f := newFixture(t)
	req := f.exportReq("", "1")
	req.Lines[0].ProductID = f.p2.ID
	_, err := f.exports.Create(context.Background(), f.companyID, f.userID, req)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestExportCancel_ReingresaAlCostoDeLaSalida(t *testing.T) {
	f := newFixture(t)
	f.stockUp(t, "10", "100")
	ctx := context.Background()

	sale, err := f.exports.Create(ctx, f.companyID, f.userID, f.exportReq("", "5"))
	require.NoError(t, err)
	// Una compra posterior a otro costo no afecta el costo de reingreso.
	f.stockUp(t, "5", "140")
	assertDec(t, "120", f.product(f.p1.ID).Cost)

	resp, err := f.exports.Cancel(ctx, f.companyID, f.userID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, resp.Status)

	p := f.product(f.p1.ID)
	assertDec(t, "15", p.Stock)
	assertDec(t, "113.3333", p.Cost.Round(4))
	assert.Equal(t, entity.DebtCancelled, f.debtOf(entity.InvoiceTypeExport, sale.ID).Status)
}

func TestExportCancel_NoExiste(t *testing.T) {
	f := newFixture(t)
	_, err := f.exports.Cancel(context.Background(), f.companyID, f.userID, "00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
