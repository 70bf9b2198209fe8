package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) importReq(number, qty, price, paid string) dto.CreateImportRequest {
	return dto.CreateImportRequest{
		SupplierID: f.supplier.ID,
		Series:     "1C24TAA",
		Number:     number,
		IssueDate:  "2024-10-14",
		PaidAmount: dec(paid),
		Lines:      []dto.InvoiceLineRequest{{ProductID: f.p1.ID, Quantity: dec(qty), UnitPrice: dec(price)}},
	}
}

func TestImportCreate_SumaStockYCreaDeuda(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.imports.Create(ctx, f.companyID, f.userID, f.importReq("0000123", "10", "100", "100"))
	require.NoError(t, err)

	assertDec(t, "1000", resp.NetAmount)
	assertDec(t, "100", resp.TaxAmount) // IVA del producto (10%)
	assertDec(t, "1100", resp.GrandTotal)
	assertDec(t, "1000", resp.Remaining)
	assert.Equal(t, entity.InvoiceSourceManual, resp.Source)
	assert.Equal(t, "2024-10-14", resp.IssueDate)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "SP-001", resp.Lines[0].SKU)

	p := f.product(f.p1.ID)
	assertDec(t, "10", p.Stock)
	assertDec(t, "100", p.Cost)

	d := f.debtOf(entity.InvoiceTypeImport, resp.ID)
	require.NotNil(t, d)
	assert.Equal(t, entity.DebtPayable, d.Type)
	assert.Equal(t, entity.DebtUnpaid, d.Status)
	assertDec(t, "1000", d.Amount)
	assert.Equal(t, "0000123", d.InvoiceNumber)
}

func TestImportCreate_PagadaCompletaNoGeneraDeuda(t *testing.T) {
	f := newFixture(t)
	resp, err := f.imports.Create(context.Background(), f.companyID, f.userID, f.importReq("1", "2", "100", "220"))
	require.NoError(t, err)
	assert.Nil(t, f.debtOf(entity.InvoiceTypeImport, resp.ID))
}

func TestImportCreate_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.imports.Create(ctx, f.companyID, f.userID, f.importReq("1", "10", "100", "0"))
	require.NoError(t, err)
	_, err = f.imports.Create(ctx, f.companyID, f.userID, f.importReq("2", "10", "120", "0"))
	require.NoError(t, err)

	p := f.product(f.p1.ID)
	assertDec(t, "20", p.Stock)
	assertDec(t, "110", p.Cost)
}

func TestImportCreate_NumeroDuplicado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.imports.Create(ctx, f.companyID, f.userID, f.importReq("77", "5", "100", "0"))
	require.NoError(t, err)

	_, err = f.imports.Create(ctx, f.companyID, f.userID, f.importReq("77", "5", "100", "0"))
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assertDec(t, "5", f.product(f.p1.ID).Stock)
	assert.Len(t, f.db.Imports, 1)
}

func TestImportCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.importReq("1", "1", "100", "500")
	_, err := f.imports.Create(ctx, f.companyID, f.userID, req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "pagado mayor al total")

	req = f.importReq("1", "0", "100", "0")
	_, err = f.imports.Create(ctx, f.companyID, f.userID, req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad cero")

	req = f.importReq("1", "1", "100", "0")
	req.Lines[0].VATRate = decPtr("7")
	_, err = f.imports.Create(ctx, f.companyID, f.userID, req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "IVA no admitido")

	req = f.importReq("1", "1", "100", "0")
	req.DueDate = "2024-10-01"
	_, err = f.imports.Create(ctx, f.companyID, f.userID, req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "vence antes de emitirse")

	req = f.importReq("1", "1", "100", "0")
	req.SupplierID = f.customer.ID
	_, err = f.imports.Create(ctx, f.companyID, f.userID, req)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "un cliente no es proveedor")

	assert.Empty(t, f.db.Imports)
	assert.Empty(t, f.db.Movements)
}

func TestImportCancel_RevierteStockCostoYDeuda(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.imports.Create(ctx, f.companyID, f.userID, f.importReq("1", "10", "100", "0"))
	require.NoError(t, err)
	second, err := f.imports.Create(ctx, f.companyID, f.userID, f.importReq("2", "10", "120", "0"))
	require.NoError(t, err)

	resp, err := f.imports.Cancel(ctx, f.companyID, f.userID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, resp.Status)
	require.NotNil(t, resp.CancelledAt)

	p := f.product(f.p1.ID)
	assertDec(t, "10", p.Stock)
	assertDec(t, "100", p.Cost)
	assert.Equal(t, entity.DebtCancelled, f.debtOf(entity.InvoiceTypeImport, second.ID).Status)

	_, err = f.imports.Cancel(ctx, f.companyID, f.userID, second.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict), "ya anulada")
}

func TestImportCancel_ConAbonosEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.imports.Create(ctx, f.companyID, f.userID, f.importReq("1", "10", "100", "0"))
	require.NoError(t, err)
	d := f.debtOf(entity.InvoiceTypeImport, inv.ID)
	_, err = f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{Amount: dec("100"), Method: entity.PaymentCash})
	require.NoError(t, err)

	_, err = f.imports.Cancel(ctx, f.companyID, f.userID, inv.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, entity.InvoiceStatusCompleted, f.db.Imports[inv.ID].Status)
	assertDec(t, "10", f.product(f.p1.ID).Stock)
}

func TestImportCancel_MercanciaYaVendida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.imports.Create(ctx, f.companyID, f.userID, f.importReq("1", "10", "100", "0"))
	require.NoError(t, err)
	_, err = f.exports.Create(ctx, f.companyID, f.userID, f.exportReq("", "6"))
	require.NoError(t, err)

	_, err = f.imports.Cancel(ctx, f.companyID, f.userID, inv.ID)
	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "SP-001", se.SKU)
	assert.Equal(t, entity.InvoiceStatusCompleted, f.db.Imports[inv.ID].Status)
	assertDec(t, "4", f.product(f.p1.ID).Stock)
}

func TestImportList_FiltraPorProveedorYFecha(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.imports.Create(ctx, f.companyID, f.userID, f.importReq("1", "1", "100", "0"))
	require.NoError(t, err)
	req := f.importReq("2", "1", "100", "0")
	req.IssueDate = "2024-09-01"
	_, err = f.imports.Create(ctx, f.companyID, f.userID, req)
	require.NoError(t, err)

	list, err := f.imports.List(ctx, f.companyID, dto.InvoiceListQuery{PartnerID: f.supplier.ID, StartDate: "2024-10-01"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "1", list.Items[0].Number)
	assert.Equal(t, 1, list.Page.Total)

	_, err = f.imports.List(ctx, f.companyID, dto.InvoiceListQuery{StartDate: "2024-10-10", EndDate: "2024-10-01"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
