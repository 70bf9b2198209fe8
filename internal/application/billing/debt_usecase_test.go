package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saleDebt venta a crédito de 660 (4 x 150 + IVA 10%) y su deuda RECEIVABLE.
func (f *fixture) saleDebt(t *testing.T, due string) (*dto.ExportInvoiceResponse, *entity.Debt) {
	t.Helper()
	f.stockUp(t, "10", "100")
	req := f.exportReq("", "4")
	req.DueDate = due
	sale, err := f.exports.Create(context.Background(), f.companyID, f.userID, req)
	require.NoError(t, err)
	d := f.debtOf(entity.InvoiceTypeExport, sale.ID)
	require.NotNil(t, d)
	return sale, d
}

func TestDebtAddPayment_ParcialYTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, d := f.saleDebt(t, "")

	resp, err := f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{
		Amount: dec("260"), Method: entity.PaymentBankTransfer, PaidAt: "2024-10-15", Reference: " UNC-889 ",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DebtPartial, resp.Status)
	assertDec(t, "400", resp.Remaining)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "UNC-889", resp.Payments[0].Reference)
	assertDec(t, "260", f.db.Exports[sale.ID].PaidAmount, "la factura acumula el abono")

	_, err = f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{Amount: dec("400.01"), Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrOverpayment))

	resp, err = f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{Amount: dec("400"), Method: entity.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, entity.DebtPaid, resp.Status)
	assertDec(t, "0", resp.Remaining)
	assert.Len(t, resp.Payments, 2)
	assertDec(t, "660", f.db.Exports[sale.ID].PaidAmount)
}

func TestDebtAddPayment_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, d := f.saleDebt(t, "")

	_, err := f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{Amount: dec("0"), Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{Amount: dec("10"), Method: entity.PaymentCash, PaidAt: "15/10/2024"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.debts.AddPayment(ctx, f.companyID, f.userID, "no-existe", dto.PaymentRequest{Amount: dec("10"), Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.debts.AddPayment(ctx, "otra-empresa", f.userID, d.ID, dto.PaymentRequest{Amount: dec("10"), Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, f.db.Payments)
}

func TestDebtDeletePayment_RecalculaSaldo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, d := f.saleDebt(t, "")

	resp, err := f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{Amount: dec("660"), Method: entity.PaymentCash})
	require.NoError(t, err)
	require.Equal(t, entity.DebtPaid, resp.Status)

	resp, err = f.debts.DeletePayment(ctx, f.companyID, d.ID, resp.Payments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DebtUnpaid, resp.Status)
	assertDec(t, "660", resp.Remaining)
	assert.Empty(t, resp.Payments)
	assertDec(t, "0", f.db.Exports[sale.ID].PaidAmount)

	_, err = f.debts.DeletePayment(ctx, f.companyID, d.ID, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDebtDeletePayment_DeudaAnulada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, d := f.saleDebt(t, "")

	_, err := f.exports.Cancel(ctx, f.companyID, f.userID, sale.ID)
	require.NoError(t, err)

	_, err = f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{Amount: dec("1"), Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	_, err = f.debts.DeletePayment(ctx, f.companyID, d.ID, "x")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestDebtMarkOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, vencida := f.saleDebt(t, "2024-10-15")
	_, vigente := f.saleDebt(t, "2024-12-31")

	// El vencimiento 2024-10-15 entra en mora al día siguiente.
	f.debts.now = func() time.Time { return fixedNow.AddDate(0, 0, 1) }
	n, err := f.debts.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, entity.DebtOverdue, f.db.Debts[vencida.ID].Status)
	assert.Equal(t, entity.DebtUnpaid, f.db.Debts[vigente.ID].Status)

	list, err := f.debts.List(ctx, f.companyID, dto.DebtListQuery{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, vencida.ID, list.Items[0].ID)
}

func TestDebtPartnerSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, d := f.saleDebt(t, "")
	_, err := f.debts.AddPayment(ctx, f.companyID, f.userID, d.ID, dto.PaymentRequest{Amount: dec("60"), Method: entity.PaymentCash})
	require.NoError(t, err)

	sum, err := f.debts.PartnerSummary(ctx, f.companyID, entity.PartnerCustomer, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DebtReceivable, sum.DebtType)
	assertDec(t, "660", sum.TotalAmount)
	assertDec(t, "60", sum.TotalPaid)
	assertDec(t, "600", sum.Outstanding)
	assert.Equal(t, 1, sum.OpenCount)
	require.Len(t, sum.OpenDebts, 1)
	assert.Equal(t, "KH0001", sum.Partner.Code)

	sup, err := f.debts.PartnerSummary(ctx, f.companyID, entity.PartnerSupplier, f.supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DebtPayable, sup.DebtType)
	assertDec(t, "1100", sup.Outstanding)

	_, err = f.debts.PartnerSummary(ctx, f.companyID, entity.PartnerSupplier, f.customer.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDebtLectura_VencidaAntesDeLaTareaDiaria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, d := f.saleDebt(t, "2024-10-20")
	require.Equal(t, entity.DebtUnpaid, d.Status)

	f.debts.now = func() time.Time { return time.Date(2024, 10, 25, 8, 0, 0, 0, time.UTC) }

	got, err := f.debts.GetByID(ctx, f.companyID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DebtOverdue, got.Status)

	list, err := f.debts.List(ctx, f.companyID, dto.DebtListQuery{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entity.DebtOverdue, list.Items[0].Status)

	list, err = f.debts.List(ctx, f.companyID, dto.DebtListQuery{Status: entity.DebtUnpaid})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "una deuda vencida ya no figura como pendiente")

	sum, err := f.debts.PartnerSummary(ctx, f.companyID, entity.PartnerCustomer, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.OverdueCount)
	assert.Equal(t, entity.DebtUnpaid, f.db.Debts[d.ID].Status, "la lectura no modifica lo guardado")
}
