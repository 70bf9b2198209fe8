package debt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/debt"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2024, 10, 15, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestResolveStatus(t *testing.T) {
	cases := []struct {
		name string
		d    entity.Debt
		want string
	}{
		{"anulada se mantiene", entity.Debt{Status: entity.DebtCancelled, Amount: dec("10")}, entity.DebtCancelled},
		{"saldo cero", entity.Debt{Amount: dec("10"), PaidAmount: dec("10"), DueDate: dayPtr(2024, 1, 1)}, entity.DebtPaid},
		{"vencida con abono", entity.Debt{Amount: dec("10"), PaidAmount: dec("4"), DueDate: dayPtr(2024, 10, 14)}, entity.DebtOverdue},
		{"vence hoy no es mora", entity.Debt{Amount: dec("10"), DueDate: dayPtr(2024, 10, 15)}, entity.DebtUnpaid},
		{"parcial", entity.Debt{Amount: dec("10"), PaidAmount: dec("4")}, entity.DebtPartial},
		{"sin abonos", entity.Debt{Amount: dec("10")}, entity.DebtUnpaid},
	}
	for _, c := range cases {
		d := c.d
		assert.Equal(t, c.want, debt.ResolveStatus(&d, today), c.name)
	}
}

func TestValidatePayment(t *testing.T) {
	d := &entity.Debt{Amount: dec("100"), PaidAmount: dec("60"), Status: entity.DebtPartial}

	assert.NoError(t, debt.ValidatePayment(d, dec("40"), entity.PaymentCash))
	assert.True(t, errors.Is(debt.ValidatePayment(d, dec("40.01"), entity.PaymentCash), domain.ErrOverpayment))
	assert.True(t, errors.Is(debt.ValidatePayment(d, dec("0"), entity.PaymentCash), domain.ErrInvalidInput))
	assert.True(t, errors.Is(debt.ValidatePayment(d, dec("1"), "CHEQUE"), domain.ErrInvalidInput))

	d.Status = entity.DebtCancelled
	assert.True(t, errors.Is(debt.ValidatePayment(d, dec("1"), entity.PaymentCash), domain.ErrConflict))
}

func TestApplyAndRevertPayment(t *testing.T) {
	d := &entity.Debt{Amount: dec("100"), Status: entity.DebtUnpaid}

	debt.ApplyPayment(d, dec("30"), today)
	assert.Equal(t, entity.DebtPartial, d.Status)
	debt.ApplyPayment(d, dec("70"), today)
	assert.Equal(t, entity.DebtPaid, d.Status)
	assert.True(t, d.Remaining().IsZero())

	debt.RevertPayment(d, dec("70"), today)
	assert.Equal(t, entity.DebtPartial, d.Status)
	assert.True(t, d.Remaining().Equal(dec("70")))
}

func TestAgingBucket(t *testing.T) {
	assert.Equal(t, "current", debt.AgingBucket(nil, today))
	assert.Equal(t, "current", debt.AgingBucket(dayPtr(2024, 10, 20), today))
	assert.Equal(t, "1-30", debt.AgingBucket(dayPtr(2024, 10, 14), today))
	assert.Equal(t, "31-60", debt.AgingBucket(dayPtr(2024, 9, 1), today))
	assert.Equal(t, "61-90", debt.AgingBucket(dayPtr(2024, 7, 20), today))
	assert.Equal(t, ">90", debt.AgingBucket(dayPtr(2024, 1, 1), today))
}
