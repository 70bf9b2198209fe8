// Package debt reglas de saldo y estado de cuentas por pagar y por cobrar.
package debt

import (
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ResolveStatus aplica la regla de estado en orden:
// anulada se mantiene; saldo 0 -> PAID; vencida -> OVERDUE; con abonos -> PARTIAL; si no UNPAID.
// today se compara por día calendario.
func ResolveStatus(d *entity.Debt, today time.Time) string {
	if d.Status == entity.DebtCancelled {
		return entity.DebtCancelled
	}
	if !d.Remaining().IsPositive() {
		return entity.DebtPaid
	}
	if d.DueDate != nil && truncateDay(*d.DueDate).Before(truncateDay(today)) {
		return entity.DebtOverdue
	}
	if d.PaidAmount.IsPositive() {
		return entity.DebtPartial
	}
	return entity.DebtUnpaid
}

// Refresh actualiza d.Status con la regla vigente a la fecha today.
func Refresh(d *entity.Debt, today time.Time) {
	d.Status = ResolveStatus(d, today)
}

// ValidatePayment verifica 0 < monto <= saldo y el medio de pago.
func ValidatePayment(d *entity.Debt, amount decimal.Decimal, method string) error {
	if d.Status == entity.DebtCancelled {
		return domain.ErrConflict
	}
	if !amount.IsPositive() {
		return domain.Invalid("amount", "debe ser mayor que cero")
	}
	if !entity.ValidPaymentMethod(method) {
		return domain.Invalid("method", "debe ser CASH, BANK_TRANSFER u OTHER")
	}
	if amount.GreaterThan(d.Remaining()) {
		return domain.ErrOverpayment
	}
	return nil
}

// ApplyPayment suma el abono y recalcula el estado.
func ApplyPayment(d *entity.Debt, amount decimal.Decimal, today time.Time) {
	d.PaidAmount = d.PaidAmount.Add(amount)
	d.Status = ResolveStatus(d, today)
}

// RevertPayment resta un abono eliminado y recalcula el estado.
func RevertPayment(d *entity.Debt, amount decimal.Decimal, today time.Time) {
	d.PaidAmount = d.PaidAmount.Sub(amount)
	if d.PaidAmount.IsNegative() {
		d.PaidAmount = decimal.Zero
	}
	d.Status = ResolveStatus(d, today)
}

// AgingBucket clasifica los días de mora: current, 1-30, 31-60, 61-90, >90.
func AgingBucket(due *time.Time, today time.Time) string {
	if due == nil {
		return "current"
	}
	days := int(truncateDay(today).Sub(truncateDay(*due)).Hours() / 24)
	switch {
	case days <= 0:
		return "current"
	case days <= 30:
		return "1-30"
	case days <= 60:
		return "31-60"
	case days <= 90:
		return "61-90"
	default:
		return ">90"
	}
}

// AgingBuckets orden de presentación de los tramos de mora.
var AgingBuckets = []string{"current", "1-30", "31-60", "61-90", ">90"}

func truncateDay(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
