package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock previo negativo o nulo el costo de la entrada reemplaza al actual.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if !stockActual.IsPositive() {
		return costoEntrada.Round(4)
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}

// CostAfterReversal deshace una entrada previa (anulación de compra):
// (Stock*Costo - CantRetirada*CostoEntrada) / (Stock - CantRetirada).
// Si el stock resultante es cero el costo vuelve a cero; si el cálculo queda
// negativo (ventas intermedias a otro costo) se conserva el costo actual.
func CostAfterReversal(stockActual, costoActual, cantRetirada, costoEntrada decimal.Decimal) decimal.Decimal {
	rest := stockActual.Sub(cantRetirada)
	if !rest.IsPositive() {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Sub(cantRetirada.Mul(costoEntrada))
	if num.IsNegative() {
		return costoActual
	}
	return num.Div(rest).Round(4)
}

// SuggestedReorder cantidad sugerida para reponer: max(min*2 - stock, 0).
func SuggestedReorder(stock, minStock decimal.Decimal) decimal.Decimal {
	q := minStock.Mul(decimal.NewFromInt(2)).Sub(stock)
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}
