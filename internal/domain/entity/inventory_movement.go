package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual
)

// Documentos que originan un movimiento.
const (
	MovementRefImport       = "IMPORT"
	MovementRefImportCancel = "IMPORT_CANCEL"
	MovementRefExport       = "EXPORT"
	MovementRefExportCancel = "EXPORT_CANCEL"
	MovementRefAdjustment   = "ADJUSTMENT"
)

// InventoryMovement es una línea del kardex de un producto.
type InventoryMovement struct {
	ID         string
	CompanyID  string
	ProductID  string
	Type       string
	Quantity   decimal.Decimal // positivo entrada/ajuste+, negativo salida/ajuste-
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
	StockAfter decimal.Decimal
	RefType    string
	RefID      string
	Note       string
	CreatedBy  string
	CreatedAt  time.Time
}
