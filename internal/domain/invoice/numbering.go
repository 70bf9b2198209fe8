package invoice

import (
	"fmt"
	"time"
)

// ExportNumberScope clave de la secuencia mensual de facturas de venta (PX202410).
func ExportNumberScope(issue time.Time) string {
	return "PX" + issue.Format("200601")
}

// FormatExportNumber número de factura de venta: PX<yyyymm>-<seq 4 dígitos>.
func FormatExportNumber(issue time.Time, seq int64) string {
	return fmt.Sprintf("%s-%04d", ExportNumberScope(issue), seq)
}

// FormatPartnerCode código de contraparte: prefijo + secuencia de 4 dígitos (KH0001, NCC0012).
func FormatPartnerCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}
