package ports

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// DebtStatement datos del estado de cuenta de una contraparte.
type DebtStatement struct {
	Company *entity.Company
	Partner *entity.Partner
	Type    string // PAYABLE | RECEIVABLE
	Debts   []*entity.Debt
	AsOf    time.Time
}

// DocumentPDFGenerator genera los documentos impresos.
type DocumentPDFGenerator interface {
	// GenerateImportPDF nota de recepción de mercancía (phiếu nhập kho).
	GenerateImportPDF(ctx context.Context, inv *entity.ImportInvoice, company *entity.Company, supplier *entity.Partner) ([]byte, error)
	// GenerateExportPDF factura de venta con el QR del código de consulta.
	GenerateExportPDF(ctx context.Context, inv *entity.ExportInvoice, company *entity.Company, customer *entity.Partner) ([]byte, error)
	GenerateDebtStatement(ctx context.Context, st *DebtStatement) ([]byte, error)
}

// Sheet hoja de cálculo genérica: encabezados y filas de valores simples.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// SpreadsheetWriter serializa hojas a un libro .xlsx.
type SpreadsheetWriter interface {
	Write(sheets []Sheet) ([]byte, error)
}
