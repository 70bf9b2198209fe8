package entity

import "time"

// Attachment archivo (XML, PDF, imagen) asociado opcionalmente a una factura.
type Attachment struct {
	ID          string
	CompanyID   string
	InvoiceType string // IMPORT | EXPORT | vacío
	InvoiceID   string
	FileName    string
	MIMEType    string
	Size        int64
	SHA256      string // para XML: digest de la forma canónica
	StoragePath string
	UploadedBy  string
	CreatedAt   time.Time
}
