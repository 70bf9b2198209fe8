package dto

import "time"

// AttachmentQuery filtros de GET /api/attachments.
type AttachmentQuery struct {
	InvoiceType string `query:"invoice_type" validate:"omitempty,oneof=IMPORT EXPORT"`
	InvoiceID   string `query:"invoice_id" validate:"omitempty,uuid"`
}

// AttachmentResponse metadatos de un adjunto.
type AttachmentResponse struct {
	ID          string    `json:"id"`
	InvoiceType string    `json:"invoice_type,omitempty"`
	InvoiceID   string    `json:"invoice_id,omitempty"`
	FileName    string    `json:"file_name"`
	MIMEType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	SHA256      string    `json:"sha256"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttachmentListResponse adjuntos de una factura o de la empresa.
type AttachmentListResponse struct {
	Items []AttachmentResponse `json:"items"`
}
