package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.AttachmentRepository = (*AttachmentRepo)(nil)

// AttachmentRepo metadatos de adjuntos sobre PostgreSQL.
type AttachmentRepo struct {
	q Querier
}

// NewAttachmentRepository construye el adaptador.
func NewAttachmentRepository(q Querier) *AttachmentRepo {
	return &AttachmentRepo{q: q}
}

const attachmentSelect = `
	SELECT id, company_id, COALESCE(invoice_type, ''), COALESCE(invoice_id::text, ''), file_name, mime_type, size,
		sha256, storage_path, COALESCE(uploaded_by::text, ''), created_at
	FROM attachments`

// Create registra un adjunto.
func (r *AttachmentRepo) Create(ctx context.Context, a *entity.Attachment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO attachments (id, company_id, invoice_type, invoice_id, file_name, mime_type, size, sha256, storage_path, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.CompanyID, nullIfEmpty(a.InvoiceType), nullIfEmpty(a.InvoiceID), a.FileName, a.MIMEType, a.Size,
		a.SHA256, a.StoragePath, nullIfEmpty(a.UploadedBy), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// GetByID obtiene un adjunto de la empresa.
func (r *AttachmentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Attachment, error) {
	a, err := scanAttachment(r.q.QueryRow(ctx, attachmentSelect+` WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return a, nil
}

// List lista adjuntos, opcionalmente de una factura.
func (r *AttachmentRepo) List(ctx context.Context, companyID, invoiceType, invoiceID string) ([]*entity.Attachment, error) {
	w := newWhere("company_id = ?", companyID)
	w.addIf(invoiceType != "", "invoice_type = ?", invoiceType)
	w.addIf(invoiceID != "", "invoice_id = ?", invoiceID)
	rows, err := r.q.Query(ctx, attachmentSelect+w.sql()+` ORDER BY created_at DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// LinkInvoice asocia el adjunto a una factura.
func (r *AttachmentRepo) LinkInvoice(ctx context.Context, id, invoiceType, invoiceID string) error {
	_, err := r.q.Exec(ctx, `UPDATE attachments SET invoice_type = $2, invoice_id = $3 WHERE id = $1`, id, invoiceType, invoiceID)
	if err != nil {
		return fmt.Errorf("link attachment: %w", err)
	}
	return nil
}

// Delete elimina el registro del adjunto.
func (r *AttachmentRepo) Delete(ctx context.Context, companyID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM attachments WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAttachment(row pgxScanner) (*entity.Attachment, error) {
	var a entity.Attachment
	if err := row.Scan(&a.ID, &a.CompanyID, &a.InvoiceType, &a.InvoiceID, &a.FileName, &a.MIMEType, &a.Size,
		&a.SHA256, &a.StoragePath, &a.UploadedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
