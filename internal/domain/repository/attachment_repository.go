package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// AttachmentRepository puerto de persistencia de adjuntos (metadatos).
type AttachmentRepository interface {
	Create(ctx context.Context, a *entity.Attachment) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Attachment, error)
	List(ctx context.Context, companyID, invoiceType, invoiceID string) ([]*entity.Attachment, error)
	LinkInvoice(ctx context.Context, id, invoiceType, invoiceID string) error
	Delete(ctx context.Context, companyID, id string) error
}
