package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

// Tipos de archivo admitidos como adjunto y su extensión en el almacenamiento.
var attachmentTypes = map[string]string{
	"application/xml": ".xml",
	"text/xml":        ".xml",
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
}

// UploadInput archivo recibido por multipart.
type UploadInput struct {
	FileName    string
	MIMEType    string
	Data        []byte
	InvoiceType string
	InvoiceID   string
}

// AttachmentUseCase guarda XML, PDF e imágenes de facturas y sus metadatos.
type AttachmentUseCase struct {
	repo     repository.AttachmentRepository
	storage  ports.FileStorage
	digester ports.ContentDigester
	maxBytes int64
	now      func() time.Time
}

// NewAttachmentUseCase construye el caso de uso. maxBytes <= 0 no limita el tamaño.
func NewAttachmentUseCase(repo repository.AttachmentRepository, storage ports.FileStorage, digester ports.ContentDigester, maxBytes int64) *AttachmentUseCase {
	return &AttachmentUseCase{repo: repo, storage: storage, digester: digester, maxBytes: maxBytes, now: time.Now}
}

// Upload valida tipo y tamaño, guarda el contenido y registra los metadatos.
func (uc *AttachmentUseCase) Upload(ctx context.Context, companyID, userID string, in UploadInput) (*dto.AttachmentResponse, error) {
	a, err := uc.Store(ctx, companyID, userID, in)
	if err != nil {
		return nil, err
	}
	return AttachmentResponse(a), nil
}

// Store igual que Upload pero devuelve la entidad (la usa la importación de XML).
func (uc *AttachmentUseCase) Store(ctx context.Context, companyID, userID string, in UploadInput) (*entity.Attachment, error) {
	mime := NormalizeMIME(in.MIMEType, in.FileName)
	ext, ok := attachmentTypes[mime]
	if !ok {
		return nil, domain.Invalid("file", "tipo no admitido (XML, PDF, PNG, JPEG o WEBP)")
	}
	if len(in.Data) == 0 {
		return nil, domain.Invalid("file", "el archivo está vacío")
	}
	if uc.maxBytes > 0 && int64(len(in.Data)) > uc.maxBytes {
		return nil, domain.Invalid("file", fmt.Sprintf("supera el tamaño máximo de %d bytes", uc.maxBytes))
	}
	if (in.InvoiceType == "") != (in.InvoiceID == "") {
		return nil, domain.Invalid("invoice_id", "invoice_type e invoice_id van juntos")
	}

	now := uc.now()
	a := &entity.Attachment{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		InvoiceType: in.InvoiceType,
		InvoiceID:   in.InvoiceID,
		FileName:    path.Base(strings.ReplaceAll(in.FileName, "\\", "/")),
		MIMEType:    mime,
		Size:        int64(len(in.Data)),
		SHA256:      uc.digester.Digest(mime, in.Data),
		UploadedBy:  userID,
		CreatedAt:   now,
	}
	a.StoragePath = path.Join(companyID, now.Format("2006/01"), a.ID+ext)
	if err := uc.storage.Save(ctx, a.StoragePath, bytes.NewReader(in.Data)); err != nil {
		return nil, fmt.Errorf("adjunto: guardar archivo: %w", err)
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		if delErr := uc.storage.Delete(ctx, a.StoragePath); delErr != nil {
			log.Warn().Err(delErr).Str("path", a.StoragePath).Msg("adjunto huérfano en almacenamiento")
		}
		return nil, err
	}
	return a, nil
}

// List adjuntos de la empresa, opcionalmente de una factura.
func (uc *AttachmentUseCase) List(ctx context.Context, companyID string, q dto.AttachmentQuery) (*dto.AttachmentListResponse, error) {
	list, err := uc.repo.List(ctx, companyID, q.InvoiceType, q.InvoiceID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AttachmentResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *AttachmentResponse(a))
	}
	return &dto.AttachmentListResponse{Items: items}, nil
}

// Open devuelve los metadatos y el contenido; el caller cierra el reader.
func (uc *AttachmentUseCase) Open(ctx context.Context, companyID, id string) (*dto.AttachmentResponse, io.ReadCloser, error) {
	a, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, domain.ErrNotFound
	}
	rc, err := uc.storage.Open(ctx, a.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("adjunto: abrir archivo: %w", err)
	}
	return AttachmentResponse(a), rc, nil
}

// Delete borra los metadatos y luego el archivo.
func (uc *AttachmentUseCase) Delete(ctx context.Context, companyID, id string) error {
	a, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if a == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	if err := uc.storage.Delete(ctx, a.StoragePath); err != nil {
		log.Warn().Err(err).Str("attachment_id", id).Msg("no se pudo borrar el archivo del adjunto")
	}
	return nil
}

// NormalizeMIME usa la extensión cuando el cliente envía un tipo genérico.
func NormalizeMIME(mime, fileName string) string {
	mime = strings.ToLower(strings.TrimSpace(strings.Split(mime, ";")[0]))
	if _, ok := attachmentTypes[mime]; ok {
		if mime == "text/xml" {
			return "application/xml"
		}
		return mime
	}
	switch strings.ToLower(path.Ext(fileName)) {
	case ".xml":
		return "application/xml"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return mime
}

// AttachmentResponse mapea los metadatos a DTO.
func AttachmentResponse(a *entity.Attachment) *dto.AttachmentResponse {
	return &dto.AttachmentResponse{
		ID:          a.ID,
		InvoiceType: a.InvoiceType,
		InvoiceID:   a.InvoiceID,
		FileName:    a.FileName,
		MIMEType:    a.MIMEType,
		Size:        a.Size,
		SHA256:      a.SHA256,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
	}
}
