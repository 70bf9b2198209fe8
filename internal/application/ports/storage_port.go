package ports

import (
	"context"
	"io"
	"time"
)

// FileStorage guarda el contenido de los adjuntos. key es relativo a la raíz del almacenamiento.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Cache caché de respuestas calculadas (dashboard, reportes). ok=false si no existe.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// FeedRequest consulta enviada al flujo de sincronización.
type FeedRequest struct {
	CompanyTaxCode string
	From           time.Time
	To             time.Time
}

// FeedDocument XML devuelto por el flujo.
type FeedDocument struct {
	FileName string
	XML      []byte
}

// InvoiceFeed fuente externa de facturas electrónicas (webhook n8n).
type InvoiceFeed interface {
	FetchInvoices(ctx context.Context, req FeedRequest) ([]FeedDocument, error)
}

// ContentDigester calcula el SHA-256 hex de un adjunto; los XML se resumen sobre su forma canónica.
type ContentDigester interface {
	Digest(mimeType string, data []byte) string
}
