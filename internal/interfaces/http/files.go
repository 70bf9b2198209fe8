package http

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// upload archivo multipart ya leído en memoria.
type upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

// readUpload lee el campo multipart "file" respetando el tamaño máximo.
func readUpload(c *fiber.Ctx, maxBytes int64) (*upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, domain.Invalid("file", "se requiere el archivo en el campo 'file'")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, domain.Invalid("file", fmt.Sprintf("el archivo supera el máximo de %d MB", maxBytes/(1024*1024)))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir archivo subido: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("leer archivo subido: %w", err)
	}
	return &upload{Name: fh.Filename, MIMEType: fh.Header.Get(fiber.HeaderContentType), Data: data}, nil
}

// sendDownload responde el contenido como descarga con el nombre indicado.
func sendDownload(c *fiber.Ctx, data []byte, fileName, contentType string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.Send(data)
}
