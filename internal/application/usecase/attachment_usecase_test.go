package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const attCompany = "c0ffee00-0000-4000-8000-000000000001"

func newAttachmentUseCase(maxBytes int64) (*AttachmentUseCase, *apptest.DB, *apptest.Storage) {
	db := apptest.NewDB()
	st := apptest.NewStorage()
	uc := NewAttachmentUseCase(&apptest.AttachmentRepo{DB: db}, st, apptest.Digester{}, maxBytes)
	uc.now = func() time.Time { return time.Date(2024, 10, 15, 10, 0, 0, 0, time.UTC) }
	return uc, db, st
}

func TestNormalizeMIME(t *testing.T) {
	cases := []struct{ mime, file, want string }{
		{"text/xml; charset=utf-8", "a.xml", "application/xml"},
		{"application/pdf", "x.bin", "application/pdf"},
		{"application/octet-stream", "HOADON.XML", "application/xml"},
		{"", "foto.JPEG", "image/jpeg"},
		{"application/zip", "a.zip", "application/zip"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeMIME(c.mime, c.file), c.file)
	}
}

func TestAttachmentUpload(t *testing.T) {
	uc, db, st := newAttachmentUseCase(1024)
	ctx := context.Background()

	out, err := uc.Upload(ctx, attCompany, "u1", UploadInput{
		FileName: `C:\facturas\hd-123.xml`,
		MIMEType: "text/xml",
		Data:     []byte("<HDon/>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hd-123.xml", out.FileName)
	assert.Equal(t, "application/xml", out.MIMEType)
	assert.Equal(t, int64(7), out.Size)
	assert.Len(t, out.SHA256, 64)

	a := db.Attachments[out.ID]
	require.NotNil(t, a)
	assert.Equal(t, attCompany+"/2024/10/"+out.ID+".xml", a.StoragePath)
	assert.Equal(t, []byte("<HDon/>"), st.Files[a.StoragePath])
}

func TestAttachmentUpload_Validaciones(t *testing.T) {
	uc, db, _ := newAttachmentUseCase(4)
	ctx := context.Background()

	cases := map[string]UploadInput{
		"tipo":    {FileName: "a.zip", MIMEType: "application/zip", Data: []byte("x")},
		"vacío":   {FileName: "a.pdf", MIMEType: "application/pdf"},
		"tamaño":  {FileName: "a.pdf", MIMEType: "application/pdf", Data: []byte("12345")},
		"factura": {FileName: "a.pdf", MIMEType: "application/pdf", Data: []byte("1"), InvoiceType: "IMPORT"},
	}
	for name, in := range cases {
		_, err := uc.Upload(ctx, attCompany, "u1", in)
		var verr *domain.ValidationError
		assert.True(t, errors.As(err, &verr), name)
	}
	assert.Empty(t, db.Attachments)
}

func TestAttachmentUpload_FalloDeAlmacenamiento(t *testing.T) {
	uc, db, st := newAttachmentUseCase(0)
	st.Err = errors.New("disco lleno")

	_, err := uc.Upload(context.Background(), attCompany, "u1", UploadInput{FileName: "a.png", MIMEType: "image/png", Data: []byte("png")})
	require.Error(t, err)
	assert.Empty(t, db.Attachments)
}

func TestAttachmentOpenListDelete(t *testing.T) {
	uc, db, st := newAttachmentUseCase(0)
	ctx := context.Background()
	invoiceID := "6a1f8c4e-5b2d-4e3f-9a0b-1c2d3e4f5a6b"

	a, err := uc.Upload(ctx, attCompany, "u1", UploadInput{FileName: "hd.pdf", MIMEType: "application/pdf", Data: []byte("%PDF"), InvoiceType: "EXPORT", InvoiceID: invoiceID})
	require.NoError(t, err)
	_, err = uc.Upload(ctx, attCompany, "u1", UploadInput{FileName: "suelto.png", MIMEType: "image/png", Data: []byte("png")})
	require.NoError(t, err)

	list, err := uc.List(ctx, attCompany, dto.AttachmentQuery{InvoiceType: "EXPORT", InvoiceID: invoiceID})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a.ID, list.Items[0].ID)

	meta, rc, err := uc.Open(ctx, attCompany, a.ID)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "hd.pdf", meta.FileName)
	assert.Equal(t, "%PDF", string(body))

	_, _, err = uc.Open(ctx, "otra-empresa", a.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	path := db.Attachments[a.ID].StoragePath
	require.NoError(t, uc.Delete(ctx, attCompany, a.ID))
	assert.NotContains(t, st.Files, path)
	assert.True(t, errors.Is(uc.Delete(ctx, attCompany, a.ID), domain.ErrNotFound))
}
