package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) ExtractInvoice(ctx context.Context, fileName, mimeType string, content []byte) (*ports.ParsedInvoice, error) {
	args := m.Called(ctx, fileName, mimeType, content)
	inv, _ := args.Get(0).(*ports.ParsedInvoice)
	return inv, args.Error(1)
}

func (f *fixture) ocrUseCase(ext ports.InvoiceExtractor) *OCRUseCase {
	return NewOCRUseCase(ext, &apptest.CompanyRepo{DB: f.db}, &apptest.PartnerRepo{DB: f.db},
		&apptest.ProductRepo{DB: f.db}, &apptest.ImportRepo{DB: f.db})
}

func TestOCRPreview_ImagenDevuelveVistaPrevia(t *testing.T) {
	f := newFixture(t)
	inv := f.sampleInvoice("777")
	inv.Fingerprint = ""
	ext := new(mockExtractor)
	ext.On("ExtractInvoice", mock.Anything, "scan.jpg", "image/jpeg", []byte{0xff, 0xd8}).Return(inv, nil).Once()

	p, err := f.ocrUseCase(ext).Preview(context.Background(), f.companyID, "scan.jpg", "", []byte{0xff, 0xd8})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceSourceOCR, p.Source)
	assert.Equal(t, f.supplier.ID, p.MatchedSupplierID)
	assert.Equal(t, "777", p.Number)
	assert.Len(t, p.Lines, 2)
	ext.AssertExpectations(t)
}

func TestOCRPreview_TipoNoAdmitido(t *testing.T) {
	f := newFixture(t)
	ext := new(mockExtractor)

	_, err := f.ocrUseCase(ext).Preview(context.Background(), f.companyID, "factura.xml", "application/xml", []byte("<x/>"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = f.ocrUseCase(ext).Preview(context.Background(), f.companyID, "vacio.png", "image/png", nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	ext.AssertNotCalled(t, "ExtractInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOCRPreview_FalloDelProveedorIA(t *testing.T) {
	f := newFixture(t)
	ext := new(mockExtractor)
	ext.On("ExtractInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("429 rate limited"))

	_, err := f.ocrUseCase(ext).Preview(context.Background(), f.companyID, "f.pdf", "application/pdf", []byte("%PDF"))
	assert.True(t, errors.Is(err, domain.ErrExternalService))
}

func TestOCRPreview_AplicaTimeout(t *testing.T) {
	f := newFixture(t)
	ext := new(mockExtractor)
	ext.On("ExtractInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok, "el extractor recibe un contexto con deadline")
		}).
		Return(f.sampleInvoice("1"), nil)

	_, err := f.ocrUseCase(ext).Preview(context.Background(), f.companyID, "f.png", "image/png", []byte{1})
	require.NoError(t, err)
}
