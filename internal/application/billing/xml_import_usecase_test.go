package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/einvoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeParser devuelve la factura registrada para el contenido exacto del archivo.
type fakeParser map[string]*ports.ParsedInvoice

func (p fakeParser) Parse(data []byte) (*ports.ParsedInvoice, error) {
	inv, ok := p[string(data)]
	if !ok {
		return nil, fmt.Errorf("XML mal formado")
	}
	cp := *inv
	return &cp, nil
}

// sampleInvoice factura del proveedor ya registrado con una línea de SP-001 y una de un producto nuevo.
func (f *fixture) sampleInvoice(number string) *ports.ParsedInvoice {
	return &ports.ParsedInvoice{
		Seller:    ports.ParsedParty{Name: f.supplier.Name, TaxCode: f.supplier.TaxCode},
		Buyer:     ports.ParsedParty{Name: "Minh Phát", TaxCode: "0312345678"},
		Series:    "1C24TAA",
		Number:    number,
		IssueDate: time.Date(2024, 10, 12, 0, 0, 0, 0, time.UTC),
		Currency:  "VND",
		Lines: []ports.ParsedLine{
			{Code: "SP-001", Name: "Gạo ST25 5kg", Unit: "bao", Quantity: dec("10"), UnitPrice: dec("100"), Amount: dec("1000"), VATRate: dec("10")},
			{Code: "DAU-1L", Name: "Dầu ăn 1L", Unit: "chai", Quantity: dec("5"), UnitPrice: dec("50"), Amount: dec("250"), VATRate: dec("8")},
		},
		NetAmount:   dec("1250"),
		TaxAmount:   dec("120"),
		GrandTotal:  dec("1370"),
		Fingerprint: "fp-" + number,
	}
}

func (f *fixture) xmlUseCase(parser ports.InvoiceXMLParser) (*XMLImportUseCase, *apptest.Storage) {
	storage := apptest.NewStorage()
	f.attachments = usecase.NewAttachmentUseCase(&apptest.AttachmentRepo{DB: f.db}, storage, apptest.Digester{}, 0)
	return NewXMLImportUseCase(parser, &apptest.CompanyRepo{DB: f.db}, &apptest.PartnerRepo{DB: f.db},
		&apptest.ProductRepo{DB: f.db}, &apptest.SequenceRepo{DB: f.db}, f.imports, f.attachments), storage
}

func TestXMLPreview_CruzaProveedorYProductos(t *testing.T) {
	f := newFixture(t)
	inv := f.sampleInvoice("0000456")
	inv.Buyer.TaxCode = "0399999999"
	uc, _ := f.xmlUseCase(fakeParser{"a": inv})

	p, err := uc.Preview(context.Background(), f.companyID, []byte("a"))
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceSourceXML, p.Source)
	assert.Equal(t, f.supplier.ID, p.MatchedSupplierID)
	assert.Equal(t, "2024-10-12", p.IssueDate)
	assert.False(t, p.Duplicate)
	require.Len(t, p.Lines, 2)
	assert.Equal(t, f.p1.ID, p.Lines[0].MatchedProductID)
	assert.Empty(t, p.Lines[1].MatchedProductID)
	assert.Contains(t, p.Warnings, "la MST del comprador no coincide con la de la empresa")
	assert.Contains(t, p.Warnings, "hay productos sin coincidencia en el inventario")
	assert.Empty(t, f.db.Imports, "la vista previa no escribe")
}

func TestXMLPreview_XMLInvalido(t *testing.T) {
	f := newFixture(t)
	uc, _ := f.xmlUseCase(fakeParser{})
	_, err := uc.Preview(context.Background(), f.companyID, []byte("<roto"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestXMLImport_CreaProductosYGuardaAdjunto(t *testing.T) {
	f := newFixture(t)
	uc, storage := f.xmlUseCase(fakeParser{"a": f.sampleInvoice("0000456")})
	ctx := context.Background()

	resp, err := uc.Import(ctx, f.companyID, f.userID, "hoa-don.xml", []byte("a"), dto.XMLImportOptions{
		AutoCreateProducts: true, PaidAmount: dec("370"), DueDate: "2024-11-12",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceSourceXML, resp.Source)
	assert.Equal(t, f.supplier.ID, resp.SupplierID)
	assert.Equal(t, "2024-10-12", resp.IssueDate)
	assert.Equal(t, "2024-11-12", resp.DueDate)
	assert.Equal(t, "fp-0000456", resp.XMLFingerprint)
	assertDec(t, "1370", resp.GrandTotal)
	assertDec(t, "1000", resp.Remaining)

	created, err := (&apptest.ProductRepo{DB: f.db}).GetBySKU(ctx, f.companyID, "DAU-1L")
	require.NoError(t, err)
	require.NotNil(t, created)
	assertDec(t, "5", created.Stock)
	assertDec(t, "50", created.Cost)
	assertDec(t, "8", created.VATRate)

	require.NotEmpty(t, resp.AttachmentID)
	att := f.db.Attachments[resp.AttachmentID]
	require.NotNil(t, att)
	assert.Equal(t, entity.InvoiceTypeImport, att.InvoiceType)
	assert.Equal(t, resp.ID, att.InvoiceID)
	assert.Equal(t, []byte("a"), storage.Files[att.StoragePath])
	assert.Equal(t, resp.AttachmentID, f.db.Imports[resp.ID].AttachmentID)

	// El mismo XML otra vez es duplicado por huella.
	_, err = uc.Import(ctx, f.companyID, f.userID, "hoa-don.xml", []byte("a"), dto.XMLImportOptions{AutoCreateProducts: true})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestXMLImport_SinAutoCreacionFalla(t *testing.T) {
	f := newFixture(t)
	uc, _ := f.xmlUseCase(fakeParser{"a": f.sampleInvoice("1")})

	_, err := uc.Import(context.Background(), f.companyID, f.userID, "a.xml", []byte("a"), dto.XMLImportOptions{})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, f.db.Imports)
	assertDec(t, "0", f.product(f.p1.ID).Stock)
}

func TestXMLImport_ProveedorNuevoYCodigoVacio(t *testing.T) {
	f := newFixture(t)
	inv := f.sampleInvoice("9")
	inv.Seller = ports.ParsedParty{Name: "Công ty Phú Gia", TaxCode: "0108888888", Address: "Hà Nội"}
	inv.Lines = []ports.ParsedLine{{Name: "Bánh quy", Unit: "hộp", Quantity: dec("3"), UnitPrice: dec("20"), Amount: dec("60"), VATRate: dec("0")}}
	uc, _ := f.xmlUseCase(fakeParser{"a": inv})

	resp, err := uc.Import(context.Background(), f.companyID, f.userID, "a.xml", []byte("a"), dto.XMLImportOptions{AutoCreateProducts: true})
	require.NoError(t, err)

	sup := f.db.Partners[resp.SupplierID]
	require.NotNil(t, sup)
	assert.Equal(t, entity.PartnerSupplier, sup.Kind)
	assert.Equal(t, "0108888888", sup.TaxCode)
	assert.Equal(t, "NCC0002", sup.Code, "NCC0001 ya lo usa el proveedor existente")

	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "SP0001", resp.Lines[0].SKU)
}

func TestXMLImport_DuplicadoPorNumero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.imports.Create(ctx, f.companyID, f.userID, dto.CreateImportRequest{
		SupplierID: f.supplier.ID, Series: "1C24TAA", Number: "55",
		Lines: []dto.InvoiceLineRequest{{ProductID: f.p1.ID, Quantity: dec("1"), UnitPrice: dec("1")}},
	})
	require.NoError(t, err)

	uc, _ := f.xmlUseCase(fakeParser{"a": f.sampleInvoice("55")})
	p, err := uc.Preview(ctx, f.companyID, []byte("a"))
	require.NoError(t, err)
	assert.True(t, p.Duplicate)

	_, err = uc.Import(ctx, f.companyID, f.userID, "a.xml", []byte("a"), dto.XMLImportOptions{AutoCreateProducts: true})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestXMLImport_AdjuntoFallidoNoRevierteLaCompra(t *testing.T) {
	f := newFixture(t)
	uc, storage := f.xmlUseCase(fakeParser{"a": f.sampleInvoice("1")})
	storage.Err = errors.New("disco lleno")

	resp, err := uc.Import(context.Background(), f.companyID, f.userID, "a.xml", []byte("a"), dto.XMLImportOptions{AutoCreateProducts: true})
	require.NoError(t, err)
	assert.Empty(t, resp.AttachmentID)
	assert.Len(t, f.db.Imports, 1)
}

// discountedXML compra de 10 x 100 con 100 de descuento e IVA 10%: total a pagar 990.
const discountedXML = `<?xml version="1.0" encoding="UTF-8"?>
<HDon><DLHDon>
  <TTChung><KHMSHDon>1</KHMSHDon><KHHDon>C24TAA</KHHDon><SHDon>778</SHDon><NLap>2024-10-12</NLap><DVTTe>VND</DVTTe></TTChung>
  <NDHDon>
    <NBan><Ten>Nhà cung cấp An Khang</Ten><MST>0109876543</MST></NBan>
    <NMua><Ten>Công ty TNHH Minh Phát</Ten><MST>0312345678</MST></NMua>
    <DSHHDVu>
      <HHDVu><TChat>1</TChat><MHHDVu>SP-001</MHHDVu><THHDVu>Gạo ST25 5kg</THHDVu><DVTinh>bao</DVTinh><SLuong>10</SLuong><DGia>100</DGia><STCKhau>100</STCKhau><ThTien>900</ThTien><TSuat>10%</TSuat></HHDVu>
    </DSHHDVu>
    <TToan><TgTCThue>900</TgTCThue><TgTThue>90</TgTThue><TgTTTBSo>990</TgTTTBSo></TToan>
  </NDHDon>
</DLHDon></HDon>`

func TestXMLImport_DescuentoDeLineaConParserReal(t *testing.T) {
	f := newFixture(t)
	uc, _ := f.xmlUseCase(einvoice.NewParser())
	ctx := context.Background()

	p, err := uc.Preview(ctx, f.companyID, []byte(discountedXML))
	require.NoError(t, err)
	require.Len(t, p.Lines, 1)
	assertDec(t, "100", p.Lines[0].Discount)
	assert.NotContains(t, p.Warnings, "el total recalculado no coincide con el total a pagar del documento")

	resp, err := uc.Import(ctx, f.companyID, f.userID, "778.xml", []byte(discountedXML), dto.XMLImportOptions{})
	require.NoError(t, err)
	assertDec(t, "900", resp.NetAmount)
	assertDec(t, "990", resp.GrandTotal)
	require.Len(t, resp.Lines, 1)
	assertDec(t, "100", resp.Lines[0].Discount)

	d := f.debtOf(entity.InvoiceTypeImport, resp.ID)
	require.NotNil(t, d)
	assertDec(t, "990", d.Amount, "la deuda con el proveedor es lo que dice el XML")
}

func TestXMLPreview_TotalDelDocumentoDistinto(t *testing.T) {
	f := newFixture(t)
	uc, _ := f.xmlUseCase(einvoice.NewParser())
	data := strings.Replace(discountedXML, "<TgTTTBSo>990</TgTTTBSo>", "<TgTTTBSo>1100</TgTTTBSo>", 1)

	p, err := uc.Preview(context.Background(), f.companyID, []byte(data))
	require.NoError(t, err)
	assert.Contains(t, p.Warnings, "el total recalculado no coincide con el total a pagar del documento")
}

func TestXMLImport_MSTDelVendedorInvalida(t *testing.T) {
	f := newFixture(t)
	inv := f.sampleInvoice("31")
	inv.Seller = ports.ParsedParty{Name: "Hộ kinh doanh Lan", TaxCode: "12345"}
	uc, _ := f.xmlUseCase(fakeParser{"a": inv})

	_, err := uc.Import(context.Background(), f.companyID, f.userID, "a.xml", []byte("a"), dto.XMLImportOptions{AutoCreateProducts: true})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "file", ve.Field)
	assert.Empty(t, f.db.Imports)
}

func TestXMLImport_MSTDelVendedorNormalizada(t *testing.T) {
	f := newFixture(t)
	inv := f.sampleInvoice("32")
	inv.Seller.TaxCode = " MST 0109876543 "
	uc, _ := f.xmlUseCase(fakeParser{"a": inv})

	resp, err := uc.Import(context.Background(), f.companyID, f.userID, "a.xml", []byte("a"), dto.XMLImportOptions{AutoCreateProducts: true})
	require.NoError(t, err)
	assert.Equal(t, f.supplier.ID, resp.SupplierID, "se reconoce el proveedor existente")
}
