// Package pdf genera los documentos impresos del back office con Maroto v2:
// factura de venta (con QR del código de consulta), nota de recepción de compra
// y estado de cuenta de deudas.
//
// Layout común de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + MST        │  Título + Número + Fecha     │
//	│  EMISOR: Dirección / Tel / Email                             │
//	│  CONTRAPARTE: Nombre + MST + contacto                        │
//	│  TABLA: # | Producto | Cant | P.Unit | IVA | Importe         │
//	│  TOTALES: Neto / IVA / TOTAL                                 │
//	│  FOOTER: código de consulta + QR (solo ventas)               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	fontentity "github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorHeader  = &props.Color{Red: 0, Green: 70, Blue: 127}
)

const (
	defaultFamily = "helvetica"
	unicodeFamily = "backoffice-unicode"
)

// Options parámetros del generador.
type Options struct {
	Currency string // se imprime junto a los totales (VND por defecto)
	// FontFile TTF con soporte Unicode. Sin él se usa helvetica, que no trae
	// los caracteres vietnamitas con diacríticos.
	FontFile string
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.DocumentPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	currency string
	family   string
	fonts    []*fontentity.CustomFont
}

// NewMarotoPDFGenerator construye el generador. Falla si FontFile no se puede cargar.
func NewMarotoPDFGenerator(opts Options) (*MarotoPDFGenerator, error) {
	g := &MarotoPDFGenerator{currency: nonEmpty(opts.Currency, "VND"), family: defaultFamily}
	if opts.FontFile != "" {
		fonts, err := repository.New().
			AddUTF8Font(unicodeFamily, fontstyle.Normal, opts.FontFile).
			AddUTF8Font(unicodeFamily, fontstyle.Bold, opts.FontFile).
			AddUTF8Font(unicodeFamily, fontstyle.Italic, opts.FontFile).
			AddUTF8Font(unicodeFamily, fontstyle.BoldItalic, opts.FontFile).
			Load()
		if err != nil {
			return nil, fmt.Errorf("pdf: cargar fuente %s: %w", opts.FontFile, err)
		}
		g.fonts = fonts
		g.family = unicodeFamily
	}
	return g, nil
}

func (g *MarotoPDFGenerator) newDocument(title, author string) core.Maroto {
	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithTitle(title, true).
		WithAuthor(author, true)
	if len(g.fonts) > 0 {
		b = b.WithCustomFonts(g.fonts)
	}
	b = b.WithDefaultFont(&props.Font{Family: g.family, Size: 9})
	return maroto.New(b.Build())
}

// GenerateExportPDF factura de venta con el código de consulta en QR.
func (g *MarotoPDFGenerator) GenerateExportPDF(_ context.Context, inv *entity.ExportInvoice, company *entity.Company, customer *entity.Partner) ([]byte, error) {
	m := g.newDocument("Hóa đơn bán hàng "+inv.Number, company.Name)

	m.AddRows(headerRow(company, "HÓA ĐƠN BÁN HÀNG", inv.Number, inv.IssueDate.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(company))
	m.AddRows(partnerRow("NGƯỜI MUA HÀNG", customer, inv.CustomerName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.lineRows(inv.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(inv.NetAmount, inv.TaxAmount, inv.GrandTotal))
	if inv.DueDate != nil {
		m.AddRows(noteRow("Hạn thanh toán: " + inv.DueDate.Format("02/01/2006")))
	}
	if inv.Note != "" {
		m.AddRows(noteRow(inv.Note))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(lookupFooterRows(inv.LookupCode)...)

	return generate(m)
}

// GenerateImportPDF nota de recepción de mercancía.
func (g *MarotoPDFGenerator) GenerateImportPDF(_ context.Context, inv *entity.ImportInvoice, company *entity.Company, supplier *entity.Partner) ([]byte, error) {
	m := g.newDocument("Phiếu nhập kho "+inv.Number, company.Name)

	ref := strings.TrimSpace(inv.Series + " " + inv.Number)
	m.AddRows(headerRow(company, "PHIẾU NHẬP KHO", ref, inv.IssueDate.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(company))
	m.AddRows(partnerRow("NHÀ CUNG CẤP", supplier, inv.SupplierName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.lineRows(inv.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(inv.NetAmount, inv.TaxAmount, inv.GrandTotal))
	if inv.Note != "" {
		m.AddRows(noteRow(inv.Note))
	}
	m.AddRows(line.NewRow(10))
	m.AddRows(signatureRow("Người giao hàng", "Thủ kho", "Kế toán"))

	return generate(m)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + MST (izq) y título + número + fecha (der).
func headerRow(company *entity.Company, title, number, date string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("MST: "+nonEmpty(company.TaxCode, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Ngày: "+date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func issuerRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ĐƠN VỊ", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Địa chỉ: %s   |   ĐT: %s   |   Email: %s",
				nonEmpty(company.Address, "—"),
				nonEmpty(company.Phone, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// partnerRow: datos del cliente o proveedor; sin registro usa el nombre copiado en la factura.
func partnerRow(label string, p *entity.Partner, fallbackName string) core.Row {
	name, taxCode, phone, address := fallbackName, "", "", ""
	if p != nil {
		name, taxCode, phone, address = p.Name, p.TaxCode, p.Phone, p.Address
	}
	return row.New(18).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("MST: %s   |   ĐT: %s",
				nonEmpty(taxCode, "—"),
				nonEmpty(phone, "—"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
			text.New("Địa chỉ: "+nonEmpty(address, "—"), props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Hàng hóa", 4, align.Left),
		h("SL", 1, align.Right),
		h("Đơn giá", 2, align.Right),
		h("VAT", 1, align.Center),
		h("Thành tiền", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

func (g *MarotoPDFGenerator) lineRows(lines []entity.InvoiceLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for i, l := range lines {
		name := l.ProductName
		if l.SKU != "" {
			name = l.SKU + " - " + name
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(formatQuantity(l.Quantity)+" "+l.Unit, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.VATRate.String()+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(g.money(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(net, tax, grand decimal.Decimal) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grandProps := props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 12}

	return row.New(20).Add(
		col.New(5),
		col.New(3).Add(
			label("Cộng tiền hàng:", 0),
			label("Tiền thuế GTGT:", 6),
			text.New("TỔNG CỘNG:", grandProps),
		),
		col.New(4).Add(
			value(g.money(net), 0),
			value(g.money(tax), 6),
			text.New(g.money(grand)+" "+g.currency, grandProps),
		),
	)
}

func noteRow(s string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(s, props.Text{Size: 8, Top: 1, Color: colorGray}),
	))
}

func signatureRow(labels ...string) core.Row {
	size := 12 / len(labels)
	cols := make([]core.Col, 0, len(labels))
	for _, l := range labels {
		cols = append(cols, col.New(size).Add(
			text.New(l, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center}),
			text.New("(Ký, ghi rõ họ tên)", props.Text{Size: 7, Align: align.Center, Top: 5, Color: colorGray}),
		))
	}
	return row.New(30).Add(cols...)
}

// lookupFooterRows: código de consulta partido + QR.
func lookupFooterRows(lookupCode string) []core.Row {
	if lookupCode == "" {
		return nil
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("MÃ TRA CỨU HÓA ĐƠN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, chunk := range splitEvery(lookupCode, 48) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	rows = append(rows, row.New(3), row.New(40).Add(
		col.New(3).Add(code.NewQr(lookupCode, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Quét mã QR để đối chiếu hóa đơn với hệ thống.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
		),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con puntos de miles; VND sin decimales, el resto con dos y coma decimal.
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	if g.currency == "VND" {
		return formatMoney(d.StringFixed(0))
	}
	return formatMoney(d.StringFixed(2))
}

func formatQuantity(d decimal.Decimal) string {
	return formatMoney(d.String())
}

// formatMoney inserta puntos de miles en un string numérico y usa coma decimal.
// Ej: "25000" → "25.000", "-1234.5" → "-1.234,5"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := sign + string(buf)
	if hasFrac {
		out += "," + frac
	}
	return out
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}

var _ ports.DocumentPDFGenerator = (*MarotoPDFGenerator)(nil)
