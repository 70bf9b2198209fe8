// Package einvoice lee facturas electrónicas vietnamitas (XML HDon, Decreto 123 / Circular 78).
package einvoice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
)

// Naturaleza de la línea (TChat). Las de descuento se reparten sobre las mercancías;
// las notas (4) se ignoran.
const (
	lineGoods     = "1"
	linePromotion = "2"
	lineDiscount  = "3"
)

var hundred = decimal.NewFromInt(100)

// Parser implementa ports.InvoiceXMLParser sobre etree.
type Parser struct{}

// NewParser construye el parser.
func NewParser() *Parser { return &Parser{} }

// Parse interpreta HDon/DLHDon/{TTChung, NDHDon{NBan, NMua, DSHHDVu, TToan}}.
func (p *Parser) Parse(data []byte) (*ports.ParsedInvoice, error) {
	doc, err := readDocument(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	dl := findChild(root, "DLHDon")
	if dl == nil {
		if root.Tag != "DLHDon" {
			return nil, errors.New("no es una factura electrónica (falta DLHDon)")
		}
		dl = root
	}
	general := findChild(dl, "TTChung")
	content := findChild(dl, "NDHDon")
	if general == nil || content == nil {
		return nil, errors.New("faltan TTChung o NDHDon")
	}

	out := &ports.ParsedInvoice{
		Series:   text(general, "KHMSHDon") + text(general, "KHHDon"),
		Number:   text(general, "SHDon"),
		Currency: text(general, "DVTTe"),
		Seller:   party(findChild(content, "NBan")),
		Buyer:    party(findChild(content, "NMua")),
	}
	if out.Currency == "" {
		out.Currency = "VND"
	}
	if out.Number == "" {
		return nil, errors.New("falta el número de factura (SHDon)")
	}
	if out.IssueDate, err = parseDate(text(general, "NLap")); err != nil {
		return nil, err
	}

	if list := findChild(content, "DSHHDVu"); list != nil {
		var discounts []ports.ParsedLine
		for i, item := range list.SelectElements("HHDVu") {
			kind := text(item, "TChat")
			if kind == lineDiscount {
				d, err := parseDiscountLine(item)
				if err != nil {
					return nil, fmt.Errorf("línea %d: %w", i+1, err)
				}
				discounts = append(discounts, d)
				continue
			}
			if kind != "" && kind != lineGoods && kind != linePromotion {
				continue
			}
			line, err := parseLine(item)
			if err != nil {
				return nil, fmt.Errorf("línea %d: %w", i+1, err)
			}
			out.Lines = append(out.Lines, line)
		}
		for _, d := range discounts {
			if err := spreadDiscount(out.Lines, d.Amount, d.VATRate); err != nil {
				return nil, fmt.Errorf("descuento %q: %w", d.Name, err)
			}
		}
	}

	if totals := findChild(content, "TToan"); totals != nil {
		if out.NetAmount, err = amount(totals, "TgTCThue"); err != nil {
			return nil, err
		}
		if out.TaxAmount, err = amount(totals, "TgTThue"); err != nil {
			return nil, err
		}
		if out.GrandTotal, err = amount(totals, "TgTTTBSo"); err != nil {
			return nil, err
		}
	}
	if out.NetAmount.IsZero() {
		for _, l := range out.Lines {
			out.NetAmount = out.NetAmount.Add(l.Amount)
		}
	}
	if out.GrandTotal.IsZero() {
		out.GrandTotal = out.NetAmount.Add(out.TaxAmount)
	}

	if out.Fingerprint, err = fingerprintDoc(doc); err != nil {
		return nil, fmt.Errorf("huella del XML: %w", err)
	}
	return out, nil
}

func parseLine(item *etree.Element) (ports.ParsedLine, error) {
	var (
		l   ports.ParsedLine
		err error
	)
	l.Code = text(item, "MHHDVu")
	l.Name = text(item, "THHDVu")
	l.Unit = text(item, "DVTinh")
	if l.Quantity, err = amount(item, "SLuong"); err != nil {
		return l, err
	}
	if l.UnitPrice, err = amount(item, "DGia"); err != nil {
		return l, err
	}
	if l.Amount, err = amount(item, "ThTien"); err != nil {
		return l, err
	}
	if l.Discount, err = amount(item, "STCKhau"); err != nil {
		return l, err
	}
	if l.VATRate, err = ParseVATRate(text(item, "TSuat")); err != nil {
		return l, err
	}
	if l.Name == "" {
		return l, errors.New("sin nombre de mercancía (THHDVu)")
	}

	gross := l.Quantity.Mul(l.UnitPrice)
	if l.Discount.IsZero() {
		pct, err := amount(item, "TLCKhau")
		if err != nil {
			return l, err
		}
		switch {
		case pct.IsPositive():
			l.Discount = gross.Mul(pct).Div(hundred).Round(2)
		case l.Amount.IsPositive() && l.Amount.LessThan(gross):
			// ThTien ya neto de un descuento no detallado.
			l.Discount = gross.Sub(l.Amount)
		}
	}
	l.Discount = l.Discount.Abs()
	if l.Amount.IsZero() {
		l.Amount = gross.Sub(l.Discount)
	}

	// Servicios facturados solo por importe: una unidad al precio bruto.
	if l.Quantity.IsZero() {
		if !l.Amount.IsPositive() {
			return l, errors.New("sin cantidad (SLuong) ni importe (ThTien)")
		}
		l.Quantity = decimal.NewFromInt(1)
		l.UnitPrice = l.Amount.Add(l.Discount)
	}
	if l.Discount.GreaterThan(l.Quantity.Mul(l.UnitPrice)) {
		return l, errors.New("el descuento supera el valor de la línea")
	}
	return l, nil
}

// parseDiscountLine línea de descuento comercial (TChat=3): Amount es el monto descontado.
func parseDiscountLine(item *etree.Element) (ports.ParsedLine, error) {
	var (
		d   ports.ParsedLine
		err error
	)
	d.Name = text(item, "THHDVu")
	if d.Amount, err = amount(item, "ThTien"); err != nil {
		return d, err
	}
	if d.Amount.IsZero() {
		qty, err := amount(item, "SLuong")
		if err != nil {
			return d, err
		}
		price, err := amount(item, "DGia")
		if err != nil {
			return d, err
		}
		d.Amount = qty.Mul(price)
	}
	d.Amount = d.Amount.Abs()
	if d.VATRate, err = ParseVATRate(text(item, "TSuat")); err != nil {
		return d, err
	}
	return d, nil
}

// spreadDiscount reparte un descuento comercial entre las líneas con importe de la misma
// tasa de IVA (o entre todas si ninguna la comparte), en proporción a su importe.
// El resto de redondeo va a la última línea.
func spreadDiscount(lines []ports.ParsedLine, discount, rate decimal.Decimal) error {
	if !discount.IsPositive() {
		return nil
	}
	var targets []int
	for i, l := range lines {
		if l.Amount.IsPositive() && l.VATRate.Equal(rate) {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		for i, l := range lines {
			if l.Amount.IsPositive() {
				targets = append(targets, i)
			}
		}
	}
	base := decimal.Zero
	for _, i := range targets {
		base = base.Add(lines[i].Amount)
	}
	if len(targets) == 0 || discount.GreaterThan(base) {
		return errors.New("supera el importe de las líneas a las que se aplica")
	}
	left := discount
	for k, i := range targets {
		share := left
		if k < len(targets)-1 {
			share = decimal.Min(discount.Mul(lines[i].Amount).Div(base).Round(2), left)
		}
		share = decimal.Min(share, lines[i].Amount)
		lines[i].Discount = lines[i].Discount.Add(share)
		lines[i].Amount = lines[i].Amount.Sub(share)
		left = left.Sub(share)
	}
	if left.IsPositive() {
		return errors.New("no se pudo repartir por completo")
	}
	return nil
}

// ParseVATRate convierte TSuat ("10%", "8%", "KCT", "KKKNT", "KHAC:5.26%") al porcentaje.
// No sujeto a IVA (KCT) y no declarado (KKKNT) cuentan como 0.
func ParseVATRate(s string) (decimal.Decimal, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "", "KCT", "KKKNT":
		return decimal.Zero, nil
	}
	s = strings.TrimPrefix(s, "KHAC:")
	s = strings.TrimSuffix(s, "%")
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("tasa de IVA inválida %q", s)
	}
	return rate, nil
}

func party(e *etree.Element) ports.ParsedParty {
	if e == nil {
		return ports.ParsedParty{}
	}
	name := text(e, "Ten")
	if name == "" {
		name = text(e, "HVTNMHang") // comprador persona natural
	}
	return ports.ParsedParty{Name: name, TaxCode: text(e, "MST"), Address: text(e, "DChi")}
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha de emisión inválida (NLap) %q", s)
}

func amount(e *etree.Element, tag string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(text(e, tag), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: número inválido %q", tag, s)
	}
	return d, nil
}

func text(e *etree.Element, tag string) string {
	if c := findChild(e, tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

// findChild ignora el prefijo de namespace.
func findChild(e *etree.Element, tag string) *etree.Element {
	if e == nil {
		return nil
	}
	return e.SelectElement(tag)
}

func readDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("XML mal formado: %w", err)
	}
	if doc.Root() == nil {
		return nil, errors.New("documento sin raíz")
	}
	return doc, nil
}

var _ ports.InvoiceXMLParser = (*Parser)(nil)
