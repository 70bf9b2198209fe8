package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// GenerateDebtStatement estado de cuenta: deudas abiertas de la contraparte y su saldo.
func (g *MarotoPDFGenerator) GenerateDebtStatement(_ context.Context, st *ports.DebtStatement) ([]byte, error) {
	if st == nil || st.Company == nil || st.Partner == nil {
		return nil, fmt.Errorf("pdf: estado de cuenta incompleto")
	}
	title := "BẢNG ĐỐI CHIẾU CÔNG NỢ PHẢI THU"
	partnerLabel := "KHÁCH HÀNG"
	if st.Type == entity.DebtPayable {
		title, partnerLabel = "BẢNG ĐỐI CHIẾU CÔNG NỢ PHẢI TRẢ", "NHÀ CUNG CẤP"
	}
	m := g.newDocument(title+" "+st.Partner.Code, st.Company.Name)

	m.AddRows(headerRow(st.Company, title, st.Partner.Code, st.AsOf.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(st.Company))
	m.AddRows(partnerRow(partnerLabel, st.Partner, st.Partner.Name))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(statementHeaderRow())
	var amount, paid, remaining decimal.Decimal
	for _, d := range st.Debts {
		m.AddRows(g.statementRow(d, st))
		amount = amount.Add(d.Amount)
		paid = paid.Add(d.PaidAmount)
		remaining = remaining.Add(d.Remaining())
	}
	if len(st.Debts) == 0 {
		m.AddRows(noteRow("Không có công nợ còn mở."))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(8).Add(
		col.New(6).Add(text.New("TỔNG CỘNG", props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
		col.New(2).Add(text.New(g.money(amount), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1})),
		col.New(2).Add(text.New(g.money(paid), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1})),
		col.New(2).Add(text.New(g.money(remaining), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Color: colorPrimary})),
	))
	m.AddRows(noteRow(fmt.Sprintf("Số dư đến ngày %s: %s %s", st.AsOf.Format("02/01/2006"), g.money(remaining), g.currency)))
	m.AddRows(line.NewRow(10))
	m.AddRows(signatureRow("Đại diện "+st.Company.Name, "Đại diện "+st.Partner.Name))

	return generate(m)
}

func statementHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Hóa đơn", 3, align.Left),
		h("Hạn", 2, align.Center),
		h("Trạng thái", 1, align.Center),
		h("Số tiền", 2, align.Right),
		h("Đã trả", 2, align.Right),
		h("Còn lại", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

func (g *MarotoPDFGenerator) statementRow(d *entity.Debt, st *ports.DebtStatement) core.Row {
	due := "—"
	textColor := &props.Color{}
	if d.DueDate != nil {
		due = d.DueDate.Format("02/01/2006")
		if d.DueDate.Before(st.AsOf) && d.Remaining().IsPositive() {
			textColor = &props.Color{Red: 180}
		}
	}
	cell := func(s string, a align.Type) core.Component {
		return text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: textColor})
	}
	return row.New(7).Add(
		col.New(3).Add(cell(nonEmpty(d.InvoiceNumber, "—"), align.Left)),
		col.New(2).Add(cell(due, align.Center)),
		col.New(1).Add(cell(d.Status, align.Center)),
		col.New(2).Add(cell(g.money(d.Amount), align.Right)),
		col.New(2).Add(cell(g.money(d.PaidAmount), align.Right)),
		col.New(2).Add(cell(g.money(d.Remaining()), align.Right)),
	)
}
