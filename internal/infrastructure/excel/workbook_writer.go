// Package excel serializa listados y reportes a libros .xlsx con excelize.
package excel

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
)

const (
	maxSheetName = 31
	minColWidth  = 10
	maxColWidth  = 60
)

// WorkbookWriter implementa ports.SpreadsheetWriter.
type WorkbookWriter struct{}

// NewWorkbookWriter construye el writer.
func NewWorkbookWriter() *WorkbookWriter { return &WorkbookWriter{} }

// Write crea una hoja por elemento: encabezado con estilo y fijo, montos con separador de miles.
func (w *WorkbookWriter) Write(sheets []ports.Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel: sin hojas")
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#3b82f6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo encabezado: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("excel: estilo montos: %w", err)
	}

	first := f.GetSheetName(0)
	for i, sh := range sheets {
		name := sheetName(sh.Name, i)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("excel: hoja %s: %w", name, err)
		}
		if err := writeSheet(f, name, sh, headerStyle, amountStyle); err != nil {
			return nil, fmt.Errorf("excel: hoja %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, sh ports.Sheet, headerStyle, amountStyle int) error {
	widths := make([]int, len(sh.Headers))
	for i, h := range sh.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
		widths[i] = utf8.RuneCountInString(h)
	}
	if len(sh.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(sh.Headers), 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return err
		}
		if err := f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}

	for r, row := range sh.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
			if _, ok := v.(float64); ok {
				if err := f.SetCellStyle(name, cell, cell, amountStyle); err != nil {
					return err
				}
			}
			if c < len(widths) {
				if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[c] {
					widths[c] = n
				}
			}
		}
	}

	for i, wd := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, float64(clamp(wd+2, minColWidth, maxColWidth))); err != nil {
			return err
		}
	}
	return nil
}

// sheetName recorta al máximo de Excel; sin nombre usa Hoja N.
func sheetName(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("Hoja%d", i+1)
	}
	r := []rune(name)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ ports.SpreadsheetWriter = (*WorkbookWriter)(nil)
