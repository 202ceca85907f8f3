package comparison

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/currency"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/format"
)

const (
	pdfMargin       = 10.0
	pdfPageWidth    = 297.0 // A4 landscape
	pdfContentWidth = pdfPageWidth - 2*pdfMargin
	pdfMetricWidth  = 70.0
	pdfRowHeight    = 7.0
)

// WritePDF writes a printable landscape report of the comparison table.
func (e *Engine) WritePDF(w io.Writer, c currency.Currency) error {
	return e.writePDF(w, c, time.Now())
}

func (e *Engine) writePDF(w io.Writer, c currency.Currency, generated time.Time) error {
	t, err := e.Table(c)
	if err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(pdfContentWidth, 10, "Scenario Comparison", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(pdfContentWidth, 6,
		fmt.Sprintf("Amounts in %s (%s). Generated %s", c.Code, c.Name, generated.Format("2 January 2006")),
		"", 1, "L", false, 0, "")
	pdf.Ln(4)

	valueWidth := (pdfContentWidth - pdfMetricWidth) / float64(len(t.Labels))

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(241, 245, 249)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(pdfMetricWidth, pdfRowHeight, "Metric", "1", 0, "L", true, 0, "")
	for _, label := range t.Labels {
		pdf.CellFormat(valueWidth, pdfRowHeight, tr(label), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i, row := range t.Rows {
		fill := i%2 == 1
		pdf.SetFillColor(249, 250, 251)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(pdfMetricWidth, pdfRowHeight, tr(row.Metric.Label), "1", 0, "L", fill, 0, "")
		for j := range row.Cells {
			if row.Metric.Profit && row.Values[j] < 0 {
				pdf.SetTextColor(185, 28, 28)
			} else {
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.CellFormat(valueWidth, pdfRowHeight, pdfCell(row, j), "1", 0, "R", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render comparison PDF: %w", err)
	}
	return nil
}

// pdfCell renders amounts with thousands separators for the printed report.
func pdfCell(row Row, i int) string {
	if row.Metric.Percent {
		return row.Cells[i]
	}
	return format.NumericCurrency(row.Values[i])
}
