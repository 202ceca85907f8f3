package comparison

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/calculator"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/currency"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/format"
)

// Row is one metric across the selected entries.
type Row struct {
	Metric calculator.Metric `json:"metric"`
	Values []float64         `json:"values"`
	Cells  []string          `json:"cells"`
}

// Table is the selected entries laid out one column per entry.
type Table struct {
	Currency currency.Currency `json:"currency"`
	Labels   []string          `json:"labels"`
	Rows     []Row             `json:"rows"`
}

// Header returns the column headings, starting with "Metric".
func (t Table) Header() []string {
	return append([]string{"Metric"}, t.Labels...)
}

// Records returns the header followed by one record per row.
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header())
	for _, row := range t.Rows {
		records = append(records, append([]string{row.Metric.Label}, row.Cells...))
	}
	return records
}

// Table builds the comparison table for the selected entries. Percentages are
// left as they are; every other metric is converted into c.
func (e *Engine) Table(c currency.Currency) (Table, error) {
	selected := e.Selected()
	if len(selected) == 0 {
		return Table{}, ErrNothingSelected
	}

	t := Table{Currency: c, Labels: make([]string, len(selected))}
	for i, entry := range selected {
		t.Labels[i] = entry.Label
	}

	for _, m := range calculator.Metrics {
		row := Row{
			Metric: m,
			Values: make([]float64, len(selected)),
			Cells:  make([]string, len(selected)),
		}
		for i, entry := range selected {
			v, _ := entry.Result.Value(m.Key)
			if m.Percent {
				row.Values[i] = v
				row.Cells[i] = format.Percent(v)
				continue
			}
			row.Values[i] = c.Convert(v)
			row.Cells[i] = format.PlainAmount(row.Values[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV writes the comparison table as CSV.
func (e *Engine) WriteCSV(w io.Writer, c currency.Currency) error {
	t, err := e.Table(c)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write comparison CSV: %w", err)
	}
	return nil
}
