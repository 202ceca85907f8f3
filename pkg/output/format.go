// Package output provides utilities for formatting and displaying scenario results.
package output

import (
	"fmt"
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/comparison"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/format"
)

const metricColumnWidth = 28

// PrettyFormat outputs a human-readable rather than machine-readable table,
// one block per scenario.
func PrettyFormat(table comparison.Table) {
	for i, label := range table.Labels {
		fmt.Printf("--- Results for scenario %s (%s) ---\n", label, table.Currency.Code)
		fmt.Printf("%-*s | Value\n", metricColumnWidth, "Metric")
		fmt.Printf("%s | _____\n", strings.Repeat("_", metricColumnWidth))
		for _, row := range table.Rows {
			value := format.Currency(table.Currency.Symbol, row.Values[i])
			if row.Metric.Percent {
				value = format.Percent(row.Values[i])
			}
			fmt.Printf("%-*s | %s\n", metricColumnWidth, row.Metric.Label, value)
		}
		if i < len(table.Labels)-1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format with one column per scenario.
func CsvFormat(table comparison.Table) {
	fmt.Printf(`"metric"`)
	for _, label := range table.Labels {
		fmt.Printf(`,"%s (%s)"`, strings.ReplaceAll(label, `"`, `""`), table.Currency.Code)
	}
	fmt.Printf("\n")
	for _, row := range table.Rows {
		fmt.Printf(`"%s"`, row.Metric.Key)
		for _, v := range row.Values {
			fmt.Printf(`,"%.2f"`, v)
		}
		fmt.Printf("\n")
	}
}
