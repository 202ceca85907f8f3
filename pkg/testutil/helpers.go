// Package testutil provides common utility functions for testing.
package testutil

import (
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/comparison"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/scenario"
)

// FindScenario finds a scenario by name, ignoring case.
// Returns a pointer to the scenario if found, nil otherwise.
func FindScenario(scenarios []scenario.NamedScenario, name string) *scenario.NamedScenario {
	for i := range scenarios {
		if strings.EqualFold(scenarios[i].Name, name) {
			return &scenarios[i]
		}
	}
	return nil
}

// FindRow finds the comparison row of a metric key.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(table comparison.Table, key string) *comparison.Row {
	for i := range table.Rows {
		if table.Rows[i].Metric.Key == key {
			return &table.Rows[i]
		}
	}
	return nil
}
