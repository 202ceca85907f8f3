// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
)

// ValidateStorageDriver checks that driver names a supported storage medium.
// The empty string selects the in-memory store.
func ValidateStorageDriver(driver string) error {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", constants.StorageDriverMemory, constants.StorageDriverJSON, constants.StorageDriverSQLite:
		return nil
	}
	return fmt.Errorf("expected storage driver of %s, %s or %s, got %s",
		constants.StorageDriverMemory, constants.StorageDriverJSON, constants.StorageDriverSQLite, driver)
}

// ValidateScenarioNames returns warnings for blank names and for names used
// more than once, ignoring case. reserved holds names taken by presets.
func ValidateScenarioNames(names []string, reserved []string) []string {
	var warnings []string

	taken := make(map[string]string)
	for _, name := range reserved {
		taken[strings.ToLower(name)] = "preset"
	}

	for i, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			warnings = append(warnings, fmt.Sprintf("Scenario #%d has no name and will be skipped", i+1))
			continue
		}
		key := strings.ToLower(trimmed)
		if owner, ok := taken[key]; ok {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' duplicates the name of a %s", trimmed, owner))
			continue
		}
		taken[key] = "configured scenario"
	}
	return warnings
}
