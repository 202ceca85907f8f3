// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// NormalizeExportFormat lowercases a comparison download format, defaulting to
// CSV, and rejects anything but csv, pdf and html.
func NormalizeExportFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		return constants.ExportFormatCSV, nil
	case constants.ExportFormatCSV, constants.ExportFormatPDF, constants.ExportFormatHTML:
		return normalized, nil
	}
	return "", fmt.Errorf("unsupported export format %q: expected %s, %s or %s",
		format, constants.ExportFormatCSV, constants.ExportFormatPDF, constants.ExportFormatHTML)
}
