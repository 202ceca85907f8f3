// Package constants provides shared constants for the real-estate investment calculator.
package constants

import "time"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// FinancingTolerance is the allowed drift of loan-to-value plus equity contribution from 1
	FinancingTolerance = 0.001

	// MaxScheduleMonths caps the length of a generated amortization schedule
	MaxScheduleMonths = 1200

	// MaxGovernmentIncentive is the upper bound accepted for the government incentive ratio
	MaxGovernmentIncentive = 0.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// ExportFormatCSV, ExportFormatPDF and ExportFormatHTML name the comparison downloads
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatHTML = "html"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeout bounds how long in-flight requests may finish on exit
	DefaultShutdownTimeout = 10 * time.Second
)

// Scenario constants
const (
	// BalancedPreset is the preset every workspace starts from and falls back to
	BalancedPreset = "Balanced"

	// CustomScenarioLabel marks field values that do not belong to a stored scenario
	CustomScenarioLabel = "Custom"

	// DefaultScenarioDescription is used when a user scenario is saved without one
	DefaultScenarioDescription = "Custom scenario"

	// ScenarioStorageKey is the fixed key user scenarios are persisted under
	ScenarioStorageKey = "customScenarios"
)

// Storage drivers
const (
	StorageDriverMemory = "memory"
	StorageDriverJSON   = "json"
	StorageDriverSQLite = "sqlite"
)

// BaseCurrency is the currency every amount is calculated in.
const BaseCurrency = "SAR"
