// Package config defines the data structures related to configuration and
// includes functions for loading and interpreting the config.
package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/auth"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/currency"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/scenario"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/storage"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override configuration keys,
// e.g. RECALC_AUTH_SECRET for auth.secret.
const EnvPrefix = "RECALC"

// Configuration holds all configuration for the calculator.
type Configuration struct {
	Variant     string            `yaml:"variant,omitempty"`  // full, simplified
	Currency    string            `yaml:"currency,omitempty"` // SAR, USD, EUR, GBP, AED
	Assumptions map[string]string `yaml:"assumptions,omitempty"`
	Scenarios   []ScenarioConfig  `yaml:"scenarios,omitempty"`
	Storage     storage.Config    `yaml:"storage,omitempty"`
	Auth        auth.Config       `yaml:"auth,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
}

// ScenarioConfig describes a scenario to evaluate. Fields are overlaid on the
// named preset (the default preset when empty) and the shared assumptions.
type ScenarioConfig struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Preset      string            `yaml:"preset,omitempty"`
	Fields      map[string]string `yaml:"fields,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Env overrides only apply to keys viper knows about.
	v.SetDefault("variant", string(form.VariantFull))
	v.SetDefault("currency", constants.BaseCurrency)
	v.SetDefault("storage.driver", constants.StorageDriverMemory)
	v.SetDefault("storage.path", "")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.tokenTTL", auth.DefaultTokenTTL.String())
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("output.format", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// FormVariant returns the configured formula shape.
func (c *Configuration) FormVariant() (form.Variant, error) {
	return form.ParseVariant(c.Variant)
}

// DisplayCurrency returns the configured display currency.
func (c *Configuration) DisplayCurrency() (currency.Currency, error) {
	return currency.Lookup(c.Currency)
}

// AssumptionFields returns the shared assumptions keyed by canonical field name.
func (c *Configuration) AssumptionFields() (form.Fields, error) {
	return canonicalFields(c.Assumptions, "assumptions")
}

// BuildScenarios resolves every configured scenario into a named field set.
// Each starts from its preset, then the shared assumptions, then its own fields.
func (c *Configuration) BuildScenarios(presets []scenario.NamedScenario) ([]scenario.NamedScenario, error) {
	variant, err := c.FormVariant()
	if err != nil {
		return nil, err
	}
	assumptions, err := c.AssumptionFields()
	if err != nil {
		return nil, err
	}

	out := make([]scenario.NamedScenario, 0, len(c.Scenarios))
	for i, sc := range c.Scenarios {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			return nil, fmt.Errorf("scenario #%d: %w", i+1, scenario.ErrEmptyName)
		}

		base := presetFields(presets, sc.Preset, variant)
		if base == nil {
			return nil, fmt.Errorf("scenario %s: unknown preset %q", name, sc.Preset)
		}
		overrides, err := canonicalFields(sc.Fields, "scenario "+name)
		if err != nil {
			return nil, err
		}

		fields := base.Merge(assumptions).Merge(overrides)
		for k := range fields {
			if !variant.HasKey(k) {
				delete(fields, k)
			}
		}
		out = append(out, scenario.NamedScenario{
			Name:        name,
			Description: sc.Description,
			Fields:      fields,
		})
	}
	return out, nil
}

func presetFields(presets []scenario.NamedScenario, name string, variant form.Variant) form.Fields {
	if strings.TrimSpace(name) == "" {
		name = defaultPreset(variant)
	}
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			if p.Fields == nil {
				return form.DefaultFields()
			}
			return p.Fields.Clone()
		}
	}
	return nil
}

func defaultPreset(variant form.Variant) string {
	if variant == form.VariantSimplified {
		return scenario.CaseRealistic
	}
	return scenario.PresetBalanced
}

func canonicalFields(raw map[string]string, where string) (form.Fields, error) {
	fields := make(form.Fields, len(raw))
	for name, value := range raw {
		key, ok := form.CanonicalKey(name)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s", where, form.ErrUnknownField, name)
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	variant, err := c.FormVariant()
	if err != nil {
		warnings = append(warnings, err.Error())
		variant = form.VariantFull
	}
	if _, err := c.DisplayCurrency(); err != nil {
		warnings = append(warnings, err.Error())
	}
	if err := validation.ValidateStorageDriver(c.Storage.Driver); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if _, err := c.AssumptionFields(); err != nil {
		warnings = append(warnings, err.Error())
	}

	presets := scenario.PresetsFor(variant)
	reserved := make([]string, len(presets))
	for i, p := range presets {
		reserved[i] = p.Name
	}
	names := make([]string, len(c.Scenarios))
	for i, sc := range c.Scenarios {
		names[i] = sc.Name
	}
	warnings = append(warnings, validation.ValidateScenarioNames(names, reserved)...)

	scenarios, err := c.BuildScenarios(presets)
	if err != nil {
		return append(warnings, err.Error())
	}
	for _, sc := range scenarios {
		result := form.Validate(sc.Fields, variant)
		if result.Valid {
			continue
		}
		keys := make([]string, 0, len(result.FieldErrors))
		for k := range result.FieldErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s': %s", sc.Name, result.FieldErrors[k]))
		}
	}
	return warnings
}
