// Package form holds the string-valued calculator fields, validates them and
// runs the calculation for a single session.
package form

import (
	"fmt"
	"strings"
)

// Field keys. They double as URL query parameter names and as the keys of
// persisted scenario snapshots.
const (
	FieldNumberOfUnits       = "numberOfUnits"
	FieldCostPerUnit         = "costPerUnit"
	FieldSellingPricePerUnit = "sellingPricePerUnit"
	FieldLoanToValue         = "loanToValue"
	FieldEquityContribution  = "equityContribution"
	FieldDuration            = "duration"
	FieldGovernmentIncentive = "governmentIncentive"
	FieldAnnualInterestRate  = "annualInterestRate"
	FieldTaxCommissionRate   = "taxCommissionRate"
	FieldOperationalCost     = "operationalCost"
	FieldOffSalePercentage   = "offSalePercentage"
	FieldLandCostPerSqm      = "landCostPerSqm"
	FieldUnitSizeInSqm       = "unitSizeInSqm"
)

// Variant selects which formula shape, and therefore which fields, a form uses.
type Variant string

const (
	// VariantFull includes land cost and unit area.
	VariantFull Variant = "full"
	// VariantSimplified omits land cost and unit area.
	VariantSimplified Variant = "simplified"
)

var simplifiedKeys = []string{
	FieldNumberOfUnits,
	FieldCostPerUnit,
	FieldSellingPricePerUnit,
	FieldLoanToValue,
	FieldEquityContribution,
	FieldDuration,
	FieldGovernmentIncentive,
	FieldAnnualInterestRate,
	FieldTaxCommissionRate,
	FieldOperationalCost,
	FieldOffSalePercentage,
}

var landKeys = []string{
	FieldLandCostPerSqm,
	FieldUnitSizeInSqm,
}

// ParseVariant converts a configuration value into a Variant. The empty string
// selects VariantFull.
func ParseVariant(value string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(VariantFull):
		return VariantFull, nil
	case string(VariantSimplified), "simple":
		return VariantSimplified, nil
	}
	return "", fmt.Errorf("unknown variant %q: expected %s or %s", value, VariantFull, VariantSimplified)
}

// Keys returns the field keys used by the variant, in display order.
func (v Variant) Keys() []string {
	keys := append([]string(nil), simplifiedKeys...)
	if v != VariantSimplified {
		keys = append(keys, landKeys...)
	}
	return keys
}

// HasKey reports whether key is one of the variant's fields.
func (v Variant) HasKey(key string) bool {
	for _, k := range v.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// CanonicalKey maps a case-insensitive field name onto its canonical key.
func CanonicalKey(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, k := range VariantFull.Keys() {
		if strings.EqualFold(k, trimmed) {
			return k, true
		}
	}
	return "", false
}

// Fields is a snapshot of field values keyed by field name.
type Fields map[string]string

// Clone returns an independent copy of the fields.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge returns a copy of f overlaid with every non-missing key of other.
func (f Fields) Merge(other Fields) Fields {
	out := f.Clone()
	if out == nil {
		out = make(Fields, len(other))
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Equal reports whether both snapshots hold the same values.
func (f Fields) Equal(other Fields) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// DefaultFields returns the Balanced field values a new form starts with.
func DefaultFields() Fields {
	return Fields{
		FieldNumberOfUnits:       "20",
		FieldCostPerUnit:         "350000",
		FieldSellingPricePerUnit: "420000",
		FieldLoanToValue:         "0.6",
		FieldEquityContribution:  "0.4",
		FieldDuration:            "24",
		FieldGovernmentIncentive: "0.05",
		FieldAnnualInterestRate:  "8",
		FieldTaxCommissionRate:   "5",
		FieldOperationalCost:     "100000",
		FieldOffSalePercentage:   "10",
		FieldLandCostPerSqm:      "1200",
		FieldUnitSizeInSqm:       "100",
	}
}
