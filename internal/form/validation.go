package form

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/mathutil"
)

// SummaryMessage is the banner shown when any field is invalid.
const SummaryMessage = "please correct all errors before calculating"

// Validation is the outcome of checking a field set.
type Validation struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// ValidationError is returned by Submit when the fields do not validate.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.FieldErrors))
	for k := range e.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return SummaryMessage + ": invalid " + strings.Join(keys, ", ")
}

type bound struct {
	key      string
	required bool
	min      float64
	max      float64
	// exclusiveMin rejects values equal to min.
	exclusiveMin bool
	message      string
}

var projectBounds = []bound{
	{key: FieldNumberOfUnits, required: true, exclusiveMin: true, max: math.Inf(1), message: "Number of units is required and must be positive"},
	{key: FieldCostPerUnit, required: true, exclusiveMin: true, max: math.Inf(1), message: "Cost per unit is required and must be positive"},
	{key: FieldSellingPricePerUnit, required: true, exclusiveMin: true, max: math.Inf(1), message: "Selling price is required and must be positive"},
	{key: FieldDuration, required: true, exclusiveMin: true, max: math.Inf(1), message: "Duration is required and must be positive"},
	{key: FieldLoanToValue, required: true, max: 1, message: "Loan-to-Value must be between 0 and 1"},
	{key: FieldEquityContribution, required: true, max: 1, message: "Equity Contribution must be between 0 and 1"},
	{key: FieldGovernmentIncentive, max: constants.MaxGovernmentIncentive, message: "Government incentive must be between 0 and 0.5"},
	{key: FieldAnnualInterestRate, max: math.Inf(1), message: "Annual interest rate must be non-negative"},
	{key: FieldTaxCommissionRate, max: 100, message: "Tax & commission rate must be between 0 and 100"},
	{key: FieldOperationalCost, max: math.Inf(1), message: "Operational cost must be non-negative"},
	{key: FieldOffSalePercentage, max: 100, message: "Off-sale percentage must be between 0 and 100"},
}

var landBounds = []bound{
	{key: FieldLandCostPerSqm, required: true, max: math.Inf(1), message: "Land cost per sqm is required and must be non-negative"},
	{key: FieldUnitSizeInSqm, required: true, exclusiveMin: true, max: math.Inf(1), message: "Unit size is required and must be positive"},
}

// Validate checks fields against the rules of the variant.
func Validate(fields Fields, variant Variant) Validation {
	errs := make(map[string]string)

	bounds := projectBounds
	if variant != VariantSimplified {
		bounds = append(append([]bound(nil), projectBounds...), landBounds...)
	}

	for _, b := range bounds {
		raw := strings.TrimSpace(fields[b.key])
		if raw == "" {
			if b.required {
				errs[b.key] = b.message
			}
			continue
		}
		v, err := parseNumber(raw)
		if err != nil || v < b.min || (b.exclusiveMin && v == b.min) || v > b.max {
			errs[b.key] = b.message
		}
	}

	ltv, ltvErr := parseNumber(fields[FieldLoanToValue])
	equity, equityErr := parseNumber(fields[FieldEquityContribution])
	if ltvErr == nil && equityErr == nil && !mathutil.WithinTolerance(ltv+equity, 1, constants.FinancingTolerance) {
		const msg = "Loan-to-Value and Equity Contribution must add up to 1"
		errs[FieldLoanToValue] = msg
		errs[FieldEquityContribution] = msg
	}

	if len(errs) == 0 {
		return Validation{Valid: true}
	}
	return Validation{Valid: false, FieldErrors: errs, Message: SummaryMessage}
}

// parseNumber parses a field value. NaN and infinities are rejected.
func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// number reads an optional field, treating an empty or unparsable value as 0.
func number(fields Fields, key string) float64 {
	v, err := parseNumber(fields[key])
	if err != nil {
		return 0
	}
	return v
}
