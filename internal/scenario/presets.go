package scenario

import (
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
)

// Preset names.
const (
	PresetConservative = "Conservative"
	PresetBalanced     = constants.BalancedPreset
	PresetAggressive   = "Aggressive"
	PresetCustom       = constants.CustomScenarioLabel

	CaseWorst        = "Worst Case"
	CaseRealistic    = "Realistic Case"
	CaseOptimistic   = "Optimistic Case"
	CaseSaudiAligned = "Saudi-Aligned Market Case"
	CaseLoanHeavy    = "Loan-Heavy Case"
	CaseNoFinancing  = "No-Financing Case"
)

// DefaultPresets returns the built-in scenarios of the full calculator.
// Custom carries no values, so applying it only changes the active label.
func DefaultPresets() []NamedScenario {
	return []NamedScenario{
		{
			Name:        PresetConservative,
			Description: "A low-risk investment approach",
			Preset:      true,
			Fields: form.Fields{
				form.FieldNumberOfUnits:       "15",
				form.FieldCostPerUnit:         "380000",
				form.FieldSellingPricePerUnit: "420000",
				form.FieldLoanToValue:         "0.5",
				form.FieldEquityContribution:  "0.5",
				form.FieldDuration:            "36",
				form.FieldGovernmentIncentive: "0.05",
				form.FieldAnnualInterestRate:  "6",
				form.FieldTaxCommissionRate:   "5",
				form.FieldOperationalCost:     "80000",
				form.FieldOffSalePercentage:   "15",
				form.FieldLandCostPerSqm:      "1000",
				form.FieldUnitSizeInSqm:       "120",
			},
		},
		{
			Name:        PresetBalanced,
			Description: "A moderate risk-reward approach",
			Preset:      true,
			Fields:      form.DefaultFields(),
		},
		{
			Name:        PresetAggressive,
			Description: "A high-risk, high-reward approach",
			Preset:      true,
			Fields: form.Fields{
				form.FieldNumberOfUnits:       "30",
				form.FieldCostPerUnit:         "320000",
				form.FieldSellingPricePerUnit: "450000",
				form.FieldLoanToValue:         "0.7",
				form.FieldEquityContribution:  "0.3",
				form.FieldDuration:            "18",
				form.FieldGovernmentIncentive: "0.1",
				form.FieldAnnualInterestRate:  "10",
				form.FieldTaxCommissionRate:   "4",
				form.FieldOperationalCost:     "120000",
				form.FieldOffSalePercentage:   "5",
				form.FieldLandCostPerSqm:      "1500",
				form.FieldUnitSizeInSqm:       "90",
			},
		},
		{
			Name:        PresetCustom,
			Description: "Your custom scenario",
			Preset:      true,
		},
	}
}

// SimplifiedPresets returns the evaluation cases of the simplified calculator.
// They share the default assumptions and carry no land or area fields.
func SimplifiedPresets() []NamedScenario {
	simplified := func(name, units, cost, sell, ltv, equity, duration, incentive string) NamedScenario {
		return NamedScenario{
			Name:   name,
			Preset: true,
			Fields: form.Fields{
				form.FieldNumberOfUnits:       units,
				form.FieldCostPerUnit:         cost,
				form.FieldSellingPricePerUnit: sell,
				form.FieldLoanToValue:         ltv,
				form.FieldEquityContribution:  equity,
				form.FieldDuration:            duration,
				form.FieldGovernmentIncentive: incentive,
				form.FieldAnnualInterestRate:  "8",
				form.FieldTaxCommissionRate:   "5",
				form.FieldOperationalCost:     "100000",
				form.FieldOffSalePercentage:   "10",
			},
		}
	}

	return []NamedScenario{
		simplified(CaseWorst, "10", "400000", "350000", "0.5", "0.5", "36", "0"),
		simplified(CaseRealistic, "20", "350000", "420000", "0.6", "0.4", "24", "0.05"),
		simplified(CaseOptimistic, "30", "320000", "500000", "0.7", "0.3", "18", "0.1"),
		simplified(CaseSaudiAligned, "50", "300000", "480000", "0.65", "0.35", "24", "0.15"),
		simplified(CaseLoanHeavy, "25", "340000", "410000", "0.7", "0.3", "24", "0"),
		simplified(CaseNoFinancing, "15", "370000", "390000", "0", "1", "36", "0"),
	}
}

// PresetsFor returns the built-in scenarios matching a form variant.
func PresetsFor(variant form.Variant) []NamedScenario {
	if variant == form.VariantSimplified {
		return SimplifiedPresets()
	}
	return DefaultPresets()
}
