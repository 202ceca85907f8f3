// Package calculator derives the financial metrics of a development project
// from its scenario inputs and the shared assumptions.
package calculator

import (
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/loans"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/mathutil"
)

// ScenarioInput holds the per-project parameters.
type ScenarioInput struct {
	NumberOfUnits       float64 `json:"numberOfUnits"`
	CostPerUnit         float64 `json:"costPerUnit"`
	SellingPricePerUnit float64 `json:"sellingPricePerUnit"`
	LoanToValue         float64 `json:"loanToValue"`
	EquityContribution  float64 `json:"equityContribution"`
	Duration            float64 `json:"duration"` // months
	GovernmentIncentive float64 `json:"governmentIncentive"`

	// Land is nil for the simplified shape, which ignores land and area terms.
	Land *LandParameters `json:"land,omitempty"`
}

// LandParameters adds land cost and unit area to a scenario.
type LandParameters struct {
	LandCostPerSqm float64 `json:"landCostPerSqm"`
	UnitSizeInSqm  float64 `json:"unitSizeInSqm"`
}

// Assumptions holds the rates shared by every scenario. Rates are percents.
type Assumptions struct {
	AnnualInterestRate float64 `json:"annualInterestRate"`
	TaxCommissionRate  float64 `json:"taxCommissionRate"`
	OperationalCost    float64 `json:"operationalCost"`
	OffSalePercentage  float64 `json:"offSalePercentage"`
}

// Result holds every derived metric of one calculation. It is never mutated
// after Calculate returns it.
type Result struct {
	TotalDevelopmentCost float64 `json:"totalDevelopmentCost"`
	TotalLandCost        float64 `json:"totalLandCost"`
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalGrossProfit     float64 `json:"totalGrossProfit"`
	ROI                  float64 `json:"roi"`
	EquityRequirement    float64 `json:"equityRequirement"`
	LoanAmount           float64 `json:"loanAmount"`
	AnnualizedReturn     float64 `json:"annualizedReturn"`
	BreakEvenUnitPrice   float64 `json:"breakEvenUnitPrice"`
	TotalTaxCommission   float64 `json:"totalTaxCommission"`
	OperationalCost      float64 `json:"operationalCost"`
	NetProfit            float64 `json:"netProfit"`
	CostPerSqm           float64 `json:"costPerSqm"`
	SellingPricePerSqm   float64 `json:"sellingPricePerSqm"`
	ProfitMargin         float64 `json:"profitMargin"`
	EstimatedInterest    float64 `json:"estimatedInterest"`
}

// Calculate maps a scenario and the assumptions to its metrics. It is pure and
// total: every division by a zero unit count, equity requirement, duration or
// unit area yields 0.
func Calculate(input ScenarioInput, assumptions Assumptions) Result {
	units := input.NumberOfUnits
	taxRate := mathutil.PercentToRatio(assumptions.TaxCommissionRate)
	offSale := mathutil.PercentToRatio(assumptions.OffSalePercentage)
	years := input.Duration / constants.MonthsPerYear

	var r Result
	if input.Land != nil {
		r.TotalLandCost = input.Land.LandCostPerSqm * input.Land.UnitSizeInSqm * units
		r.CostPerSqm = mathutil.SafeDivide(input.CostPerUnit, input.Land.UnitSizeInSqm)
		r.SellingPricePerSqm = mathutil.SafeDivide(input.SellingPricePerUnit, input.Land.UnitSizeInSqm)
	}

	r.TotalDevelopmentCost = units*input.CostPerUnit*(1-input.GovernmentIncentive) + r.TotalLandCost
	r.TotalRevenue = units * input.SellingPricePerUnit * (1 - offSale)
	r.TotalGrossProfit = r.TotalRevenue - r.TotalDevelopmentCost
	r.EquityRequirement = input.EquityContribution * r.TotalDevelopmentCost
	r.LoanAmount = input.LoanToValue * r.TotalDevelopmentCost

	if r.EquityRequirement != 0 {
		r.ROI = r.TotalGrossProfit / r.EquityRequirement * constants.PercentageMultiplier
		r.AnnualizedReturn = mathutil.SafeDivide(r.ROI, years)
	}

	r.BreakEvenUnitPrice = mathutil.SafeDivide(r.TotalDevelopmentCost, units)
	r.TotalTaxCommission = r.TotalRevenue * taxRate
	r.OperationalCost = assumptions.OperationalCost
	r.NetProfit = r.TotalGrossProfit - r.TotalTaxCommission - r.OperationalCost
	r.ProfitMargin = mathutil.CalculatePercentage(r.TotalGrossProfit, r.TotalRevenue)
	r.EstimatedInterest = loans.TotalInterest(r.LoanAmount, assumptions.AnnualInterestRate, loans.TermMonths(input.Duration))

	return r
}

// Finite reports whether every metric is a finite number.
func (r Result) Finite() bool {
	for _, m := range Metrics {
		v, _ := r.Value(m.Key)
		if !mathutil.IsFinite(v) {
			return false
		}
	}
	return true
}
