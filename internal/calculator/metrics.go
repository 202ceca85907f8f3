package calculator

// Metric describes one tracked output of a calculation.
type Metric struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Percent bool   `json:"percent"`
	Profit  bool   `json:"profit"`
}

// Metric keys.
const (
	MetricTotalDevelopmentCost = "totalDevelopmentCost"
	MetricTotalLandCost        = "totalLandCost"
	MetricTotalRevenue         = "totalRevenue"
	MetricTotalGrossProfit     = "totalGrossProfit"
	MetricROI                  = "roi"
	MetricEquityRequirement    = "equityRequirement"
	MetricLoanAmount           = "loanAmount"
	MetricAnnualizedReturn     = "annualizedReturn"
	MetricCostPerSqm           = "costPerSqm"
	MetricSellingPricePerSqm   = "sellingPricePerSqm"
	MetricBreakEvenUnitPrice   = "breakEvenUnitPrice"
	MetricTotalTaxCommission   = "totalTaxCommission"
	MetricOperationalCost      = "operationalCost"
	MetricNetProfit            = "netProfit"
	MetricProfitMargin         = "profitMargin"
	MetricEstimatedInterest    = "estimatedInterest"
)

// Metrics is the ordered set of metrics shown in comparisons and exports.
var Metrics = []Metric{
	{Key: MetricTotalDevelopmentCost, Label: "Total Development Cost"},
	{Key: MetricTotalLandCost, Label: "Total Land Cost"},
	{Key: MetricTotalRevenue, Label: "Total Revenue"},
	{Key: MetricTotalGrossProfit, Label: "Total Gross Profit", Profit: true},
	{Key: MetricROI, Label: "ROI (%)", Percent: true, Profit: true},
	{Key: MetricEquityRequirement, Label: "Equity Requirement"},
	{Key: MetricLoanAmount, Label: "Loan Amount"},
	{Key: MetricAnnualizedReturn, Label: "Annualized Return (%)", Percent: true, Profit: true},
	{Key: MetricCostPerSqm, Label: "Construction Cost Per Sqm"},
	{Key: MetricSellingPricePerSqm, Label: "Selling Price Per Sqm"},
	{Key: MetricBreakEvenUnitPrice, Label: "Break-even Unit Price"},
	{Key: MetricTotalTaxCommission, Label: "Tax & Commission"},
	{Key: MetricOperationalCost, Label: "Operational Cost"},
	{Key: MetricNetProfit, Label: "Net Profit", Profit: true},
	{Key: MetricProfitMargin, Label: "Profit Margin (%)", Percent: true, Profit: true},
	{Key: MetricEstimatedInterest, Label: "Estimated Financing Interest"},
}

// SummaryMetrics are the keys shown on the dashboard and in sidebars.
var SummaryMetrics = []string{
	MetricNetProfit,
	MetricROI,
	MetricTotalDevelopmentCost,
	MetricTotalLandCost,
	MetricCostPerSqm,
	MetricBreakEvenUnitPrice,
}

// LookupMetric returns the metric definition for key.
func LookupMetric(key string) (Metric, bool) {
	for _, m := range Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

// Value returns the metric named key.
func (r Result) Value(key string) (float64, bool) {
	switch key {
	case MetricTotalDevelopmentCost:
		return r.TotalDevelopmentCost, true
	case MetricTotalLandCost:
		return r.TotalLandCost, true
	case MetricTotalRevenue:
		return r.TotalRevenue, true
	case MetricTotalGrossProfit:
		return r.TotalGrossProfit, true
	case MetricROI:
		return r.ROI, true
	case MetricEquityRequirement:
		return r.EquityRequirement, true
	case MetricLoanAmount:
		return r.LoanAmount, true
	case MetricAnnualizedReturn:
		return r.AnnualizedReturn, true
	case MetricCostPerSqm:
		return r.CostPerSqm, true
	case MetricSellingPricePerSqm:
		return r.SellingPricePerSqm, true
	case MetricBreakEvenUnitPrice:
		return r.BreakEvenUnitPrice, true
	case MetricTotalTaxCommission:
		return r.TotalTaxCommission, true
	case MetricOperationalCost:
		return r.OperationalCost, true
	case MetricNetProfit:
		return r.NetProfit, true
	case MetricProfitMargin:
		return r.ProfitMargin, true
	case MetricEstimatedInterest:
		return r.EstimatedInterest, true
	}
	return 0, false
}
