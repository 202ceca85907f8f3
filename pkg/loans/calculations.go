// Package loans provides construction-loan amortization utilities.
package loans

import (
	"fmt"
	"math"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment is one month of a construction-loan repayment plan.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Summary totals a repayment plan, rounded to cents.
type Summary struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPrincipal float64 `json:"totalPrincipal"`
	TotalInterest  float64 `json:"totalInterest"`
	TotalPaid      float64 `json:"totalPaid"`
}

// TermMonths converts a project duration in months to a whole loan term.
// Durations too large for a term saturate at math.MaxInt32.
func TermMonths(duration float64) int {
	switch {
	case math.IsNaN(duration) || duration <= 0:
		return 0
	case duration >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(math.Round(duration))
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
// annualInterestRate is a percent (8 for 8%).
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	// 1 - (1+r)^-n in log space; long terms converge on principal*r instead of overflowing.
	discountFactor := -math.Expm1(-float64(termMonths) * math.Log1p(periodicInterestRate))
	if discountFactor <= 0 || math.IsNaN(discountFactor) {
		return principal / float64(termMonths)
	}
	return principal * periodicInterestRate / discountFactor
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// AmortizationScheduleGenerator builds month-by-month repayment plans for the loan share of a project.
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a month-by-month schedule that retires principal over termMonths.
// Terms longer than constants.MaxScheduleMonths are rejected.
func (g *AmortizationScheduleGenerator) GenerateSchedule(principal, annualInterestRate float64, termMonths int) ([]Payment, error) {
	if principal < 0 {
		return nil, fmt.Errorf("principal must be non-negative, got %.2f", principal)
	}
	if annualInterestRate < 0 {
		return nil, fmt.Errorf("interest rate must be non-negative, got %.2f", annualInterestRate)
	}
	if termMonths > constants.MaxScheduleMonths {
		return nil, fmt.Errorf("loan term of %d months exceeds the %d month schedule limit", termMonths, constants.MaxScheduleMonths)
	}
	if termMonths <= 0 || mathutil.IsZero(principal) {
		return nil, nil
	}

	monthlyPayment := CalculateMonthlyPayment(principal, annualInterestRate, termMonths)
	schedule := make([]Payment, 0, termMonths)
	remaining := principal
	for month := 1; month <= termMonths; month++ {
		interest := CalculateInterestPayment(remaining, annualInterestRate)
		payment := monthlyPayment
		principalPart := payment - interest

		// Final payment absorbs rounding drift.
		if month == termMonths || principalPart > remaining || mathutil.IsZero(remaining-principalPart) {
			principalPart = remaining
			payment = principalPart + interest
		}
		remaining -= principalPart

		schedule = append(schedule, Payment{
			Month:              month,
			Payment:            payment,
			Principal:          principalPart,
			Interest:           interest,
			RemainingPrincipal: remaining,
		})
		if remaining == 0 {
			break
		}
	}

	g.logger.Debug(fmt.Sprintf("generated %d-month schedule for principal %.2f", len(schedule), principal),
		zap.String("op", "loans.GenerateSchedule"),
	)
	return schedule, nil
}

// Summarize totals a schedule.
func Summarize(schedule []Payment) Summary {
	var s Summary
	if len(schedule) > 0 {
		s.MonthlyPayment = mathutil.Round(schedule[0].Payment)
	}
	for _, p := range schedule {
		s.TotalPrincipal += p.Principal
		s.TotalInterest += p.Interest
		s.TotalPaid += p.Payment
	}
	s.TotalPrincipal = mathutil.Round(s.TotalPrincipal)
	s.TotalInterest = mathutil.Round(s.TotalInterest)
	s.TotalPaid = mathutil.Round(s.TotalPaid)
	return s
}

// TotalInterest returns the interest paid over a fully amortized loan of termMonths.
func TotalInterest(principal, annualInterestRate float64, termMonths int) float64 {
	if principal <= 0 || annualInterestRate <= 0 || termMonths <= 0 {
		return 0
	}
	return CalculateMonthlyPayment(principal, annualInterestRate, termMonths)*float64(termMonths) - principal
}
