package form

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/calculator"
	"go.uber.org/zap"
)

var (
	// ErrUnknownField is returned when a key is not a field of the form's variant.
	ErrUnknownField = errors.New("unknown field")
	// ErrCalculation is returned when the calculation fails on validated input.
	ErrCalculation = errors.New("an error occurred during calculation")
)

// Controller owns the current fields and the latest result of one session.
// It is not safe for concurrent use.
type Controller struct {
	logger  *zap.Logger
	variant Variant
	fields  Fields
	result  *calculator.Result

	calculate func(calculator.ScenarioInput, calculator.Assumptions) calculator.Result
}

// NewController creates a controller seeded with initial, or with
// DefaultFields when initial is nil.
func NewController(logger *zap.Logger, variant Variant, initial Fields) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if variant == "" {
		variant = VariantFull
	}
	if initial == nil {
		initial = DefaultFields()
	}
	return &Controller{
		logger:    logger,
		variant:   variant,
		fields:    initial.Clone(),
		calculate: calculator.Calculate,
	}
}

// Variant returns the formula shape the controller validates and calculates with.
func (c *Controller) Variant() Variant {
	return c.variant
}

// Fields returns a copy of the current field values.
func (c *Controller) Fields() Fields {
	return c.fields.Clone()
}

// SetField updates one field. Editing loan-to-value derives the equity
// contribution as its complement, and vice versa.
func (c *Controller) SetField(key, value string) error {
	if !c.variant.HasKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	c.fields[key] = value

	switch key {
	case FieldLoanToValue:
		if v, err := parseNumber(value); err == nil {
			c.fields[FieldEquityContribution] = complement(v)
		}
	case FieldEquityContribution:
		if v, err := parseNumber(value); err == nil {
			c.fields[FieldLoanToValue] = complement(v)
		}
	}
	return nil
}

// SetFields overlays every known key of fields onto the current values
// without deriving financing ratios. Unknown keys are ignored.
func (c *Controller) SetFields(fields Fields) {
	for k, v := range fields {
		if c.variant.HasKey(k) {
			c.fields[k] = v
		}
	}
}

// Reset replaces all fields and clears the result.
func (c *Controller) Reset(fields Fields) {
	if fields == nil {
		fields = DefaultFields()
	}
	c.fields = fields.Clone()
	c.result = nil
}

// Validate checks the current fields.
func (c *Controller) Validate() Validation {
	return Validate(c.fields, c.variant)
}

// Result returns the latest successful calculation.
func (c *Controller) Result() (calculator.Result, bool) {
	if c.result == nil {
		return calculator.Result{}, false
	}
	return *c.result, true
}

// Submit validates the fields and, when they are valid, calculates and stores
// the result. On any failure the previous result is kept.
func (c *Controller) Submit() (calculator.Result, error) {
	validation := c.Validate()
	if !validation.Valid {
		c.logger.Debug("validation failed",
			zap.String("op", "form.Submit"),
			zap.Int("invalidFields", len(validation.FieldErrors)),
		)
		return calculator.Result{}, &ValidationError{FieldErrors: validation.FieldErrors}
	}

	input, assumptions := Inputs(c.fields, c.variant)
	result, err := c.safeCalculate(input, assumptions)
	if err != nil {
		c.logger.Error("calculation failed",
			zap.String("op", "form.Submit"),
			zap.Error(err),
		)
		return calculator.Result{}, err
	}

	c.result = &result
	c.logger.Debug("calculation completed",
		zap.String("op", "form.Submit"),
		zap.Float64("netProfit", result.NetProfit),
		zap.Float64("roi", result.ROI),
	)
	return result, nil
}

func (c *Controller) safeCalculate(input calculator.ScenarioInput, assumptions calculator.Assumptions) (result calculator.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = calculator.Result{}
			err = fmt.Errorf("%w: %v", ErrCalculation, r)
		}
	}()

	result = c.calculate(input, assumptions)
	if !result.Finite() {
		return calculator.Result{}, fmt.Errorf("%w: non-finite metric", ErrCalculation)
	}
	return result, nil
}

// Inputs converts fields into calculator inputs. Empty optional values count as 0.
func Inputs(fields Fields, variant Variant) (calculator.ScenarioInput, calculator.Assumptions) {
	input := calculator.ScenarioInput{
		NumberOfUnits:       number(fields, FieldNumberOfUnits),
		CostPerUnit:         number(fields, FieldCostPerUnit),
		SellingPricePerUnit: number(fields, FieldSellingPricePerUnit),
		LoanToValue:         number(fields, FieldLoanToValue),
		EquityContribution:  number(fields, FieldEquityContribution),
		Duration:            number(fields, FieldDuration),
		GovernmentIncentive: number(fields, FieldGovernmentIncentive),
	}
	if variant != VariantSimplified {
		input.Land = &calculator.LandParameters{
			LandCostPerSqm: number(fields, FieldLandCostPerSqm),
			UnitSizeInSqm:  number(fields, FieldUnitSizeInSqm),
		}
	}

	assumptions := calculator.Assumptions{
		AnnualInterestRate: number(fields, FieldAnnualInterestRate),
		TaxCommissionRate:  number(fields, FieldTaxCommissionRate),
		OperationalCost:    number(fields, FieldOperationalCost),
		OffSalePercentage:  number(fields, FieldOffSalePercentage),
	}
	return input, assumptions
}

// Evaluate validates fields and calculates them without any session state.
func Evaluate(fields Fields, variant Variant) (calculator.Result, Validation) {
	validation := Validate(fields, variant)
	if !validation.Valid {
		return calculator.Result{}, validation
	}
	input, assumptions := Inputs(fields, variant)
	return calculator.Calculate(input, assumptions), validation
}

func complement(v float64) string {
	return strconv.FormatFloat(1-v, 'f', 2, 64)
}
