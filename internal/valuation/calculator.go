package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"equitystek/server/internal/domainerr"
)

// Rates holds the market calibration used by the calculator. The offsets are
// fixed linear adjustments applied to the base estimate.
type Rates struct {
	RatePerSqft      decimal.Decimal `json:"rate_per_sqft"`
	BedroomValue     decimal.Decimal `json:"bedroom_value"`
	BathroomValue    decimal.Decimal `json:"bathroom_value"`
	ComparableOffset decimal.Decimal `json:"comparable_offset"`
	AltRatePerSqft   decimal.Decimal `json:"alt_rate_per_sqft"`
	AutomatedOffset  decimal.Decimal `json:"automated_offset"`
	CostOffset       decimal.Decimal `json:"cost_offset"`
	IncomeOffset     decimal.Decimal `json:"income_offset"`
}

// DefaultRates returns the reference calibration.
func DefaultRates() Rates {
	return Rates{
		RatePerSqft:      decimal.NewFromInt(200),
		BedroomValue:     decimal.NewFromInt(15000),
		BathroomValue:    decimal.NewFromInt(10000),
		ComparableOffset: decimal.NewFromInt(15000),
		AltRatePerSqft:   decimal.NewFromInt(195),
		AutomatedOffset:  decimal.NewFromInt(20000),
		CostOffset:       decimal.NewFromInt(10000),
		IncomeOffset:     decimal.NewFromInt(5000),
	}
}

// Validate rejects negative rates and offsets.
func (r Rates) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"rate_per_sqft", r.RatePerSqft},
		{"bedroom_value", r.BedroomValue},
		{"bathroom_value", r.BathroomValue},
		{"comparable_offset", r.ComparableOffset},
		{"alt_rate_per_sqft", r.AltRatePerSqft},
		{"automated_offset", r.AutomatedOffset},
		{"cost_offset", r.CostOffset},
		{"income_offset", r.IncomeOffset},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return domainerr.Invalid(f.name, "must not be negative")
		}
	}
	return nil
}

// Calculator derives valuations from property attributes and maintenance
// history. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	rates Rates
}

// NewCalculator validates the rates and returns a calculator bound to them.
func NewCalculator(rates Rates) (*Calculator, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{rates: rates}, nil
}

// BaseValue computes squareFeet*rate + bedrooms*bedroomValue + bathrooms*bathroomValue.
func (c *Calculator) BaseValue(attrs PropertyAttributes) (decimal.Decimal, error) {
	if err := attrs.Validate(); err != nil {
		return decimal.Zero, err
	}
	return c.baseValue(attrs), nil
}

func (c *Calculator) baseValue(attrs PropertyAttributes) decimal.Decimal {
	sqft := decimal.NewFromInt(int64(attrs.SquareFeet))
	return sqft.Mul(c.rates.RatePerSqft).
		Add(decimal.NewFromInt(int64(attrs.bedrooms())).Mul(c.rates.BedroomValue)).
		Add(attrs.bathrooms().Mul(c.rates.BathroomValue))
}

// Calculate produces a Valuation. Any invalid input aborts the computation;
// negative derived values are clamped to zero and reported as warnings.
func (c *Calculator) Calculate(attrs PropertyAttributes, events []MaintenanceEvent) (*Valuation, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	added := decimal.Zero
	for i, event := range events {
		if err := event.validate(attrs.PropertyID); err != nil {
			return nil, fmt.Errorf("maintenance event %d: %w", i, err)
		}
		added = added.Add(event.valueAdded())
	}

	base := c.baseValue(attrs)
	sqft := decimal.NewFromInt(int64(attrs.SquareFeet))

	v := &Valuation{
		PropertyID:            attrs.PropertyID,
		BaseValue:             base,
		MaintenanceAddedValue: added,
		CompositeValue:        base.Add(added),
	}
	v.ComparableSalesValue = v.clamp("comparable_sales_value", base.Sub(c.rates.ComparableOffset))
	v.PerSquareFootValue = v.clamp("per_square_foot_value", sqft.Mul(c.rates.AltRatePerSqft))
	v.AutomatedModelValue = v.clamp("automated_model_value", base.Sub(c.rates.AutomatedOffset))
	v.CostApproachValue = v.clamp("cost_approach_value", base.Add(c.rates.CostOffset))
	v.IncomeApproachValue = v.clamp("income_approach_value", base.Add(c.rates.IncomeOffset))

	return v, nil
}

func (v *Valuation) clamp(field string, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsNegative() {
		return amount
	}
	v.Warnings = append(v.Warnings, domainerr.DomainWarning{
		Field:   field,
		Message: fmt.Sprintf("derived value %s is negative, clamped to 0", amount.String()),
	})
	return decimal.Zero
}
