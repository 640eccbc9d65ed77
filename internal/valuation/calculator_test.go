package valuation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitystek/server/internal/domainerr"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual),
		append([]interface{}{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(DefaultRates())
	require.NoError(t, err)
	return calc
}

func referenceHouse() PropertyAttributes {
	return PropertyAttributes{
		PropertyID:   7,
		SquareFeet:   2000,
		Bedrooms:     intPtr(3),
		Bathrooms:    dec("2"),
		PropertyType: "single_family",
	}
}

func TestCalculate_ReferenceScenario(t *testing.T) {
	calc := newCalculator(t)

	v, err := calc.Calculate(referenceHouse(), []MaintenanceEvent{
		{ID: 1, PropertyID: 7, Category: "roof", Cost: decimal.NewFromInt(12000), EstimatedValueAdded: dec("8000")},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), v.PropertyID)
	assertAmount(t, "465000", v.BaseValue)
	assertAmount(t, "8000", v.MaintenanceAddedValue)
	assertAmount(t, "473000", v.CompositeValue)
	assertAmount(t, "450000", v.ComparableSalesValue)
	assertAmount(t, "390000", v.PerSquareFootValue)
	assertAmount(t, "445000", v.AutomatedModelValue)
	assertAmount(t, "475000", v.CostApproachValue)
	assertAmount(t, "470000", v.IncomeApproachValue)
	assert.Empty(t, v.Warnings)
}

func TestCalculate_EmptyLedgerCompositeEqualsBase(t *testing.T) {
	calc := newCalculator(t)

	houses := []PropertyAttributes{
		referenceHouse(),
		{SquareFeet: 850},
		{SquareFeet: 1200, Bedrooms: intPtr(2), Bathrooms: dec("1.5")},
	}

	for _, house := range houses {
		v, err := calc.Calculate(house, nil)
		require.NoError(t, err)
		assert.True(t, v.MaintenanceAddedValue.IsZero())
		assert.True(t, v.CompositeValue.Equal(v.BaseValue))
	}
}

func TestCalculate_MaintenanceIsAdditive(t *testing.T) {
	calc := newCalculator(t)
	house := referenceHouse()

	events := []MaintenanceEvent{
		{Category: "hvac", Cost: decimal.NewFromInt(4000), EstimatedValueAdded: dec("2500.50")},
		{Category: "plumbing", Cost: decimal.NewFromInt(900)},
		{Category: "kitchen", Cost: decimal.NewFromInt(25000), EstimatedValueAdded: dec("0")},
	}

	before, err := calc.Calculate(house, events)
	require.NoError(t, err)
	assertAmount(t, "2500.50", before.MaintenanceAddedValue)

	after, err := calc.Calculate(house, append(events, MaintenanceEvent{
		Category: "bathroom", Cost: decimal.NewFromInt(6000), EstimatedValueAdded: dec("1234.56"),
	}))
	require.NoError(t, err)

	assertAmount(t, "1234.56", after.CompositeValue.Sub(before.CompositeValue))
	// the base estimate depends only on the property attributes
	assert.True(t, after.CompositeValue.Sub(after.MaintenanceAddedValue).
		Equal(before.CompositeValue.Sub(before.MaintenanceAddedValue)))
}

func TestBaseValue(t *testing.T) {
	calc := newCalculator(t)

	base, err := calc.BaseValue(referenceHouse())
	require.NoError(t, err)
	assertAmount(t, "465000", base)

	events := []MaintenanceEvent{
		{Category: "roof", Cost: decimal.NewFromInt(12000), EstimatedValueAdded: dec("8000")},
		{Category: "painting", Cost: decimal.NewFromInt(1500), EstimatedValueAdded: dec("750.25")},
	}
	for _, house := range []PropertyAttributes{
		referenceHouse(),
		{SquareFeet: 640},
		{SquareFeet: 1800, Bedrooms: intPtr(4), Bathrooms: dec("2.5")},
	} {
		base, err := calc.BaseValue(house)
		require.NoError(t, err)

		v, err := calc.Calculate(house, events)
		require.NoError(t, err)
		assert.True(t, v.CompositeValue.Sub(v.MaintenanceAddedValue).Equal(base))
	}

	_, err = calc.BaseValue(PropertyAttributes{SquareFeet: 0})
	assert.True(t, domainerr.IsInvalidInput(err))
}

func TestCalculate_MissingRoomsDefaultToZero(t *testing.T) {
	calc := newCalculator(t)

	v, err := calc.Calculate(PropertyAttributes{SquareFeet: 1000}, nil)
	require.NoError(t, err)
	assertAmount(t, "200000", v.BaseValue)
}

func TestCalculate_InvalidInput(t *testing.T) {
	calc := newCalculator(t)

	tests := []struct {
		name   string
		attrs  PropertyAttributes
		events []MaintenanceEvent
		field  string
	}{
		{
			name:  "zero square feet",
			attrs: PropertyAttributes{SquareFeet: 0},
			field: "square_feet",
		},
		{
			name:  "negative square feet",
			attrs: PropertyAttributes{SquareFeet: -10},
			field: "square_feet",
		},
		{
			name:  "negative bedrooms",
			attrs: PropertyAttributes{SquareFeet: 900, Bedrooms: intPtr(-1)},
			field: "bedrooms",
		},
		{
			name:  "negative bathrooms",
			attrs: PropertyAttributes{SquareFeet: 900, Bathrooms: dec("-0.5")},
			field: "bathrooms",
		},
		{
			name:   "negative cost",
			attrs:  referenceHouse(),
			events: []MaintenanceEvent{{Cost: decimal.NewFromInt(-1)}},
			field:  "cost",
		},
		{
			name:   "negative value added",
			attrs:  referenceHouse(),
			events: []MaintenanceEvent{{Cost: decimal.Zero, EstimatedValueAdded: dec("-300")}},
			field:  "estimated_value_added",
		},
		{
			name:   "event of another property",
			attrs:  referenceHouse(),
			events: []MaintenanceEvent{{PropertyID: 99, Cost: decimal.Zero}},
			field:  "property_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := calc.Calculate(tt.attrs, tt.events)
			assert.Nil(t, v)

			var invalid *domainerr.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestCalculate_NegativeDerivedValuesAreClampedWithWarnings(t *testing.T) {
	calc := newCalculator(t)

	// 50 sqft * 200 = 10000, below both subtractive offsets
	v, err := calc.Calculate(PropertyAttributes{SquareFeet: 50}, nil)
	require.NoError(t, err)

	assert.True(t, v.ComparableSalesValue.IsZero())
	assert.True(t, v.AutomatedModelValue.IsZero())
	assertAmount(t, "10000", v.CompositeValue)

	require.Len(t, v.Warnings, 2)
	assert.Equal(t, "comparable_sales_value", v.Warnings[0].Field)
	assert.Equal(t, "automated_model_value", v.Warnings[1].Field)
}

func TestCalculate_CustomRates(t *testing.T) {
	rates := DefaultRates()
	rates.RatePerSqft = decimal.NewFromInt(350)
	rates.ComparableOffset = decimal.Zero

	calc, err := NewCalculator(rates)
	require.NoError(t, err)

	v, err := calc.Calculate(PropertyAttributes{SquareFeet: 1000}, nil)
	require.NoError(t, err)
	assertAmount(t, "350000", v.BaseValue)
	assertAmount(t, "350000", v.ComparableSalesValue)
}

func TestNewCalculator_RejectsNegativeRates(t *testing.T) {
	rates := DefaultRates()
	rates.IncomeOffset = decimal.NewFromInt(-5)

	calc, err := NewCalculator(rates)
	assert.Nil(t, calc)
	assert.True(t, domainerr.IsInvalidInput(err))
}

func TestCalculateAll(t *testing.T) {
	calc := newCalculator(t)

	inputs := []Input{
		{Attributes: PropertyAttributes{PropertyID: 1, SquareFeet: 1000}},
		{Attributes: referenceHouse(), Events: []MaintenanceEvent{{PropertyID: 7, EstimatedValueAdded: dec("8000")}}},
		{Attributes: PropertyAttributes{PropertyID: 3, SquareFeet: 1500, Bedrooms: intPtr(2)}},
	}

	results, err := calc.CalculateAll(context.Background(), inputs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, int64(1), results[0].PropertyID)
	assertAmount(t, "200000", results[0].CompositeValue)
	assertAmount(t, "473000", results[1].CompositeValue)
	assertAmount(t, "330000", results[2].CompositeValue)
}

func TestCalculateAll_FailsAtomically(t *testing.T) {
	calc := newCalculator(t)

	inputs := []Input{
		{Attributes: PropertyAttributes{PropertyID: 1, SquareFeet: 1000}},
		{Attributes: PropertyAttributes{PropertyID: 2}},
	}

	results, err := calc.CalculateAll(context.Background(), inputs, 0)
	assert.Nil(t, results)
	assert.True(t, domainerr.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "property 2")
}
