// Package valuation derives property value estimates from physical attributes
// and maintenance history.
package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"equitystek/server/internal/domainerr"
)

// PropertyAttributes are the physical attributes a valuation is based on.
type PropertyAttributes struct {
	PropertyID   int64
	SquareFeet   int
	Bedrooms     *int
	Bathrooms    *decimal.Decimal
	PropertyType string
	YearBuilt    *int
}

// Validate checks the attributes without computing anything.
func (a PropertyAttributes) Validate() error {
	if a.SquareFeet <= 0 {
		return domainerr.Invalid("square_feet", "must be a positive number")
	}
	if a.Bedrooms != nil && *a.Bedrooms < 0 {
		return domainerr.Invalid("bedrooms", "must not be negative")
	}
	if a.Bathrooms != nil && a.Bathrooms.IsNegative() {
		return domainerr.Invalid("bathrooms", "must not be negative")
	}
	if a.YearBuilt != nil && *a.YearBuilt <= 0 {
		return domainerr.Invalid("year_built", "must be a positive year")
	}
	return nil
}

func (a PropertyAttributes) bedrooms() int {
	if a.Bedrooms == nil {
		return 0
	}
	return *a.Bedrooms
}

func (a PropertyAttributes) bathrooms() decimal.Decimal {
	if a.Bathrooms == nil {
		return decimal.Zero
	}
	return *a.Bathrooms
}

// MaintenanceEvent is one completed or scheduled maintenance action.
type MaintenanceEvent struct {
	ID                  int64
	PropertyID          int64
	Category            string
	Cost                decimal.Decimal
	EstimatedValueAdded *decimal.Decimal
	CompletedDate       *time.Time
}

// Validate checks the amounts of a single event.
func (e MaintenanceEvent) Validate() error {
	return e.validate(0)
}

func (e MaintenanceEvent) validate(propertyID int64) error {
	if propertyID != 0 && e.PropertyID != 0 && e.PropertyID != propertyID {
		return domainerr.Invalid("property_id", "event belongs to a different property")
	}
	if e.Cost.IsNegative() {
		return domainerr.Invalid("cost", "must not be negative")
	}
	if e.EstimatedValueAdded != nil && e.EstimatedValueAdded.IsNegative() {
		return domainerr.Invalid("estimated_value_added", "must not be negative")
	}
	return nil
}

func (e MaintenanceEvent) valueAdded() decimal.Decimal {
	if e.EstimatedValueAdded == nil {
		return decimal.Zero
	}
	return *e.EstimatedValueAdded
}

// Valuation is the derived set of estimates for one property. It is never
// mutated after Calculate returns it.
type Valuation struct {
	PropertyID            int64                     `json:"property_id"`
	BaseValue             decimal.Decimal           `json:"base_value"`
	ComparableSalesValue  decimal.Decimal           `json:"comparable_sales_value"`
	PerSquareFootValue    decimal.Decimal           `json:"per_square_foot_value"`
	AutomatedModelValue   decimal.Decimal           `json:"automated_model_value"`
	CostApproachValue     decimal.Decimal           `json:"cost_approach_value"`
	IncomeApproachValue   decimal.Decimal           `json:"income_approach_value"`
	MaintenanceAddedValue decimal.Decimal           `json:"maintenance_added_value"`
	CompositeValue        decimal.Decimal           `json:"composite_value"`
	Warnings              []domainerr.DomainWarning `json:"warnings,omitempty"`
}
