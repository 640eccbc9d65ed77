package portfolio

import (
	"github.com/shopspring/decimal"

	"equitystek/server/internal/models"
	"equitystek/server/internal/pricing"
	"equitystek/server/internal/valuation"
)

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toAttributes(p *models.Property) valuation.PropertyAttributes {
	return valuation.PropertyAttributes{
		PropertyID:   p.ID,
		SquareFeet:   p.SquareFeet,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    nullable(p.Bathrooms),
		PropertyType: string(p.PropertyType),
		YearBuilt:    p.YearBuilt,
	}
}

func toEvent(e *models.MaintenanceEvent) valuation.MaintenanceEvent {
	return valuation.MaintenanceEvent{
		ID:                  e.ID,
		PropertyID:          e.PropertyID,
		Category:            string(e.Category),
		Cost:                e.Cost,
		EstimatedValueAdded: nullable(e.EstimatedValueAdded),
		CompletedDate:       e.CompletedDate,
	}
}

func toEvents(events []models.MaintenanceEvent) []valuation.MaintenanceEvent {
	out := make([]valuation.MaintenanceEvent, len(events))
	for i := range events {
		out[i] = toEvent(&events[i])
	}
	return out
}

// ToPlan converts a stored plan into its pricing policy.
func ToPlan(p *models.SubscriptionPlan) pricing.Plan {
	base := p.BasePrice
	perProperty := p.PricePerProperty
	return pricing.Plan{
		ID:               p.ID,
		Code:             p.Code,
		Name:             p.Name,
		BasePrice:        &base,
		PricePerProperty: &perProperty,
		MaxProperties:    p.MaxProperties,
		Features:         p.Features,
	}
}

func toRecord(v *valuation.Valuation) *models.ValuationRecord {
	return &models.ValuationRecord{
		PropertyID:            v.PropertyID,
		BaseValue:             v.BaseValue,
		ComparableSalesValue:  v.ComparableSalesValue,
		PerSquareFootValue:    v.PerSquareFootValue,
		AutomatedModelValue:   v.AutomatedModelValue,
		CostApproachValue:     v.CostApproachValue,
		IncomeApproachValue:   v.IncomeApproachValue,
		MaintenanceAddedValue: v.MaintenanceAddedValue,
		CompositeValue:        v.CompositeValue,
		Warnings:              v.Warnings,
	}
}
