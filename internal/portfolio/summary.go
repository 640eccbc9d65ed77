package portfolio

import (
	"context"

	"github.com/shopspring/decimal"

	"equitystek/server/internal/geometry"
	"equitystek/server/internal/models"
	"equitystek/server/internal/valuation"
)

type PropertyValuation struct {
	Property        models.Property      `json:"property"`
	Valuation       *valuation.Valuation `json:"valuation"`
	MaintenanceCost decimal.Decimal      `json:"maintenance_cost"`
}

// Summary aggregates every property of one owner.
type Summary struct {
	OwnerID              int64                      `json:"owner_id"`
	PropertyCount        int                        `json:"property_count"`
	TotalValue           decimal.Decimal            `json:"total_value"`
	TotalPurchasePrice   decimal.Decimal            `json:"total_purchase_price"`
	EquityGain           decimal.Decimal            `json:"equity_gain"`
	TotalMaintenanceCost decimal.Decimal            `json:"total_maintenance_cost"`
	TotalValueAdded      decimal.Decimal            `json:"total_value_added"`
	MaintenanceReturn    *decimal.Decimal           `json:"maintenance_return,omitempty"`
	CostByCategory       map[string]decimal.Decimal `json:"cost_by_category"`
	Properties           []PropertyValuation        `json:"properties"`
}

// Summary values all of the owner's properties concurrently and aggregates
// them. Equity gain only counts properties with a known purchase price.
// MaintenanceReturn is value added per unit of maintenance cost and is nil
// when nothing was spent.
func (s *Service) Summary(ctx context.Context, ownerID int64) (*Summary, error) {
	properties, err := s.store.ListPropertiesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	inputs := make([]valuation.Input, len(properties))
	costs := make([]decimal.Decimal, len(properties))
	byCategory := make(map[string]decimal.Decimal)

	for i := range properties {
		events, err := s.store.ListMaintenanceByProperty(ctx, properties[i].ID)
		if err != nil {
			return nil, err
		}
		inputs[i] = valuation.Input{
			Attributes: toAttributes(&properties[i]),
			Events:     toEvents(events),
		}
		for _, e := range events {
			costs[i] = costs[i].Add(e.Cost)
			category := string(e.Category)
			byCategory[category] = byCategory[category].Add(e.Cost)
		}
	}

	valuations, err := s.calc.CalculateAll(ctx, inputs, s.concurrency)
	if err != nil {
		s.metrics.ObserveValuation(err, 0)
		return nil, err
	}

	summary := &Summary{
		OwnerID:        ownerID,
		PropertyCount:  len(properties),
		CostByCategory: byCategory,
		Properties:     make([]PropertyValuation, len(properties)),
	}
	for i, v := range valuations {
		s.metrics.ObserveValuation(nil, len(v.Warnings))
		p := properties[i]

		summary.TotalValue = summary.TotalValue.Add(v.CompositeValue)
		summary.TotalMaintenanceCost = summary.TotalMaintenanceCost.Add(costs[i])
		summary.TotalValueAdded = summary.TotalValueAdded.Add(v.MaintenanceAddedValue)
		if p.PurchasePrice.Valid {
			summary.TotalPurchasePrice = summary.TotalPurchasePrice.Add(p.PurchasePrice.Decimal)
			summary.EquityGain = summary.EquityGain.Add(v.CompositeValue.Sub(p.PurchasePrice.Decimal))
		}

		summary.Properties[i] = PropertyValuation{
			Property:        p,
			Valuation:       v,
			MaintenanceCost: costs[i],
		}
	}

	if summary.TotalMaintenanceCost.IsPositive() {
		ratio := summary.TotalValueAdded.DivRound(summary.TotalMaintenanceCost, 4)
		summary.MaintenanceReturn = &ratio
	}
	return summary, nil
}

// Map renders the owner's portfolio as GeoJSON.
func (s *Service) Map(ctx context.Context, ownerID int64) (*geometry.Map, error) {
	summary, err := s.Summary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	items := make([]geometry.MapItem, len(summary.Properties))
	for i, pv := range summary.Properties {
		items[i] = geometry.MapItem{
			PropertyID:     pv.Property.ID,
			Name:           pv.Property.Name,
			City:           pv.Property.City,
			Latitude:       pv.Property.Latitude,
			Longitude:      pv.Property.Longitude,
			CompositeValue: pv.Valuation.CompositeValue,
		}
	}
	return geometry.PortfolioMap(items), nil
}
