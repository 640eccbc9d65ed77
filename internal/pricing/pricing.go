// Package pricing quotes recurring subscription prices from a plan and a
// property count. Nothing here mutates subscription state.
package pricing

import (
	"github.com/shopspring/decimal"

	"equitystek/server/internal/domainerr"
)

// Plan is the pricing policy of a subscription plan. The first property is
// covered by BasePrice and each additional one adds PricePerProperty.
type Plan struct {
	ID               int64            `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	BasePrice        *decimal.Decimal `json:"base_price"`
	PricePerProperty *decimal.Decimal `json:"price_per_property"`
	MaxProperties    *int             `json:"max_properties,omitempty"`
	Features         []string         `json:"features,omitempty"`
}

// Validate checks that the plan can price anything at all.
func (p Plan) Validate() error {
	if p.BasePrice == nil {
		return domainerr.Invalid("base_price", "is required")
	}
	if p.BasePrice.IsNegative() {
		return domainerr.Invalid("base_price", "must not be negative")
	}
	if p.PricePerProperty == nil {
		return domainerr.Invalid("price_per_property", "is required")
	}
	if p.PricePerProperty.IsNegative() {
		return domainerr.Invalid("price_per_property", "must not be negative")
	}
	if p.MaxProperties != nil && *p.MaxProperties < 1 {
		return domainerr.Invalid("max_properties", "must be at least 1 when set")
	}
	return nil
}

// Allows reports whether count fits under the plan cap.
func (p Plan) Allows(count int) bool {
	return p.MaxProperties == nil || count <= *p.MaxProperties
}

// Price returns basePrice + max(0, count-1) * pricePerProperty.
func Price(plan Plan, count int) (decimal.Decimal, error) {
	if err := plan.Validate(); err != nil {
		return decimal.Zero, err
	}
	if count < 1 {
		return decimal.Zero, domainerr.Invalid("property_count", "must be at least 1")
	}
	if !plan.Allows(count) {
		return decimal.Zero, &domainerr.PlanLimitExceededError{
			PlanID:        plan.ID,
			PlanName:      plan.Name,
			MaxProperties: *plan.MaxProperties,
			Requested:     count,
		}
	}

	additional := decimal.NewFromInt(int64(count - 1))
	return plan.BasePrice.Add(additional.Mul(*plan.PricePerProperty)), nil
}

// PriceQuote compares the price under the committed count with the price
// under a proposed one.
type PriceQuote struct {
	PlanID                int64           `json:"plan_id"`
	PreviousPropertyCount int             `json:"previous_property_count"`
	PropertyCount         int             `json:"property_count"`
	CurrentPrice          decimal.Decimal `json:"current_price"`
	EstimatedPrice        decimal.Decimal `json:"estimated_price"`
	PriceDifference       decimal.Decimal `json:"price_difference"`
}

// Quote prices both counts. Either count failing fails the whole quote.
func Quote(plan Plan, oldCount, newCount int) (*PriceQuote, error) {
	current, err := Price(plan, oldCount)
	if err != nil {
		return nil, err
	}
	estimated, err := Price(plan, newCount)
	if err != nil {
		return nil, err
	}

	return &PriceQuote{
		PlanID:                plan.ID,
		PreviousPropertyCount: oldCount,
		PropertyCount:         newCount,
		CurrentPrice:          current,
		EstimatedPrice:        estimated,
		PriceDifference:       estimated.Sub(current),
	}, nil
}

// QuoteCommitted quotes a change away from what a subscriber currently pays.
// The committed price is taken as is, so a plan whose cap has since dropped
// below committedCount can still be quoted down to a count it allows. Only
// newCount is priced and checked against the cap.
func QuoteCommitted(plan Plan, committedCount int, committedPrice decimal.Decimal, newCount int) (*PriceQuote, error) {
	estimated, err := Price(plan, newCount)
	if err != nil {
		return nil, err
	}

	return &PriceQuote{
		PlanID:                plan.ID,
		PreviousPropertyCount: committedCount,
		PropertyCount:         newCount,
		CurrentPrice:          committedPrice,
		EstimatedPrice:        estimated,
		PriceDifference:       estimated.Sub(committedPrice),
	}, nil
}

// BillableCount maps an actual property count to the count a subscription is
// priced at. A subscription always covers at least one property.
func BillableCount(properties int) int {
	if properties < 1 {
		return 1
	}
	return properties
}
