package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"equitystek/server/internal/domainerr"
	"equitystek/server/internal/models"
)

// PlanDefinition is one entry of the plan catalogue file. Prices are kept as
// strings so they stay exact and so a missing price can be told apart from 0.
type PlanDefinition struct {
	Code             string   `mapstructure:"code"`
	Name             string   `mapstructure:"name"`
	BasePrice        string   `mapstructure:"base_price"`
	PricePerProperty string   `mapstructure:"price_per_property"`
	MaxProperties    *int     `mapstructure:"max_properties"`
	Features         []string `mapstructure:"features"`
}

// LoadPlans reads the plan catalogue at path. The file format is picked from
// the extension (yaml, json, toml).
func LoadPlans(path string) ([]models.SubscriptionPlan, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}

	var definitions []PlanDefinition
	if err := v.UnmarshalKey("plans", &definitions); err != nil {
		return nil, fmt.Errorf("failed to parse plans file: %w", err)
	}
	if len(definitions) == 0 {
		return nil, fmt.Errorf("plans file %s defines no plans", path)
	}

	plans := make([]models.SubscriptionPlan, 0, len(definitions))
	seen := make(map[string]bool, len(definitions))
	for _, def := range definitions {
		plan, err := def.toModel()
		if err != nil {
			return nil, fmt.Errorf("plan %q: %w", def.Code, err)
		}
		if seen[plan.Code] {
			return nil, fmt.Errorf("plan %q: %w", plan.Code, domainerr.Invalid("code", "is duplicated"))
		}
		seen[plan.Code] = true
		plans = append(plans, plan)
	}
	return plans, nil
}

func (d PlanDefinition) toModel() (models.SubscriptionPlan, error) {
	code := strings.TrimSpace(d.Code)
	if code == "" {
		return models.SubscriptionPlan{}, domainerr.Invalid("code", "is required")
	}
	base, err := parsePrice("base_price", d.BasePrice)
	if err != nil {
		return models.SubscriptionPlan{}, err
	}
	perProperty, err := parsePrice("price_per_property", d.PricePerProperty)
	if err != nil {
		return models.SubscriptionPlan{}, err
	}
	if d.MaxProperties != nil && *d.MaxProperties < 1 {
		return models.SubscriptionPlan{}, domainerr.Invalid("max_properties", "must be at least 1 when set")
	}

	name := d.Name
	if name == "" {
		name = code
	}

	return models.SubscriptionPlan{
		Code:             code,
		Name:             name,
		BasePrice:        base,
		PricePerProperty: perProperty,
		MaxProperties:    d.MaxProperties,
		Features:         d.Features,
	}, nil
}

func parsePrice(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, domainerr.Invalid(field, "is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domainerr.Invalid(field, "is not a number")
	}
	if price.IsNegative() {
		return decimal.Zero, domainerr.Invalid(field, "must not be negative")
	}
	return price, nil
}
