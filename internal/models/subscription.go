package models

import (
	"time"

	"github.com/shopspring/decimal"

	"equitystek/server/internal/domainerr"
)

type SubscriptionPlan struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	Code             string          `json:"code" gorm:"uniqueIndex;not null"`
	Name             string          `json:"name" gorm:"not null"`
	BasePrice        decimal.Decimal `json:"base_price" gorm:"type:decimal(10,2);not null"`
	PricePerProperty decimal.Decimal `json:"price_per_property" gorm:"type:decimal(10,2);not null"`
	MaxProperties    *int            `json:"max_properties"`
	Features         []string        `json:"features" gorm:"serializer:json;type:text"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (SubscriptionPlan) TableName() string { return "subscription_plans" }

// Subscription is the committed plan and billable property count of an owner.
type Subscription struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	OwnerID       int64           `json:"owner_id" gorm:"uniqueIndex;not null"`
	PlanID        int64           `json:"plan_id" gorm:"not null"`
	PropertyCount int             `json:"property_count" gorm:"not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// ValuationRecord caches the last computed valuation of a property.
type ValuationRecord struct {
	PropertyID            int64                     `json:"property_id" gorm:"primaryKey;autoIncrement:false"`
	BaseValue             decimal.Decimal           `json:"base_value" gorm:"type:decimal(14,2)"`
	ComparableSalesValue  decimal.Decimal           `json:"comparable_sales_value" gorm:"type:decimal(14,2)"`
	PerSquareFootValue    decimal.Decimal           `json:"per_square_foot_value" gorm:"type:decimal(14,2)"`
	AutomatedModelValue   decimal.Decimal           `json:"automated_model_value" gorm:"type:decimal(14,2)"`
	CostApproachValue     decimal.Decimal           `json:"cost_approach_value" gorm:"type:decimal(14,2)"`
	IncomeApproachValue   decimal.Decimal           `json:"income_approach_value" gorm:"type:decimal(14,2)"`
	MaintenanceAddedValue decimal.Decimal           `json:"maintenance_added_value" gorm:"type:decimal(14,2)"`
	CompositeValue        decimal.Decimal           `json:"composite_value" gorm:"type:decimal(14,2)"`
	Warnings              []domainerr.DomainWarning `json:"warnings,omitempty" gorm:"serializer:json;type:text"`
	ComputedAt            time.Time                 `json:"computed_at"`
}

func (ValuationRecord) TableName() string { return "valuations" }
