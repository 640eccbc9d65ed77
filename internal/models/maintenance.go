package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MaintenanceCategory string

const (
	CategoryRoof        MaintenanceCategory = "roof"
	CategoryPlumbing    MaintenanceCategory = "plumbing"
	CategoryElectrical  MaintenanceCategory = "electrical"
	CategoryHVAC        MaintenanceCategory = "hvac"
	CategoryAppliances  MaintenanceCategory = "appliances"
	CategoryFlooring    MaintenanceCategory = "flooring"
	CategoryKitchen     MaintenanceCategory = "kitchen"
	CategoryBathroom    MaintenanceCategory = "bathroom"
	CategoryExterior    MaintenanceCategory = "exterior"
	CategoryLandscaping MaintenanceCategory = "landscaping"
	CategoryOther       MaintenanceCategory = "other"
)

var maintenanceCategories = map[MaintenanceCategory]struct{}{
	CategoryRoof:        {},
	CategoryPlumbing:    {},
	CategoryElectrical:  {},
	CategoryHVAC:        {},
	CategoryAppliances:  {},
	CategoryFlooring:    {},
	CategoryKitchen:     {},
	CategoryBathroom:    {},
	CategoryExterior:    {},
	CategoryLandscaping: {},
	CategoryOther:       {},
}

func (c MaintenanceCategory) IsValid() bool {
	_, ok := maintenanceCategories[c]
	return ok
}

// MaintenanceEvent is one row of a property's maintenance ledger.
type MaintenanceEvent struct {
	ID                  int64               `json:"id" gorm:"primaryKey"`
	PropertyID          int64               `json:"property_id" gorm:"not null;index"`
	TradespersonID      *int64              `json:"tradesperson_id" gorm:"index"`
	Category            MaintenanceCategory `json:"category" gorm:"type:text;not null"`
	Description         string              `json:"description"`
	Cost                decimal.Decimal     `json:"cost" gorm:"type:decimal(14,2);not null"`
	EstimatedValueAdded decimal.NullDecimal `json:"estimated_value_added" gorm:"type:decimal(14,2)"`
	CompletedDate       *time.Time          `json:"completed_date"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func (MaintenanceEvent) TableName() string { return "maintenance_events" }

type Tradesperson struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Trade     string    `json:"trade"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tradesperson) TableName() string { return "tradespersons" }
