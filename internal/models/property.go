package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PropertyType string

const (
	PropertyTypeSingleFamily PropertyType = "single_family"
	PropertyTypeCondo        PropertyType = "condo"
	PropertyTypeTownhouse    PropertyType = "townhouse"
	PropertyTypeMultiFamily  PropertyType = "multi_family"
	PropertyTypeLand         PropertyType = "land"
	PropertyTypeCommercial   PropertyType = "commercial"
)

var propertyTypes = map[PropertyType]struct{}{
	PropertyTypeSingleFamily: {},
	PropertyTypeCondo:        {},
	PropertyTypeTownhouse:    {},
	PropertyTypeMultiFamily:  {},
	PropertyTypeLand:         {},
	PropertyTypeCommercial:   {},
}

// IsValid reports whether t is one of the known property types.
func (t PropertyType) IsValid() bool {
	_, ok := propertyTypes[t]
	return ok
}

type Property struct {
	ID            int64               `json:"id" gorm:"primaryKey"`
	OwnerID       int64               `json:"owner_id" gorm:"not null;index"`
	Name          string              `json:"name"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	PostalCode    string              `json:"postal_code"`
	PropertyType  PropertyType        `json:"property_type" gorm:"type:text;not null"`
	SquareFeet    int                 `json:"square_feet" gorm:"not null"`
	Bedrooms      *int                `json:"bedrooms"`
	Bathrooms     decimal.NullDecimal `json:"bathrooms" gorm:"type:decimal(4,1)"`
	YearBuilt     *int                `json:"year_built"`
	PurchasePrice decimal.NullDecimal `json:"purchase_price" gorm:"type:decimal(14,2)"`
	Latitude      *float64            `json:"latitude"`
	Longitude     *float64            `json:"longitude"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

// HasCoordinates reports whether the property can be placed on a map.
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
