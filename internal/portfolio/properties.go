package portfolio

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"equitystek/server/internal/domainerr"
	"equitystek/server/internal/models"
	"equitystek/server/internal/pricing"
)

// AddPropertyResult is a created property with the quote that was committed
// for it.
type AddPropertyResult struct {
	Property *models.Property   `json:"property"`
	Quote    *pricing.PriceQuote `json:"quote"`
}

func validateProperty(p *models.Property) error {
	if p.OwnerID <= 0 {
		return domainerr.Invalid("owner_id", "is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return domainerr.Invalid("name", "is required")
	}
	if !p.PropertyType.IsValid() {
		return domainerr.Invalid("property_type", "is not a known property type")
	}
	if err := toAttributes(p).Validate(); err != nil {
		return err
	}
	if p.PurchasePrice.Valid && p.PurchasePrice.Decimal.IsNegative() {
		return domainerr.Invalid("purchase_price", "must not be negative")
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return domainerr.Invalid("latitude", "latitude and longitude must be set together")
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		return domainerr.Invalid("latitude", "must be between -90 and 90")
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		return domainerr.Invalid("longitude", "must be between -180 and 180")
	}
	return nil
}

func (s *Service) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	return s.store.GetProperty(ctx, id)
}

func (s *Service) ListProperties(ctx context.Context, ownerID int64) ([]models.Property, error) {
	return s.store.ListPropertiesByOwner(ctx, ownerID)
}

// AddProperty quotes the owner's subscription for one more property and, when
// the plan allows it, persists the property and commits the new price in the
// same transaction.
func (s *Service) AddProperty(ctx context.Context, p *models.Property) (*AddPropertyResult, error) {
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	s.fillCoordinates(ctx, p)

	var quote *pricing.PriceQuote
	err := s.store.Transaction(ctx, func(tx Store) error {
		sub, plan, err := subscriptionPlan(ctx, tx, p.OwnerID)
		if err != nil {
			return err
		}
		count, err := tx.CountPropertiesByOwner(ctx, p.OwnerID)
		if err != nil {
			return err
		}

		quote, err = pricing.QuoteCommitted(plan, sub.PropertyCount, sub.Price, pricing.BillableCount(count+1))
		s.metrics.ObserveQuote(err)
		if err != nil {
			return err
		}

		if err := tx.CreateProperty(ctx, p); err != nil {
			return err
		}
		sub.PropertyCount = quote.PropertyCount
		sub.Price = quote.EstimatedPrice
		return tx.SaveSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": p.ID,
		"owner_id":    p.OwnerID,
		"price":       quote.EstimatedPrice.String(),
	}).Info("Property added")

	s.scheduleRevaluation(ctx, p.ID)
	return &AddPropertyResult{Property: p, Quote: quote}, nil
}

// UpdateProperty replaces the attributes of an existing property. The owner
// cannot be changed.
func (s *Service) UpdateProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	existing, err := s.store.GetProperty(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.OwnerID = existing.OwnerID
	p.CreatedAt = existing.CreatedAt
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProperty(ctx, p); err != nil {
		return nil, err
	}

	s.scheduleRevaluation(ctx, p.ID)
	return s.store.GetProperty(ctx, p.ID)
}

// RemoveProperty deletes a property with its ledger and cached valuation and
// re-commits the owner's subscription price. The returned quote is nil when
// the owner has no subscription.
func (s *Service) RemoveProperty(ctx context.Context, id int64) (*pricing.PriceQuote, error) {
	var quote *pricing.PriceQuote
	err := s.store.Transaction(ctx, func(tx Store) error {
		property, err := tx.GetProperty(ctx, id)
		if err != nil {
			return err
		}

		sub, plan, err := subscriptionPlan(ctx, tx, property.OwnerID)
		switch {
		case errors.Is(err, domainerr.ErrSubscriptionRequired):
			return tx.DeleteProperty(ctx, id)
		case err != nil:
			return err
		}

		count, err := tx.CountPropertiesByOwner(ctx, property.OwnerID)
		if err != nil {
			return err
		}
		quote, err = pricing.QuoteCommitted(plan, sub.PropertyCount, sub.Price, pricing.BillableCount(count-1))
		s.metrics.ObserveQuote(err)
		if err != nil {
			return err
		}

		if err := tx.DeleteProperty(ctx, id); err != nil {
			return err
		}
		sub.PropertyCount = quote.PropertyCount
		sub.Price = quote.EstimatedPrice
		return tx.SaveSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("property_id", id).Info("Property removed")
	return quote, nil
}

func (s *Service) fillCoordinates(ctx context.Context, p *models.Property) {
	if s.geocoder == nil || p.HasCoordinates() {
		return
	}
	lat, lon, err := s.geocoder.GeocodeAddress(ctx, p.Address, p.PostalCode, p.City)
	if err != nil {
		s.logger.WithError(err).WithField("address", p.Address).Warn("Failed to geocode property")
		return
	}
	p.Latitude = &lat
	p.Longitude = &lon
}
