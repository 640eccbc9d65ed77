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

// subscriptionPlan loads an owner's subscription and the pricing policy of
// its plan.
func subscriptionPlan(ctx context.Context, store Store, ownerID int64) (*models.Subscription, pricing.Plan, error) {
	sub, err := store.GetSubscription(ctx, ownerID)
	if errors.Is(err, domainerr.ErrNotFound) {
		return nil, pricing.Plan{}, domainerr.ErrSubscriptionRequired
	}
	if err != nil {
		return nil, pricing.Plan{}, err
	}
	plan, err := store.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, pricing.Plan{}, err
	}
	return sub, ToPlan(plan), nil
}

func (s *Service) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return s.store.ListPlans(ctx)
}

func (s *Service) GetSubscription(ctx context.Context, ownerID int64) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, ownerID)
	if errors.Is(err, domainerr.ErrNotFound) {
		return nil, domainerr.ErrSubscriptionRequired
	}
	return sub, err
}

// QuotePropertyChange prices the owner's plan at the current property count
// plus delta against the committed price. Nothing is persisted.
func (s *Service) QuotePropertyChange(ctx context.Context, ownerID int64, delta int) (*pricing.PriceQuote, error) {
	quote, err := s.quotePropertyChange(ctx, ownerID, delta)
	s.metrics.ObserveQuote(err)
	return quote, err
}

func (s *Service) quotePropertyChange(ctx context.Context, ownerID int64, delta int) (*pricing.PriceQuote, error) {
	sub, plan, err := subscriptionPlan(ctx, s.store, ownerID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountPropertiesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count+delta < 0 {
		return nil, domainerr.Invalid("delta", "would leave a negative property count")
	}
	return pricing.QuoteCommitted(plan, sub.PropertyCount, sub.Price, pricing.BillableCount(count+delta))
}

// Subscribe puts the owner on the plan with the given code, creating the
// subscription if needed. The owner's existing properties must fit the plan.
func (s *Service) Subscribe(ctx context.Context, ownerID int64, planCode string) (*models.Subscription, error) {
	if ownerID <= 0 {
		return nil, domainerr.Invalid("owner_id", "is required")
	}
	planCode = strings.TrimSpace(planCode)
	if planCode == "" {
		return nil, domainerr.Invalid("plan_code", "is required")
	}

	var sub *models.Subscription
	err := s.store.Transaction(ctx, func(tx Store) error {
		stored, err := tx.GetPlanByCode(ctx, planCode)
		if err != nil {
			return err
		}
		plan := ToPlan(stored)

		count, err := tx.CountPropertiesByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		billable := pricing.BillableCount(count)
		price, err := pricing.Price(plan, billable)
		s.metrics.ObserveQuote(err)
		if err != nil {
			return err
		}

		sub, err = tx.GetSubscription(ctx, ownerID)
		if errors.Is(err, domainerr.ErrNotFound) {
			sub = &models.Subscription{OwnerID: ownerID}
		} else if err != nil {
			return err
		}

		sub.PlanID = plan.ID
		sub.PropertyCount = billable
		sub.Price = price
		return tx.SaveSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"plan_code": planCode,
		"price":     sub.Price.String(),
	}).Info("Subscription committed")
	return sub, nil
}
