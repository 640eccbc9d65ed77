package portfolio

import (
	"context"
	"errors"
	"strings"

	"equitystek/server/internal/domainerr"
	"equitystek/server/internal/models"
)

func validateMaintenance(e *models.MaintenanceEvent) error {
	if !e.Category.IsValid() {
		return domainerr.Invalid("category", "is not a known maintenance category")
	}
	e.Description = strings.TrimSpace(e.Description)
	return toEvent(e).Validate()
}

// checkTradesperson rejects a reference to a tradesperson that does not exist.
func (s *Service) checkTradesperson(ctx context.Context, e *models.MaintenanceEvent) error {
	if e.TradespersonID == nil {
		return nil
	}
	_, err := s.store.GetTradesperson(ctx, *e.TradespersonID)
	if errors.Is(err, domainerr.ErrNotFound) {
		return domainerr.Invalid("tradesperson_id", "does not exist")
	}
	return err
}

func (s *Service) ListMaintenance(ctx context.Context, propertyID int64) ([]models.MaintenanceEvent, error) {
	if _, err := s.store.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.store.ListMaintenanceByProperty(ctx, propertyID)
}

// AddMaintenance records an event on an existing property and schedules the
// property for revaluation.
func (s *Service) AddMaintenance(ctx context.Context, e *models.MaintenanceEvent) (*models.MaintenanceEvent, error) {
	if err := validateMaintenance(e); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProperty(ctx, e.PropertyID); err != nil {
		return nil, err
	}
	if err := s.checkTradesperson(ctx, e); err != nil {
		return nil, err
	}
	if err := s.store.CreateMaintenanceEvent(ctx, e); err != nil {
		return nil, err
	}
	s.scheduleRevaluation(ctx, e.PropertyID)
	return e, nil
}

// UpdateMaintenance replaces an event. Events cannot move between properties.
func (s *Service) UpdateMaintenance(ctx context.Context, e *models.MaintenanceEvent) (*models.MaintenanceEvent, error) {
	existing, err := s.store.GetMaintenanceEvent(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if e.PropertyID != 0 && e.PropertyID != existing.PropertyID {
		return nil, domainerr.Invalid("property_id", "event belongs to a different property")
	}
	e.PropertyID = existing.PropertyID
	e.CreatedAt = existing.CreatedAt
	if err := validateMaintenance(e); err != nil {
		return nil, err
	}
	if err := s.checkTradesperson(ctx, e); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMaintenanceEvent(ctx, e); err != nil {
		return nil, err
	}
	s.scheduleRevaluation(ctx, e.PropertyID)
	return s.store.GetMaintenanceEvent(ctx, e.ID)
}

func (s *Service) DeleteMaintenance(ctx context.Context, id int64) error {
	existing, err := s.store.GetMaintenanceEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMaintenanceEvent(ctx, id); err != nil {
		return err
	}
	s.scheduleRevaluation(ctx, existing.PropertyID)
	return nil
}
