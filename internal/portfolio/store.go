package portfolio

import (
	"context"

	"equitystek/server/internal/database"
	"equitystek/server/internal/models"
)

// Store is the persistence the portfolio service needs.
type Store interface {
	CreateProperty(ctx context.Context, p *models.Property) error
	UpdateProperty(ctx context.Context, p *models.Property) error
	GetProperty(ctx context.Context, id int64) (*models.Property, error)
	ListPropertiesByOwner(ctx context.Context, ownerID int64) ([]models.Property, error)
	CountPropertiesByOwner(ctx context.Context, ownerID int64) (int, error)
	DeleteProperty(ctx context.Context, id int64) error

	CreateMaintenanceEvent(ctx context.Context, e *models.MaintenanceEvent) error
	UpdateMaintenanceEvent(ctx context.Context, e *models.MaintenanceEvent) error
	GetMaintenanceEvent(ctx context.Context, id int64) (*models.MaintenanceEvent, error)
	ListMaintenanceByProperty(ctx context.Context, propertyID int64) ([]models.MaintenanceEvent, error)
	DeleteMaintenanceEvent(ctx context.Context, id int64) error

	GetTradesperson(ctx context.Context, id int64) (*models.Tradesperson, error)

	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error)
	GetPlanByCode(ctx context.Context, code string) (*models.SubscriptionPlan, error)
	GetSubscription(ctx context.Context, ownerID int64) (*models.Subscription, error)
	SaveSubscription(ctx context.Context, sub *models.Subscription) error

	SaveValuation(ctx context.Context, v *models.ValuationRecord) error
	GetValuation(ctx context.Context, propertyID int64) (*models.ValuationRecord, error)

	// Transaction runs fn against a Store bound to one transaction. Only the
	// Store passed to fn may be used inside it.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type dbStore struct {
	*database.Database
}

// NewStore adapts a database to Store.
func NewStore(db *database.Database) Store {
	return dbStore{db}
}

func (s dbStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.Database.Transaction(ctx, func(tx *database.Database) error {
		return fn(dbStore{tx})
	})
}
