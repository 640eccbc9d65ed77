package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"equitystek/server/internal/domainerr"
	"equitystek/server/internal/models"
)

type Database struct {
	db *gorm.DB
}

// NewDatabase opens the sqlite database at dsn. Any sqlite DSN works,
// including "file:name?mode=memory&cache=shared" for tests.
func NewDatabase(dsn string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn against a transaction-scoped Database.
func (d *Database) Transaction(ctx context.Context, fn func(tx *Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{db: tx})
	})
}

func wrapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerr.ErrNotFound
	}
	return err
}

// Properties

func (d *Database) CreateProperty(ctx context.Context, p *models.Property) error {
	if err := d.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

func (d *Database) UpdateProperty(ctx context.Context, p *models.Property) error {
	result := d.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", p.ID).
		Select("*").Omit("id", "owner_id", "created_at").Updates(p)
	if result.Error != nil {
		return fmt.Errorf("failed to update property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

func (d *Database) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	var p models.Property
	if err := d.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

func (d *Database) ListPropertiesByOwner(ctx context.Context, ownerID int64) ([]models.Property, error) {
	var properties []models.Property
	err := d.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return properties, nil
}

func (d *Database) CountPropertiesByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Property{}).Where("owner_id = ?", ownerID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return int(count), nil
}

// ListPropertyIDs returns every property id in ascending order.
func (d *Database) ListPropertyIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := d.db.WithContext(ctx).Model(&models.Property{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list property ids: %w", err)
	}
	return ids, nil
}

// DeleteProperty removes a property together with its ledger and cached valuation.
func (d *Database) DeleteProperty(ctx context.Context, id int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.MaintenanceEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete maintenance events: %w", err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.ValuationRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete valuation: %w", err)
		}
		result := tx.Delete(&models.Property{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainerr.ErrNotFound
		}
		return nil
	})
}

// Maintenance

func (d *Database) CreateMaintenanceEvent(ctx context.Context, e *models.MaintenanceEvent) error {
	if err := d.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to insert maintenance event: %w", err)
	}
	return nil
}

func (d *Database) UpdateMaintenanceEvent(ctx context.Context, e *models.MaintenanceEvent) error {
	result := d.db.WithContext(ctx).Model(&models.MaintenanceEvent{}).Where("id = ?", e.ID).
		Select("*").Omit("id", "property_id", "created_at").Updates(e)
	if result.Error != nil {
		return fmt.Errorf("failed to update maintenance event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

func (d *Database) GetMaintenanceEvent(ctx context.Context, id int64) (*models.MaintenanceEvent, error) {
	var e models.MaintenanceEvent
	if err := d.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &e, nil
}

func (d *Database) ListMaintenanceByProperty(ctx context.Context, propertyID int64) ([]models.MaintenanceEvent, error) {
	var events []models.MaintenanceEvent
	err := d.db.WithContext(ctx).Where("property_id = ?", propertyID).
		Order("completed_date IS NULL, completed_date DESC, id").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance events: %w", err)
	}
	return events, nil
}

func (d *Database) DeleteMaintenanceEvent(ctx context.Context, id int64) error {
	result := d.db.WithContext(ctx).Delete(&models.MaintenanceEvent{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete maintenance event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

// Tradespersons

func (d *Database) CreateTradesperson(ctx context.Context, t *models.Tradesperson) error {
	if err := d.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to insert tradesperson: %w", err)
	}
	return nil
}

func (d *Database) GetTradesperson(ctx context.Context, id int64) (*models.Tradesperson, error) {
	var t models.Tradesperson
	if err := d.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &t, nil
}

func (d *Database) ListTradespersons(ctx context.Context) ([]models.Tradesperson, error) {
	var people []models.Tradesperson
	if err := d.db.WithContext(ctx).Order("name").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("failed to query tradespersons: %w", err)
	}
	return people, nil
}

// Plans and subscriptions

// UpsertPlans inserts plans or updates them by code.
func (d *Database) UpsertPlans(ctx context.Context, plans []models.SubscriptionPlan) error {
	if len(plans) == 0 {
		return nil
	}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "base_price", "price_per_property", "max_properties", "features", "updated_at"}),
	}).Create(&plans).Error
	if err != nil {
		return fmt.Errorf("failed to upsert plans: %w", err)
	}
	return nil
}

func (d *Database) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	if err := d.db.WithContext(ctx).Order("base_price, id").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	return plans, nil
}

func (d *Database) GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := d.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &plan, nil
}

func (d *Database) GetPlanByCode(ctx context.Context, code string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := d.db.WithContext(ctx).Where("code = ?", code).First(&plan).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &plan, nil
}

func (d *Database) GetSubscription(ctx context.Context, ownerID int64) (*models.Subscription, error) {
	var sub models.Subscription
	if err := d.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&sub).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &sub, nil
}

// SaveSubscription inserts a new subscription or updates an existing one.
func (d *Database) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := d.db.WithContext(ctx).Save(sub).Error; err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// Valuations

func (d *Database) SaveValuation(ctx context.Context, v *models.ValuationRecord) error {
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(v).Error
	if err != nil {
		return fmt.Errorf("failed to save valuation: %w", err)
	}
	return nil
}

func (d *Database) GetValuation(ctx context.Context, propertyID int64) (*models.ValuationRecord, error) {
	var v models.ValuationRecord
	if err := d.db.WithContext(ctx).Where("property_id = ?", propertyID).First(&v).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &v, nil
}
