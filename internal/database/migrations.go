package database

import (
	"fmt"

	"equitystek/server/internal/models"
)

func (d *Database) RunMigrations() error {
	err := d.db.AutoMigrate(
		&models.Property{},
		&models.MaintenanceEvent{},
		&models.Tradesperson{},
		&models.SubscriptionPlan{},
		&models.Subscription{},
		&models.ValuationRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Map lookups only touch located properties
	err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create coordinates index: %w", err)
	}

	return nil
}
