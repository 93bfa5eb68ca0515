package database

import (
	"pos-backend/internal/model"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.Customer{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Hold{},
		&model.HoldItem{},
		&model.LedgerEntry{},
		&model.AuditLog{},
	)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}
