package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"backoffice/internal/model"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Company{},
		&model.AdminUser{},
		&model.Manager{},
		&model.Branch{},
		&model.Warehouse{},
		&model.Supplier{},
		&model.ManagerBranch{},
		&model.WarehouseBranch{},
		&model.SupplierBranch{},
		&model.SupplierManager{},
		&model.ManagerWarehouse{},
		&model.AuditLog{},
	)
	if err != nil {
		log.WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}
