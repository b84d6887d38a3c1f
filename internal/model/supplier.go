package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier is an external vendor. TaxID is unique per tenant.
type Supplier struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_supplier_company_taxid,unique" json:"company_id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	TaxID        string         `gorm:"type:varchar(50);not null;index:idx_supplier_company_taxid,unique" json:"tax_id"`
	ContactEmail string         `gorm:"type:varchar(255)" json:"contact_email"`
	Phone        string         `gorm:"type:varchar(50)" json:"phone"`
	Country      string         `gorm:"type:varchar(2)" json:"country"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	Version      int            `gorm:"default:1;not null" json:"version"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
