package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Manager is an employee principal. CI is the national identity / tax
// document, unique per tenant.
type Manager struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index:idx_manager_company_ci,unique" json:"company_id"`
	FirstName string          `gorm:"type:varchar(120);not null" json:"first_name"`
	LastName  string          `gorm:"type:varchar(120);not null" json:"last_name"`
	CI        string          `gorm:"type:varchar(50);not null;index:idx_manager_company_ci,unique" json:"ci"`
	Email     string          `gorm:"type:varchar(255);not null" json:"email"`
	Phone     string          `gorm:"type:varchar(50)" json:"phone"`
	Salary    decimal.Decimal `gorm:"type:numeric(14,2)" json:"salary"`
	Country   string          `gorm:"type:varchar(2)" json:"country"`
	Password  string          `gorm:"type:varchar(255)" json:"-"` // portal login, bcrypt hash
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	Version   int             `gorm:"default:1;not null" json:"version"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// DisplayName is the identity string the confirmation gate matches against.
func (m *Manager) DisplayName() string {
	return m.FirstName + " " + m.LastName
}
