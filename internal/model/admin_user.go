package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Administrator roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// AdminUser is a back-office account that can log in and approve sensitive
// mutations. The password confirmation gate validates against this table.
type AdminUser struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_admin_company_email,unique" json:"company_id"`
	Email        string         `gorm:"type:varchar(255);not null;index:idx_admin_company_email,unique" json:"email"`
	FullName     string         `gorm:"type:varchar(255);not null" json:"full_name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         string         `gorm:"type:varchar(50);not null" json:"role"` // admin, manager
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
