package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionAssign   = "ASSIGN"
	ActionUnassign = "UNASSIGN"
)

// Entity type labels used in audit records
const (
	EntityCompany   = "company"
	EntityManager   = "manager"
	EntityBranch    = "branch"
	EntityWarehouse = "warehouse"
	EntitySupplier  = "supplier"
)

// AuditLog is an append-only record of who changed what and when. OldValue
// and NewValue hold JSON snapshots; NewValue may embed the user-supplied
// change_reason and changed_at. Rows are written after the primary mutation
// commits and are never updated or deleted.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"` // nil for system-initiated changes
	Actor      *AdminUser `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	EntityType string     `gorm:"type:varchar(50);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   string     `gorm:"type:varchar(50);index:idx_audit_entity" json:"entity_id"`
	Action     string     `gorm:"type:varchar(20);not null;index" json:"action"`
	OldValue   string     `gorm:"type:jsonb" json:"old_value"`
	NewValue   string     `gorm:"type:jsonb" json:"new_value"`
	IP         string     `gorm:"type:varchar(64)" json:"ip"`
	UserAgent  string     `gorm:"type:varchar(255)" json:"user_agent"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
