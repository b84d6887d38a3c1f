package model

import (
	"time"

	"github.com/google/uuid"
)

// Join records linking two principals. Rows are presence/absence only: they
// are created on assign and hard-deleted on remove, never updated in place
// (except WarehouseBranch.IsPrimary, which is owned by the branch side).
// Uniqueness of each pair is enforced by a composite unique index.

// ManagerBranch links a manager to a branch they oversee.
type ManagerBranch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ManagerID uuid.UUID `gorm:"type:uuid;not null;index:idx_manager_branch,unique" json:"manager_id"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;index:idx_manager_branch,unique" json:"branch_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// WarehouseBranch links a warehouse to a branch it serves. At most one row
// per branch carries IsPrimary.
type WarehouseBranch struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index:idx_warehouse_branch,unique" json:"warehouse_id"`
	BranchID    uuid.UUID `gorm:"type:uuid;not null;index:idx_warehouse_branch,unique" json:"branch_id"`
	IsPrimary   bool      `gorm:"default:false;index" json:"is_primary"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SupplierBranch links a supplier to a branch it delivers to.
type SupplierBranch struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index:idx_supplier_branch,unique" json:"supplier_id"`
	BranchID   uuid.UUID `gorm:"type:uuid;not null;index:idx_supplier_branch,unique" json:"branch_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SupplierManager links a supplier to the manager who handles the account.
type SupplierManager struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index:idx_supplier_manager,unique" json:"supplier_id"`
	ManagerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_supplier_manager,unique" json:"manager_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ManagerWarehouse links a manager to a warehouse they supervise.
type ManagerWarehouse struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ManagerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_manager_warehouse,unique" json:"manager_id"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index:idx_manager_warehouse,unique" json:"warehouse_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
