package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backoffice/internal/model"
)

// AssignmentRepository is the data access layer for the many-to-many join
// tables. Rows are presence/absence only; uniqueness of each pair is
// guaranteed by composite unique indexes, so callers still pre-check
// existence to surface a domain error instead of a raw constraint violation.
type AssignmentRepository interface {
	// manager <-> branch
	ManagerBranchIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error)
	ManagerBranchExists(ctx context.Context, managerID, branchID uuid.UUID) (bool, error)
	AddManagerBranch(ctx context.Context, managerID, branchID uuid.UUID) error
	RemoveManagerBranch(ctx context.Context, managerID, branchID uuid.UUID) error

	// warehouse <-> branch (carries the primary flag)
	WarehouseBranchIDs(ctx context.Context, warehouseID uuid.UUID) ([]uuid.UUID, error)
	WarehouseBranchExists(ctx context.Context, warehouseID, branchID uuid.UUID) (bool, error)
	AddWarehouseBranch(ctx context.Context, warehouseID, branchID uuid.UUID, isPrimary bool) error
	RemoveWarehouseBranch(ctx context.Context, warehouseID, branchID uuid.UUID) error
	ClearPrimaryForBranch(ctx context.Context, branchID uuid.UUID) error
	MarkPrimary(ctx context.Context, warehouseID, branchID uuid.UUID) error
	PrimaryWarehouseForBranch(ctx context.Context, branchID uuid.UUID) (*model.WarehouseBranch, error)

	// supplier <-> branch
	SupplierBranchIDs(ctx context.Context, supplierID uuid.UUID) ([]uuid.UUID, error)
	SupplierBranchExists(ctx context.Context, supplierID, branchID uuid.UUID) (bool, error)
	AddSupplierBranch(ctx context.Context, supplierID, branchID uuid.UUID) error
	RemoveSupplierBranch(ctx context.Context, supplierID, branchID uuid.UUID) error

	// supplier <-> manager
	SupplierManagerIDs(ctx context.Context, supplierID uuid.UUID) ([]uuid.UUID, error)
	SupplierManagerExists(ctx context.Context, supplierID, managerID uuid.UUID) (bool, error)
	AddSupplierManager(ctx context.Context, supplierID, managerID uuid.UUID) error
	RemoveSupplierManager(ctx context.Context, supplierID, managerID uuid.UUID) error

	// manager <-> warehouse
	ManagerWarehouseIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error)
	ManagerWarehouseExists(ctx context.Context, managerID, warehouseID uuid.UUID) (bool, error)
	AddManagerWarehouse(ctx context.Context, managerID, warehouseID uuid.UUID) error
	RemoveManagerWarehouse(ctx context.Context, managerID, warehouseID uuid.UUID) error

	// dependent counts used by delete guards
	CountBranchAssignments(ctx context.Context, branchID uuid.UUID) (int64, error)
	CountWarehouseAssignments(ctx context.Context, warehouseID uuid.UUID) (int64, error)
	CountSupplierAssignments(ctx context.Context, supplierID uuid.UUID) (int64, error)
	CountManagerAssignments(ctx context.Context, managerID uuid.UUID) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository returns a new instance of AssignmentRepository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// --- manager <-> branch ---

func (r *assignmentRepository) ManagerBranchIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.ManagerBranch{}).
		Where("manager_id = ?", managerID).Pluck("branch_id", &ids).Error
	return ids, err
}

func (r *assignmentRepository) ManagerBranchExists(ctx context.Context, managerID, branchID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ManagerBranch{}).
		Where("manager_id = ? AND branch_id = ?", managerID, branchID).Count(&count).Error
	return count > 0, err
}

func (r *assignmentRepository) AddManagerBranch(ctx context.Context, managerID, branchID uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.ManagerBranch{ManagerID: managerID, BranchID: branchID}).Error
}

func (r *assignmentRepository) RemoveManagerBranch(ctx context.Context, managerID, branchID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("manager_id = ? AND branch_id = ?", managerID, branchID).
		Delete(&model.ManagerBranch{}).Error
}

// --- warehouse <-> branch ---

func (r *assignmentRepository) WarehouseBranchIDs(ctx context.Context, warehouseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.WarehouseBranch{}).
		Where("warehouse_id = ?", warehouseID).Pluck("branch_id", &ids).Error
	return ids, err
}

func (r *assignmentRepository) WarehouseBranchExists(ctx context.Context, warehouseID, branchID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.WarehouseBranch{}).
		Where("warehouse_id = ? AND branch_id = ?", warehouseID, branchID).Count(&count).Error
	return count > 0, err
}

func (r *assignmentRepository) AddWarehouseBranch(ctx context.Context, warehouseID, branchID uuid.UUID, isPrimary bool) error {
	return GetDB(ctx, r.db).Create(&model.WarehouseBranch{
		WarehouseID: warehouseID,
		BranchID:    branchID,
		IsPrimary:   isPrimary,
	}).Error
}

func (r *assignmentRepository) RemoveWarehouseBranch(ctx context.Context, warehouseID, branchID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("warehouse_id = ? AND branch_id = ?", warehouseID, branchID).
		Delete(&model.WarehouseBranch{}).Error
}

func (r *assignmentRepository) ClearPrimaryForBranch(ctx context.Context, branchID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.WarehouseBranch{}).
		Where("branch_id = ? AND is_primary = ?", branchID, true).
		Update("is_primary", false).Error
}

func (r *assignmentRepository) MarkPrimary(ctx context.Context, warehouseID, branchID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.WarehouseBranch{}).
		Where("warehouse_id = ? AND branch_id = ?", warehouseID, branchID).
		Update("is_primary", true).Error
}

func (r *assignmentRepository) PrimaryWarehouseForBranch(ctx context.Context, branchID uuid.UUID) (*model.WarehouseBranch, error) {
	var link model.WarehouseBranch
	err := GetDB(ctx, r.db).
		First(&link, "branch_id = ? AND is_primary = ?", branchID, true).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &link, nil
}

// --- supplier <-> branch ---

func (r *assignmentRepository) SupplierBranchIDs(ctx context.Context, supplierID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.SupplierBranch{}).
		Where("supplier_id = ?", supplierID).Pluck("branch_id", &ids).Error
	return ids, err
}

func (r *assignmentRepository) SupplierBranchExists(ctx context.Context, supplierID, branchID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.SupplierBranch{}).
		Where("supplier_id = ? AND branch_id = ?", supplierID, branchID).Count(&count).Error
	return count > 0, err
}

func (r *assignmentRepository) AddSupplierBranch(ctx context.Context, supplierID, branchID uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.SupplierBranch{SupplierID: supplierID, BranchID: branchID}).Error
}

func (r *assignmentRepository) RemoveSupplierBranch(ctx context.Context, supplierID, branchID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("supplier_id = ? AND branch_id = ?", supplierID, branchID).
		Delete(&model.SupplierBranch{}).Error
}

// --- supplier <-> manager ---

func (r *assignmentRepository) SupplierManagerIDs(ctx context.Context, supplierID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.SupplierManager{}).
		Where("supplier_id = ?", supplierID).Pluck("manager_id", &ids).Error
	return ids, err
}

func (r *assignmentRepository) SupplierManagerExists(ctx context.Context, supplierID, managerID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.SupplierManager{}).
		Where("supplier_id = ? AND manager_id = ?", supplierID, managerID).Count(&count).Error
	return count > 0, err
}

func (r *assignmentRepository) AddSupplierManager(ctx context.Context, supplierID, managerID uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.SupplierManager{SupplierID: supplierID, ManagerID: managerID}).Error
}

func (r *assignmentRepository) RemoveSupplierManager(ctx context.Context, supplierID, managerID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("supplier_id = ? AND manager_id = ?", supplierID, managerID).
		Delete(&model.SupplierManager{}).Error
}

// --- manager <-> warehouse ---

func (r *assignmentRepository) ManagerWarehouseIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.ManagerWarehouse{}).
		Where("manager_id = ?", managerID).Pluck("warehouse_id", &ids).Error
	return ids, err
}

func (r *assignmentRepository) ManagerWarehouseExists(ctx context.Context, managerID, warehouseID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ManagerWarehouse{}).
		Where("manager_id = ? AND warehouse_id = ?", managerID, warehouseID).Count(&count).Error
	return count > 0, err
}

func (r *assignmentRepository) AddManagerWarehouse(ctx context.Context, managerID, warehouseID uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.ManagerWarehouse{ManagerID: managerID, WarehouseID: warehouseID}).Error
}

func (r *assignmentRepository) RemoveManagerWarehouse(ctx context.Context, managerID, warehouseID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("manager_id = ? AND warehouse_id = ?", managerID, warehouseID).
		Delete(&model.ManagerWarehouse{}).Error
}

// --- dependent counts ---

func (r *assignmentRepository) CountBranchAssignments(ctx context.Context, branchID uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)
	var total, count int64

	if err := db.Model(&model.ManagerBranch{}).Where("branch_id = ?", branchID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	if err := db.Model(&model.WarehouseBranch{}).Where("branch_id = ?", branchID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	if err := db.Model(&model.SupplierBranch{}).Where("branch_id = ?", branchID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	return total, nil
}

func (r *assignmentRepository) CountWarehouseAssignments(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)
	var total, count int64

	if err := db.Model(&model.WarehouseBranch{}).Where("warehouse_id = ?", warehouseID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	if err := db.Model(&model.ManagerWarehouse{}).Where("warehouse_id = ?", warehouseID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	return total, nil
}

func (r *assignmentRepository) CountSupplierAssignments(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)
	var total, count int64

	if err := db.Model(&model.SupplierBranch{}).Where("supplier_id = ?", supplierID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	if err := db.Model(&model.SupplierManager{}).Where("supplier_id = ?", supplierID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	return total, nil
}

func (r *assignmentRepository) CountManagerAssignments(ctx context.Context, managerID uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)
	var total, count int64

	if err := db.Model(&model.ManagerBranch{}).Where("manager_id = ?", managerID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	if err := db.Model(&model.ManagerWarehouse{}).Where("manager_id = ?", managerID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	if err := db.Model(&model.SupplierManager{}).Where("manager_id = ?", managerID).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count
	return total, nil
}
