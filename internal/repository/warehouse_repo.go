package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

// WarehouseRepository is the data access layer for warehouses.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *model.Warehouse) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Warehouse, error)
	List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Warehouse, int64, error)
	UpdateVersioned(ctx context.Context, warehouse *model.Warehouse, expectedVersion int) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type warehouseRepository struct {
	db *gorm.DB
}

// NewWarehouseRepository returns a new instance of WarehouseRepository.
func NewWarehouseRepository(db *gorm.DB) WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (r *warehouseRepository) Create(ctx context.Context, warehouse *model.Warehouse) error {
	return GetDB(ctx, r.db).Create(warehouse).Error
}

func (r *warehouseRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	err := GetDB(ctx, r.db).First(&warehouse, "company_id = ? AND id = ?", companyID, id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &warehouse, nil
}

func (r *warehouseRepository) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Warehouse, int64, error) {
	var warehouses []model.Warehouse
	var total int64

	build := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&model.Warehouse{}).Where("company_id = ?", companyID)
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("name LIKE ? OR address LIKE ?", like, like)
		}
		return q
	}

	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := build().Order("created_at DESC").Offset(offset).Limit(limit).Find(&warehouses).Error; err != nil {
		return nil, 0, err
	}
	return warehouses, total, nil
}

func (r *warehouseRepository) UpdateVersioned(ctx context.Context, warehouse *model.Warehouse, expectedVersion int) error {
	warehouse.Version = expectedVersion + 1
	res := GetDB(ctx, r.db).Model(&model.Warehouse{}).
		Where("id = ? AND version = ?", warehouse.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(warehouse)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrVersionConflict
	}
	return nil
}

func (r *warehouseRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("company_id = ? AND id = ?", companyID, id).Delete(&model.Warehouse{}).Error
}
