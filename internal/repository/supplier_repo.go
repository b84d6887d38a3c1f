package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

// SupplierRepository is the data access layer for suppliers.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Supplier, error)
	FindByTaxID(ctx context.Context, companyID uuid.UUID, taxID string) (*model.Supplier, error)
	List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Supplier, int64, error)
	UpdateVersioned(ctx context.Context, supplier *model.Supplier, expectedVersion int) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository returns a new instance of SupplierRepository.
func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *model.Supplier) error {
	return GetDB(ctx, r.db).Create(supplier).Error
}

func (r *supplierRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	err := GetDB(ctx, r.db).First(&supplier, "company_id = ? AND id = ?", companyID, id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &supplier, nil
}

func (r *supplierRepository) FindByTaxID(ctx context.Context, companyID uuid.UUID, taxID string) (*model.Supplier, error) {
	var supplier model.Supplier
	err := GetDB(ctx, r.db).First(&supplier, "company_id = ? AND tax_id = ?", companyID, taxID).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &supplier, nil
}

func (r *supplierRepository) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Supplier, int64, error) {
	var suppliers []model.Supplier
	var total int64

	build := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&model.Supplier{}).Where("company_id = ?", companyID)
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("name LIKE ? OR tax_id LIKE ? OR contact_email LIKE ?", like, like, like)
		}
		return q
	}

	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := build().Order("created_at DESC").Offset(offset).Limit(limit).Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}
	return suppliers, total, nil
}

func (r *supplierRepository) UpdateVersioned(ctx context.Context, supplier *model.Supplier, expectedVersion int) error {
	supplier.Version = expectedVersion + 1
	res := GetDB(ctx, r.db).Model(&model.Supplier{}).
		Where("id = ? AND version = ?", supplier.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(supplier)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrVersionConflict
	}
	return nil
}

func (r *supplierRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("company_id = ? AND id = ?", companyID, id).Delete(&model.Supplier{}).Error
}
