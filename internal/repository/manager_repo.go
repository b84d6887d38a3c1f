package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

// ManagerRepository is the data access layer for managers.
type ManagerRepository interface {
	Create(ctx context.Context, manager *model.Manager) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Manager, error)
	FindByCI(ctx context.Context, companyID uuid.UUID, ci string) (*model.Manager, error)
	List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Manager, int64, error)
	UpdateVersioned(ctx context.Context, manager *model.Manager, expectedVersion int) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type managerRepository struct {
	db *gorm.DB
}

// NewManagerRepository returns a new instance of ManagerRepository.
func NewManagerRepository(db *gorm.DB) ManagerRepository {
	return &managerRepository{db: db}
}

func (r *managerRepository) Create(ctx context.Context, manager *model.Manager) error {
	return GetDB(ctx, r.db).Create(manager).Error
}

func (r *managerRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Manager, error) {
	var manager model.Manager
	err := GetDB(ctx, r.db).First(&manager, "company_id = ? AND id = ?", companyID, id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &manager, nil
}

func (r *managerRepository) FindByCI(ctx context.Context, companyID uuid.UUID, ci string) (*model.Manager, error) {
	var manager model.Manager
	err := GetDB(ctx, r.db).First(&manager, "company_id = ? AND ci = ?", companyID, ci).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &manager, nil
}

func (r *managerRepository) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Manager, int64, error) {
	var managers []model.Manager
	var total int64

	build := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&model.Manager{}).Where("company_id = ?", companyID)
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR ci LIKE ?", like, like, like, like)
		}
		return q
	}

	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := build().Order("created_at DESC").Offset(offset).Limit(limit).Find(&managers).Error; err != nil {
		return nil, 0, err
	}
	return managers, total, nil
}

// UpdateVersioned applies a compare-and-swap update: the row is written only
// if its stored version still equals expectedVersion. Concurrent edits lose
// with ErrVersionConflict instead of silently overwriting each other.
func (r *managerRepository) UpdateVersioned(ctx context.Context, manager *model.Manager, expectedVersion int) error {
	manager.Version = expectedVersion + 1
	res := GetDB(ctx, r.db).Model(&model.Manager{}).
		Where("id = ? AND version = ?", manager.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(manager)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrVersionConflict
	}
	return nil
}

func (r *managerRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("company_id = ? AND id = ?", companyID, id).Delete(&model.Manager{}).Error
}
