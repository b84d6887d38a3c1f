package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

// BranchRepository is the data access layer for branches.
type BranchRepository interface {
	Create(ctx context.Context, branch *model.Branch) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Branch, error)
	List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Branch, int64, error)
	UpdateVersioned(ctx context.Context, branch *model.Branch, expectedVersion int) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	CountActiveManagers(ctx context.Context, branchID uuid.UUID) (int64, error)
}

type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository returns a new instance of BranchRepository.
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, branch *model.Branch) error {
	return GetDB(ctx, r.db).Create(branch).Error
}

func (r *branchRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Branch, error) {
	var branch model.Branch
	err := GetDB(ctx, r.db).First(&branch, "company_id = ? AND id = ?", companyID, id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &branch, nil
}

func (r *branchRepository) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Branch, int64, error) {
	var branches []model.Branch
	var total int64

	build := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&model.Branch{}).Where("company_id = ?", companyID)
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
	if err := build().Order("created_at DESC").Offset(offset).Limit(limit).Find(&branches).Error; err != nil {
		return nil, 0, err
	}
	return branches, total, nil
}

func (r *branchRepository) UpdateVersioned(ctx context.Context, branch *model.Branch, expectedVersion int) error {
	branch.Version = expectedVersion + 1
	res := GetDB(ctx, r.db).Model(&model.Branch{}).
		Where("id = ? AND version = ?", branch.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(branch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrVersionConflict
	}
	return nil
}

func (r *branchRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("company_id = ? AND id = ?", companyID, id).Delete(&model.Branch{}).Error
}

// CountActiveManagers counts non-deleted active managers assigned to the
// branch. A branch with active managers cannot be deleted.
func (r *branchRepository) CountActiveManagers(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ManagerBranch{}).
		Joins("JOIN managers ON managers.id = manager_branches.manager_id").
		Where("manager_branches.branch_id = ? AND managers.is_active = ? AND managers.deleted_at IS NULL", branchID, true).
		Count(&count).Error
	return count, err
}
