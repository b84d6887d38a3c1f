package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

// CompanyRepository is the data access layer for tenants.
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindBySlug(ctx context.Context, slug string) (*model.Company, error)
	List(ctx context.Context, page, limit int) ([]model.Company, int64, error)
	UpdateVersioned(ctx context.Context, company *model.Company, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository returns a new instance of CompanyRepository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return GetDB(ctx, r.db).Create(company).Error
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).First(&company, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &company, nil
}

func (r *companyRepository) FindBySlug(ctx context.Context, slug string) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).First(&company, "slug = ?", slug).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, page, limit int) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Company{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at asc").Offset(offset).Limit(limit).Find(&companies).Error; err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

func (r *companyRepository) UpdateVersioned(ctx context.Context, company *model.Company, expectedVersion int) error {
	company.Version = expectedVersion + 1
	res := GetDB(ctx, r.db).Model(&model.Company{}).
		Where("id = ? AND version = ?", company.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(company)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrVersionConflict
	}
	return nil
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Company{}).Error
}
