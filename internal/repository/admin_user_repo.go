package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backoffice/internal/errs"
	"backoffice/internal/model"
)

// AdminUserRepository is the data access layer for administrator accounts.
type AdminUserRepository interface {
	Create(ctx context.Context, user *model.AdminUser) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.AdminUser, error)
	FindByEmail(ctx context.Context, companyID uuid.UUID, email string) (*model.AdminUser, error)
	FirstActiveAdmin(ctx context.Context, companyID uuid.UUID) (*model.AdminUser, error)
	List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.AdminUser, int64, error)
	Update(ctx context.Context, user *model.AdminUser) error
}

type adminUserRepository struct {
	db *gorm.DB
}

// NewAdminUserRepository returns a new instance of AdminUserRepository.
func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) Create(ctx context.Context, user *model.AdminUser) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *adminUserRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.AdminUser, error) {
	var user model.AdminUser
	err := GetDB(ctx, r.db).First(&user, "company_id = ? AND id = ?", companyID, id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *adminUserRepository) FindByEmail(ctx context.Context, companyID uuid.UUID, email string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := GetDB(ctx, r.db).First(&user, "company_id = ? AND email = ?", companyID, email).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *adminUserRepository) FirstActiveAdmin(ctx context.Context, companyID uuid.UUID) (*model.AdminUser, error) {
	var user model.AdminUser
	err := GetDB(ctx, r.db).
		Where("company_id = ? AND role = ? AND is_active = ?", companyID, model.RoleAdmin, true).
		Order("created_at asc").
		First(&user).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *adminUserRepository) List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.AdminUser, int64, error) {
	var users []model.AdminUser
	var total int64

	query := GetDB(ctx, r.db).Model(&model.AdminUser{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *adminUserRepository) Update(ctx context.Context, user *model.AdminUser) error {
	return GetDB(ctx, r.db).Save(user).Error
}

// mapNotFound converts gorm's record-not-found into the domain sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	return err
}
