package repository

import (
	"errors"

	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// AdminUserRepository 管理员数据访问接口
type AdminUserRepository interface {
	GetByEmail(email string) (*models.AdminUser, error)
	GetByID(id uint) (*models.AdminUser, error)
	List() ([]models.AdminUser, error)
	Count() (int64, error)
	CountActiveByRole(role string) (int64, error)
	Create(admin *models.AdminUser) error
	Update(admin *models.AdminUser) error
	Delete(id uint) error
}

// GormAdminUserRepository GORM 实现
type GormAdminUserRepository struct {
	db *gorm.DB
}

// NewAdminUserRepository 创建管理员仓库
func NewAdminUserRepository(db *gorm.DB) *GormAdminUserRepository {
	return &GormAdminUserRepository{db: db}
}

// GetByEmail 根据邮箱获取管理员
func (r *GormAdminUserRepository) GetByEmail(email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminUserRepository) GetByID(id uint) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// List 获取管理员列表
func (r *GormAdminUserRepository) List() ([]models.AdminUser, error) {
	admins := make([]models.AdminUser, 0)
	err := r.db.
		Select("id", "email", "name", "role", "is_active", "last_login_at", "created_at").
		Order("id ASC").
		Find(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// Count 统计管理员数量
func (r *GormAdminUserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveByRole 统计指定角色下的可用管理员数量
func (r *GormAdminUserRepository) CountActiveByRole(role string) (int64, error) {
	var count int64
	err := r.db.Model(&models.AdminUser{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建管理员
func (r *GormAdminUserRepository) Create(admin *models.AdminUser) error {
	return r.db.Create(admin).Error
}

// Update 更新管理员
func (r *GormAdminUserRepository) Update(admin *models.AdminUser) error {
	return r.db.Save(admin).Error
}

// Delete 删除管理员（软删除）
func (r *GormAdminUserRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.AdminUser{}, id).Error
}
